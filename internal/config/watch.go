package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"unidata/internal/logger"

	"github.com/fsnotify/fsnotify"
)

// reloadDebounce coalesces the burst of events editors emit for one save.
const reloadDebounce = 300 * time.Millisecond

// Watch reloads path whenever it changes and passes each valid configuration to onChange. Invalid
// edits are logged and skipped. Watch blocks until ctx is done.
func Watch(ctx context.Context, path string, onChange func(*Config)) error {
	if onChange == nil {
		return fmt.Errorf("config watch requires a callback")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("创建文件监视器失败: %w", err)
	}
	defer watcher.Close()
	// 监听目录：编辑器保存时常以 rename 方式替换文件。
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("添加文件监视失败: %w", err)
	}

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				pending = time.After(reloadDebounce)
			}
		case <-pending:
			pending = nil
			cfg, err := Load(abs)
			if err != nil {
				logger.Errorf("config reload failed (%s): %v", abs, err)
				continue
			}
			logger.Infof("config reloaded: %s", abs)
			onChange(cfg)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warnf("config watch error: %v", err)
		}
	}
}
