package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// Load 读取 YAML 配置（含 include 链），填充默认值并校验。
// include 中的文件先合并，当前文件的值覆盖它们。
func Load(path string) (*Config, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("config path cannot be empty")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	v := viper.New()
	v.SetConfigType("yaml")
	if err := mergeWithIncludes(v, abs, make(map[string]bool), make(map[string]bool)); err != nil {
		return nil, err
	}
	var cfg Config
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "toml"
		dc.WeaklyTypedInput = true
	}); err != nil {
		return nil, fmt.Errorf("parsing config failed: %w", err)
	}
	cfg.applyDefaults(explicitKeys(v))
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns a configuration holding only default values.
func Default() *Config {
	var cfg Config
	cfg.applyDefaults(make(keySet))
	return &cfg
}

// mergeWithIncludes reads path once, merges its includes depth-first, then the file itself.
// A file reached twice through different includes is merged only the first time.
func mergeWithIncludes(dst *viper.Viper, path string, merged, stack map[string]bool) error {
	path = filepath.Clean(path)
	if stack[path] {
		return fmt.Errorf("include cycle detected: %s", path)
	}
	if merged[path] {
		return nil
	}
	file := viper.New()
	file.SetConfigFile(path)
	if err := file.ReadInConfig(); err != nil {
		return fmt.Errorf("reading config file failed (%s): %w", path, err)
	}

	stack[path] = true
	for _, inc := range file.GetStringSlice("include") {
		inc = strings.TrimSpace(inc)
		if inc == "" {
			continue
		}
		if !filepath.IsAbs(inc) {
			inc = filepath.Join(filepath.Dir(path), inc)
		}
		if err := mergeWithIncludes(dst, inc, merged, stack); err != nil {
			return err
		}
	}
	delete(stack, path)

	settings := file.AllSettings()
	delete(settings, "include")
	if err := dst.MergeConfigMap(settings); err != nil {
		return fmt.Errorf("merging config file failed (%s): %w", path, err)
	}
	merged[path] = true
	return nil
}

// explicitKeys lists the dotted keys written in the files, so an explicit zero is kept and
// caught by validation instead of being replaced by a default.
func explicitKeys(v *viper.Viper) keySet {
	keys := make(keySet)
	for _, k := range v.AllKeys() {
		keys.mark(k)
	}
	return keys
}
