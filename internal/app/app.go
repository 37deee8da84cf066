package app

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"unidata/internal/config"
	"unidata/internal/gateway"
	"unidata/internal/kline"
	"unidata/internal/logger"
	klinehttp "unidata/internal/transport/http/kline"

	"golang.org/x/sync/errgroup"
)

// App 负责应用级编排：加载配置→初始化依赖→启动 HTTP 服务与配置热更新。
type App struct {
	mu      sync.RWMutex
	cfg     *config.Config
	cfgPath string
	service *kline.Service
	http    *klinehttp.Server
	Summary *StartupSummary
}

// NewApp 根据配置构建应用对象（不启动）。cfgPath 非空时 Run 会监听该文件并热更新。
func NewApp(cfg *config.Config, cfgPath string) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	ApplyLogging(cfg)
	svc := BuildService(cfg)
	srv, err := klinehttp.NewServer(klinehttp.ServerConfig{Addr: cfg.App.HTTPAddr, Puller: svc})
	if err != nil {
		return nil, err
	}
	return &App{
		cfg:     cfg,
		cfgPath: strings.TrimSpace(cfgPath),
		service: svc,
		http:    srv,
		Summary: NewStartupSummary(cfg),
	}, nil
}

// BuildService wires the dispatch factory and the kline service from cfg.
func BuildService(cfg *config.Config) *kline.Service {
	return kline.NewService(gateway.NewFactory(cfg),
		kline.WithDefaultLimit(cfg.Kline.DefaultLimit),
		kline.WithConcurrency(cfg.Kline.BatchConcurrency),
	)
}

// ApplyLogging sets the process logger level and format from cfg.
func ApplyLogging(cfg *config.Config) {
	logger.SetLevel(cfg.App.LogLevel)
	logger.SetFormat(cfg.App.LogFormat)
}

// Service exposes the kline service built at startup.
func (a *App) Service() *kline.Service {
	if a == nil {
		return nil
	}
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.service
}

// Config returns the config currently in effect.
func (a *App) Config() *config.Config {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.cfg
}

// Run 启动 HTTP 服务；配置文件变更时重建服务并替换。
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.cfg == nil {
		return fmt.Errorf("app not initialized")
	}
	if a.Summary != nil {
		a.Summary.Print()
	}
	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		if err := a.http.Start(ctx); err != nil {
			return fmt.Errorf("kline http server error: %w", err)
		}
		return nil
	})
	if a.cfgPath != "" {
		group.Go(func() error {
			return config.Watch(ctx, a.cfgPath, a.reload)
		})
	}
	return group.Wait()
}

func (a *App) reload(cfg *config.Config) {
	svc := BuildService(cfg)
	a.mu.Lock()
	if cfg.App.HTTPAddr != a.cfg.App.HTTPAddr {
		logger.Warnf("app.http_addr change (%s -> %s) needs a restart", a.cfg.App.HTTPAddr, cfg.App.HTTPAddr)
	}
	a.cfg = cfg
	a.service = svc
	a.mu.Unlock()
	ApplyLogging(cfg)
	a.http.SetPuller(svc)
}
