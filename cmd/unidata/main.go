package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"unidata/internal/analysis/visual"
	"unidata/internal/app"
	"unidata/internal/config"
	"unidata/internal/gateway"
	"unidata/internal/kline"
	"unidata/internal/logger"
	"unidata/internal/market"
	klinehttp "unidata/internal/transport/http/kline"

	"gopkg.in/yaml.v3"
)

const usage = `usage:
  unidata pull  -ticker BTC/USDT -market crypto [-period 1d] [-start 2024-01-01] [-end ...] [-limit 200] [-exchange binance] [-format json|yaml] [-chart out.html|out.png]
  unidata serve [-config configs/config.yaml]`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch os.Args[1] {
	case "pull":
		err = runPull(ctx, os.Args[2:], os.Stdout)
	case "serve":
		err = runServe(ctx, os.Args[2:])
	case "-h", "--help", "help":
		fmt.Println(usage)
		return
	default:
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		if gateway.IsConfigError(err) {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		log.Fatalf("运行失败: %v", err)
	}
}

// loadConfig 优先使用 -config，其次 UNIDATA_CONFIG；都为空时使用内置默认值。
func loadConfig(path string) (*config.Config, string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		path = strings.TrimSpace(os.Getenv("UNIDATA_CONFIG"))
	}
	if path == "" {
		return config.Default(), "", nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", fmt.Errorf("读取配置失败: %w", err)
	}
	return cfg, path, nil
}

func runServe(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	cfgPath := fs.String("config", "", "config file (yaml)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, path, err := loadConfig(*cfgPath)
	if err != nil {
		return err
	}
	logFile, err := setupLogOutput(cfg.App.LogPath, os.Stdout)
	if err != nil {
		return fmt.Errorf("初始化日志文件失败: %w", err)
	}
	if logFile != nil {
		defer logFile.Close()
	}
	logger.Infof("✓ 配置加载成功（环境=%s）", cfg.App.Env)

	a, err := app.NewApp(cfg, path)
	if err != nil {
		return fmt.Errorf("初始化应用失败: %w", err)
	}
	return a.Run(ctx)
}

func runPull(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("pull", flag.ExitOnError)
	var (
		cfgPath  = fs.String("config", "", "config file (yaml)")
		ticker   = fs.String("ticker", "", "ticker, e.g. BTC/USDT, AAPL, 600519, RB")
		mt       = fs.String("market", string(market.MarketCrypto), "market type: crypto|stock|futures")
		period   = fs.String("period", kline.DefaultPeriod, "bar period, e.g. 1m 1h 1d daily")
		start    = fs.String("start", "", "start time (2006-01-02, RFC3339 or epoch ms)")
		end      = fs.String("end", "", "end time (2006-01-02, RFC3339 or epoch ms)")
		limit    = fs.Int("limit", 0, "max rows, 0 uses the configured default")
		exchange = fs.String("exchange", "", "explicit exchange id")
		format   = fs.String("format", "json", "output format: json|yaml")
		chart    = fs.String("chart", "", "also write a chart (.html or .png)")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, _, err := loadConfig(*cfgPath)
	if err != nil {
		return err
	}
	// pull 的标准输出只放结果，日志走 stderr。
	logFile, err := setupLogOutput(cfg.App.LogPath, os.Stderr)
	if err != nil {
		return fmt.Errorf("初始化日志文件失败: %w", err)
	}
	if logFile != nil {
		defer logFile.Close()
	}
	app.ApplyLogging(cfg)

	req := kline.Request{
		Ticker:     *ticker,
		MarketType: market.MarketType(strings.ToLower(strings.TrimSpace(*mt))),
		Period:     *period,
		Limit:      *limit,
		Exchange:   *exchange,
	}
	if req.Start, err = klinehttp.ParseTime(*start); err != nil {
		return fmt.Errorf("invalid -start: %w", err)
	}
	if req.End, err = klinehttp.ParseTime(*end); err != nil {
		return fmt.Errorf("invalid -end: %w", err)
	}

	res, err := app.BuildService(cfg).Pull(ctx, req)
	if err != nil {
		return err
	}
	if err := writeResult(stdout, res, *format); err != nil {
		return err
	}
	if *chart != "" && res.IsOK() {
		if err := writeChart(ctx, *chart, res.Data); err != nil {
			return fmt.Errorf("chart: %w", err)
		}
		logger.Infof("chart written to %s", *chart)
	}
	return nil
}

func writeResult(w io.Writer, res market.Result, format string) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(res)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

func writeChart(ctx context.Context, path string, table market.Table) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		data, err = visual.RenderKlineHTML(table, visual.ChartOptions{})
	case ".png":
		data, err = visual.RenderKlinePNG(ctx, table, visual.ChartOptions{})
	default:
		return errors.New("chart path must end in .html or .png")
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func setupLogOutput(path string, console io.Writer) (*os.File, error) {
	logger.SetOutput(console)
	log.SetOutput(console)
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return nil, nil
	}
	dir := filepath.Dir(trimmed)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	file, err := os.OpenFile(trimmed, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	mw := io.MultiWriter(console, file)
	log.SetOutput(mw)
	logger.SetOutput(mw)
	return file, nil
}
