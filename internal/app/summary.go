package app

import (
	"fmt"
	"io"
	"os"
	"strings"

	"unidata/internal/config"
)

type StartupSummary struct {
	Env             string
	HTTPAddr        string
	DefaultLimit    int
	DailyBuffer     float64
	IntradayBuffer  float64
	DefaultExchange string
	Venues          []VenueSummary
}

type VenueSummary struct {
	Name    string
	BaseURL string
	Timeout string
	Proxy   string
}

func NewStartupSummary(cfg *config.Config) *StartupSummary {
	s := &StartupSummary{
		Env:             cfg.App.Env,
		HTTPAddr:        cfg.App.HTTPAddr,
		DefaultLimit:    cfg.Kline.DefaultLimit,
		DailyBuffer:     cfg.Kline.DailyBuffer,
		IntradayBuffer:  cfg.Kline.IntradayBuffer,
		DefaultExchange: cfg.Crypto.DefaultExchange,
	}
	for _, name := range config.KnownVenues {
		v := cfg.Venue(name)
		proxy := "-"
		if v.Proxy.Enabled {
			proxy = v.Proxy.RESTURL
		}
		s.Venues = append(s.Venues, VenueSummary{
			Name:    v.Name,
			BaseURL: v.RESTBaseURL,
			Timeout: v.Timeout().String(),
			Proxy:   proxy,
		})
	}
	return s
}

func (s *StartupSummary) Print() {
	s.WriteTo(os.Stdout)
}

func (s *StartupSummary) WriteTo(w io.Writer) {
	fmt.Fprintln(w, strings.Repeat("=", 80))
	fmt.Fprintf(w, "%*s\n", 40+len("启动配置摘要 (STARTUP SUMMARY)")/2, "启动配置摘要 (STARTUP SUMMARY)")
	fmt.Fprintln(w, strings.Repeat("=", 80))

	fmt.Fprintln(w, "[服务 (SERVICE)]")
	fmt.Fprintf(w, "  环境: %s\n", s.Env)
	fmt.Fprintf(w, "  监听: %s\n", s.HTTPAddr)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "[K线拉取 (KLINE)]")
	fmt.Fprintf(w, "  默认行数: %d\n", s.DefaultLimit)
	fmt.Fprintf(w, "  回溯缓冲: 日线 %.1fx / 日内 %.1fx\n", s.DailyBuffer, s.IntradayBuffer)
	fmt.Fprintf(w, "  默认加密交易所: %s\n", s.DefaultExchange)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "[数据源 (VENUES)]")
	for _, v := range s.Venues {
		fmt.Fprintf(w, "  %-10s %s (timeout=%s, proxy=%s)\n", v.Name, v.BaseURL, v.Timeout, v.Proxy)
	}
	fmt.Fprintln(w, strings.Repeat("=", 80))
}
