package config

import (
	"strings"
	"time"
)

// Config 是 unidata 的主配置载体。
type Config struct {
	App    AppConfig     `toml:"app"`
	Kline  KlineConfig   `toml:"kline"`
	Crypto CryptoConfig  `toml:"crypto"`
	Venues []VenueConfig `toml:"venues"`
}

type AppConfig struct {
	Env       string `toml:"env"`
	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`
	HTTPAddr  string `toml:"http_addr"`
	LogPath   string `toml:"log_path"`
}

// KlineConfig 控制默认行数、回溯估算缓冲以及批量拉取并发。
type KlineConfig struct {
	DefaultLimit     int     `toml:"default_limit"`
	DailyBuffer      float64 `toml:"daily_buffer"`
	IntradayBuffer   float64 `toml:"intraday_buffer"`
	BatchConcurrency int     `toml:"batch_concurrency"`
}

type CryptoConfig struct {
	// DefaultExchange 是 exchange 为空或为 "ccxt" 时使用的加密货币交易所。
	DefaultExchange string `toml:"default_exchange"`
}

// VenueConfig 描述一个数据源的访问方式。
type VenueConfig struct {
	Name           string      `toml:"name"`
	RESTBaseURL    string      `toml:"rest_base_url"`
	TimeoutSeconds int         `toml:"timeout_seconds"`
	Proxy          ProxyConfig `toml:"proxy"`
}

func (v VenueConfig) Timeout() time.Duration {
	if v.TimeoutSeconds <= 0 {
		return time.Duration(defaultVenueTimeout) * time.Second
	}
	return time.Duration(v.TimeoutSeconds) * time.Second
}

type ProxyConfig struct {
	Enabled bool   `toml:"enabled"`
	RESTURL string `toml:"rest_url"`
}

func (p *ProxyConfig) normalize() {
	if p == nil {
		return
	}
	p.RESTURL = strings.TrimSpace(p.RESTURL)
}

// Venue returns the named venue's settings, or its defaults when the venue is not listed.
func (c *Config) Venue(name string) VenueConfig {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, v := range c.Venues {
		if strings.ToLower(v.Name) == name {
			return v
		}
	}
	return VenueConfig{
		Name:           name,
		RESTBaseURL:    defaultVenueURLs[name],
		TimeoutSeconds: defaultVenueTimeout,
	}
}

// keySet 用于追踪配置文件中显式设置的字段路径。
type keySet map[string]struct{}

func (k keySet) mark(path string) {
	path = strings.ToLower(strings.TrimSpace(path))
	if path == "" {
		return
	}
	k[path] = struct{}{}
}

func (k keySet) isSet(path string) bool {
	if len(k) == 0 {
		return false
	}
	path = strings.ToLower(strings.TrimSpace(path))
	if path == "" {
		return false
	}
	_, ok := k[path]
	return ok
}

// fieldDefault 描述单个字段的默认值设置规则。
type fieldDefault struct {
	key   string
	need  func() bool
	apply func()
}
