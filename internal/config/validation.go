package config

import (
	"fmt"
	"strings"
)

// validate 对配置进行基础校验。
func validate(c *Config) error {
	if err := c.App.validate(); err != nil {
		return err
	}
	if err := c.Kline.validate(); err != nil {
		return err
	}
	if err := c.Crypto.validate(); err != nil {
		return err
	}
	return validateVenues(c.Venues)
}

func (a *AppConfig) validate() error {
	switch strings.ToLower(strings.TrimSpace(a.LogFormat)) {
	case "", "text", "json":
	default:
		return fmt.Errorf("app.log_format must be text or json, got %q", a.LogFormat)
	}
	return nil
}

func (k *KlineConfig) validate() error {
	if k.DefaultLimit <= 0 {
		return fmt.Errorf("kline.default_limit must be > 0")
	}
	if k.DailyBuffer < 1 {
		return fmt.Errorf("kline.daily_buffer must be >= 1")
	}
	if k.IntradayBuffer < 1 {
		return fmt.Errorf("kline.intraday_buffer must be >= 1")
	}
	if k.BatchConcurrency <= 0 {
		return fmt.Errorf("kline.batch_concurrency must be > 0")
	}
	return nil
}

func (c *CryptoConfig) validate() error {
	switch c.DefaultExchange {
	case VenueBinance, VenueGate, VenueCoinbase:
		return nil
	default:
		return fmt.Errorf("crypto.default_exchange=%s is not a crypto venue", c.DefaultExchange)
	}
}

func validateVenues(venues []VenueConfig) error {
	seen := make(map[string]bool, len(venues))
	for _, v := range venues {
		if _, known := defaultVenueURLs[v.Name]; !known {
			return fmt.Errorf("unknown venue %q", v.Name)
		}
		if seen[v.Name] {
			return fmt.Errorf("venue %s configured twice", v.Name)
		}
		seen[v.Name] = true
		if v.RESTBaseURL == "" {
			return fmt.Errorf("venue %s missing rest_base_url", v.Name)
		}
		if v.Proxy.Enabled && v.Proxy.RESTURL == "" {
			return fmt.Errorf("venue %s has proxy enabled but no rest_url", v.Name)
		}
	}
	return nil
}
