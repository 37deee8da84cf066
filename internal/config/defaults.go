package config

import (
	"strings"
)

// 默认值常量
const (
	defaultAppEnv          = "dev"
	defaultAppLogLevel     = "info"
	defaultAppLogFormat    = "text"
	defaultAppHTTPAddr     = ":9992"
	defaultKlineLimit      = 200
	defaultDailyBuffer     = 2.0
	defaultIntradayBuffer  = 1.5
	defaultBatchConcurrent = 4
	defaultCryptoExchange  = "binance"
	defaultVenueTimeout    = 15
)

// Venue names known to the gateway layer.
const (
	VenueBinance   = "binance"
	VenueGate      = "gate"
	VenueCoinbase  = "coinbase"
	VenueYahoo     = "yahoo"
	VenueEastMoney = "eastmoney"
	VenueSina      = "sina"
)

// KnownVenues lists every venue in a stable order.
var KnownVenues = []string{VenueBinance, VenueGate, VenueCoinbase, VenueYahoo, VenueEastMoney, VenueSina}

var defaultVenueURLs = map[string]string{
	VenueBinance:   "https://api.binance.com",
	VenueGate:      "https://api.gateio.ws/api/v4",
	VenueCoinbase:  "https://api.exchange.coinbase.com",
	VenueYahoo:     "https://query1.finance.yahoo.com",
	VenueEastMoney: "https://push2his.eastmoney.com",
	VenueSina:      "https://stock2.finance.sina.com.cn",
}

// applyDefaults 为所有子配置应用默认值。
func (c *Config) applyDefaults(keys keySet) {
	c.App.applyDefaults(keys)
	c.Kline.applyDefaults(keys)
	c.Crypto.applyDefaults(keys)
	c.Venues = applyVenueDefaults(c.Venues)
}

func (a *AppConfig) applyDefaults(keys keySet) {
	if a == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("app.env", &a.Env, defaultAppEnv),
		stringFieldDefault("app.log_level", &a.LogLevel, defaultAppLogLevel),
		stringFieldDefault("app.log_format", &a.LogFormat, defaultAppLogFormat),
		stringFieldDefault("app.http_addr", &a.HTTPAddr, defaultAppHTTPAddr),
	)
}

func (k *KlineConfig) applyDefaults(keys keySet) {
	if k == nil {
		return
	}
	applyFieldDefaults(keys,
		fieldDefault{
			key:   "kline.default_limit",
			need:  func() bool { return k.DefaultLimit <= 0 },
			apply: func() { k.DefaultLimit = defaultKlineLimit },
		},
		fieldDefault{
			key:   "kline.daily_buffer",
			need:  func() bool { return k.DailyBuffer <= 0 },
			apply: func() { k.DailyBuffer = defaultDailyBuffer },
		},
		fieldDefault{
			key:   "kline.intraday_buffer",
			need:  func() bool { return k.IntradayBuffer <= 0 },
			apply: func() { k.IntradayBuffer = defaultIntradayBuffer },
		},
		fieldDefault{
			key:   "kline.batch_concurrency",
			need:  func() bool { return k.BatchConcurrency <= 0 },
			apply: func() { k.BatchConcurrency = defaultBatchConcurrent },
		},
	)
}

func (c *CryptoConfig) applyDefaults(keys keySet) {
	if c == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("crypto.default_exchange", &c.DefaultExchange, defaultCryptoExchange),
	)
	c.DefaultExchange = strings.ToLower(strings.TrimSpace(c.DefaultExchange))
}

// applyVenueDefaults fills URLs and timeouts of listed venues and appends the unlisted ones.
func applyVenueDefaults(venues []VenueConfig) []VenueConfig {
	seen := make(map[string]bool, len(venues))
	for i := range venues {
		v := &venues[i]
		v.Name = strings.ToLower(strings.TrimSpace(v.Name))
		v.RESTBaseURL = strings.TrimSpace(v.RESTBaseURL)
		v.Proxy.normalize()
		if v.RESTBaseURL == "" {
			v.RESTBaseURL = defaultVenueURLs[v.Name]
		}
		if v.TimeoutSeconds <= 0 {
			v.TimeoutSeconds = defaultVenueTimeout
		}
		seen[v.Name] = true
	}
	for _, name := range KnownVenues {
		if seen[name] {
			continue
		}
		venues = append(venues, VenueConfig{
			Name:           name,
			RESTBaseURL:    defaultVenueURLs[name],
			TimeoutSeconds: defaultVenueTimeout,
		})
	}
	return venues
}

// Helper functions

func applyFieldDefaults(keys keySet, defs ...fieldDefault) {
	for _, def := range defs {
		if def.apply == nil {
			continue
		}
		if def.key != "" && keys.isSet(def.key) {
			continue
		}
		if def.need != nil && !def.need() {
			continue
		}
		def.apply()
	}
}

func stringFieldDefault(key string, target *string, def string) fieldDefault {
	return fieldDefault{
		key: key,
		need: func() bool {
			return target != nil && strings.TrimSpace(*target) == ""
		},
		apply: func() {
			if target != nil {
				*target = def
			}
		},
	}
}
