package gateway

import (
	"strings"
	"sync"

	"unidata/internal/adapter"
	"unidata/internal/config"
	"unidata/internal/gateway/binance"
	"unidata/internal/gateway/coinbase"
	"unidata/internal/gateway/eastmoney"
	"unidata/internal/gateway/gate"
	"unidata/internal/gateway/sina"
	"unidata/internal/gateway/yahoo"
	"unidata/internal/market"
	"unidata/internal/pkg/timeframe"
)

// Clients holds one constructor per venue collaborator. Constructors run lazily, on the first
// request an adapter serves.
type Clients struct {
	Binance   adapter.ClientFunc
	Coinbase  adapter.ClientFunc
	Gate      adapter.ClientFunc
	Yahoo     adapter.HistoryFunc
	EastMoney adapter.HistoryFunc
	Sina      adapter.HistoryFunc
}

// Factory resolves (market type, exchange) to an adapter. Adapters are built once per exchange
// id and reused, so each crypto Strategy keeps its tradable-pair cache across requests.
type Factory struct {
	clients        Clients
	defaultCrypto  string
	adapterOptions []adapter.Option
	mu             sync.Mutex
	adapters       map[string]adapter.Adapter
}

// NewFactory wires venue clients from the configuration.
func NewFactory(cfg *config.Config) *Factory {
	if cfg == nil {
		cfg = config.Default()
	}
	return NewFactoryWithClients(ClientsFromConfig(cfg), cfg.Crypto.DefaultExchange,
		adapter.WithDefaultLimit(cfg.Kline.DefaultLimit),
		adapter.WithEstimator(timeframe.Estimator{
			DailyBuffer:    cfg.Kline.DailyBuffer,
			IntradayBuffer: cfg.Kline.IntradayBuffer,
		}),
	)
}

func NewFactoryWithClients(clients Clients, defaultCrypto string, opts ...adapter.Option) *Factory {
	defaultCrypto = strings.ToLower(strings.TrimSpace(defaultCrypto))
	if defaultCrypto == "" {
		defaultCrypto = market.ExchangeBinance
	}
	return &Factory{
		clients:        clients,
		defaultCrypto:  defaultCrypto,
		adapterOptions: opts,
		adapters:       make(map[string]adapter.Adapter),
	}
}

func ClientsFromConfig(cfg *config.Config) Clients {
	return Clients{
		Binance: func() (market.BarClient, error) {
			v := cfg.Venue(config.VenueBinance)
			return binance.New(binance.Config{
				RESTBaseURL:  v.RESTBaseURL,
				HTTPTimeout:  v.Timeout(),
				ProxyEnabled: v.Proxy.Enabled,
				RESTProxyURL: v.Proxy.RESTURL,
			})
		},
		Coinbase: func() (market.BarClient, error) {
			v := cfg.Venue(config.VenueCoinbase)
			return coinbase.New(coinbase.Config{
				RESTBaseURL:  v.RESTBaseURL,
				HTTPTimeout:  v.Timeout(),
				ProxyEnabled: v.Proxy.Enabled,
				RESTProxyURL: v.Proxy.RESTURL,
			})
		},
		Gate: func() (market.BarClient, error) {
			v := cfg.Venue(config.VenueGate)
			return gate.New(gate.Config{
				RESTBaseURL:  v.RESTBaseURL,
				HTTPTimeout:  v.Timeout(),
				ProxyEnabled: v.Proxy.Enabled,
				RESTProxyURL: v.Proxy.RESTURL,
			})
		},
		Yahoo: func() (market.HistoryClient, error) {
			v := cfg.Venue(config.VenueYahoo)
			return yahoo.New(yahoo.Config{
				RESTBaseURL:  v.RESTBaseURL,
				HTTPTimeout:  v.Timeout(),
				ProxyEnabled: v.Proxy.Enabled,
				RESTProxyURL: v.Proxy.RESTURL,
			})
		},
		EastMoney: func() (market.HistoryClient, error) {
			v := cfg.Venue(config.VenueEastMoney)
			return eastmoney.New(eastmoney.Config{
				RESTBaseURL:  v.RESTBaseURL,
				HTTPTimeout:  v.Timeout(),
				ProxyEnabled: v.Proxy.Enabled,
				RESTProxyURL: v.Proxy.RESTURL,
			})
		},
		Sina: func() (market.HistoryClient, error) {
			v := cfg.Venue(config.VenueSina)
			return sina.New(sina.Config{
				RESTBaseURL:  v.RESTBaseURL,
				HTTPTimeout:  v.Timeout(),
				ProxyEnabled: v.Proxy.Enabled,
				RESTProxyURL: v.Proxy.RESTURL,
			})
		},
	}
}

// exchangeAliases maps accepted spellings to canonical exchange ids. "ccxt" resolves to the
// configured default crypto venue in canonicalExchange.
var exchangeAliases = map[string]string{
	market.ExchangeYFinance: market.ExchangeGlobalEquities,
	market.ExchangeAKShare:  market.ExchangeChinaEquities,
}

// defaultRoutes is used when the caller gives no exchange. Crypto goes to the configured default
// crypto venue.
var defaultRoutes = map[market.MarketType]string{
	market.MarketStock:   market.ExchangeGlobalEquities,
	market.MarketFutures: market.ExchangeGlobalEquities,
}

// allowedMarkets lists the market types each exchange serves.
var allowedMarkets = map[string][]market.MarketType{
	market.ExchangeBinance:        {market.MarketCrypto},
	market.ExchangeCoinbase:       {market.MarketCrypto},
	market.ExchangeGate:           {market.MarketCrypto},
	market.ExchangeGlobalEquities: {market.MarketStock, market.MarketFutures},
	market.ExchangeChinaEquities:  {market.MarketStock, market.MarketFutures},
}

// Resolve returns the adapter serving mt on exchange (empty = default route) and the canonical
// exchange id. Unknown market types, unknown exchanges and unsupported combinations return a
// *ConfigError.
func (f *Factory) Resolve(mt market.MarketType, exchange string) (adapter.Adapter, string, error) {
	parsed, ok := market.ParseMarketType(string(mt))
	if !ok {
		return nil, "", &ConfigError{MarketType: mt, Exchange: exchange, Reason: "unsupported market type"}
	}
	id := f.canonicalExchange(parsed, exchange)
	allowed, known := allowedMarkets[id]
	if !known {
		return nil, "", &ConfigError{MarketType: parsed, Exchange: exchange, Reason: "unknown exchange"}
	}
	if !containsMarket(allowed, parsed) {
		return nil, "", &ConfigError{MarketType: parsed, Exchange: exchange, Reason: "exchange does not serve this market type"}
	}
	return f.adapterFor(id), id, nil
}

func (f *Factory) canonicalExchange(mt market.MarketType, exchange string) string {
	id := strings.ToLower(strings.TrimSpace(exchange))
	if id == "" {
		if mt == market.MarketCrypto {
			return f.defaultCrypto
		}
		return defaultRoutes[mt]
	}
	if id == market.ExchangeCCXT {
		return f.defaultCrypto
	}
	if alias, ok := exchangeAliases[id]; ok {
		return alias
	}
	return id
}

func containsMarket(list []market.MarketType, mt market.MarketType) bool {
	for _, m := range list {
		if m == mt {
			return true
		}
	}
	return false
}

func (f *Factory) adapterFor(id string) adapter.Adapter {
	f.mu.Lock()
	defer f.mu.Unlock()
	if a, ok := f.adapters[id]; ok {
		return a
	}
	var a adapter.Adapter
	switch id {
	case market.ExchangeBinance:
		a = adapter.NewCrypto(adapter.NewBinanceStrategy(f.clients.Binance), f.adapterOptions...)
	case market.ExchangeCoinbase:
		a = adapter.NewCrypto(adapter.NewCoinbaseStrategy(f.clients.Coinbase), f.adapterOptions...)
	case market.ExchangeGate:
		a = adapter.NewCrypto(adapter.NewGateStrategy(f.clients.Gate), f.adapterOptions...)
	case market.ExchangeGlobalEquities:
		a = adapter.NewEquities(f.clients.Yahoo, f.adapterOptions...)
	case market.ExchangeChinaEquities:
		a = adapter.NewChina(f.clients.EastMoney, f.clients.Sina, f.adapterOptions...)
	}
	f.adapters[id] = a
	return a
}
