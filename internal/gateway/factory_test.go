package gateway

import (
	"errors"
	"testing"

	"unidata/internal/adapter"
	"unidata/internal/config"
	"unidata/internal/market"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFactory(defaultCrypto string) *Factory {
	noBars := func() (market.BarClient, error) { return nil, errors.New("offline") }
	noHistory := func() (market.HistoryClient, error) { return nil, errors.New("offline") }
	return NewFactoryWithClients(Clients{
		Binance: noBars, Coinbase: noBars, Gate: noBars,
		Yahoo: noHistory, EastMoney: noHistory, Sina: noHistory,
	}, defaultCrypto)
}

func TestResolveRoutes(t *testing.T) {
	f := newTestFactory("")
	cases := []struct {
		mt       market.MarketType
		exchange string
		want     string
	}{
		{market.MarketCrypto, "", market.ExchangeBinance},
		{market.MarketStock, "", market.ExchangeGlobalEquities},
		{market.MarketFutures, "", market.ExchangeGlobalEquities},
		{market.MarketCrypto, "Coinbase", market.ExchangeCoinbase},
		{market.MarketCrypto, "gate", market.ExchangeGate},
		{market.MarketCrypto, "ccxt", market.ExchangeBinance},
		{market.MarketStock, "china-equities", market.ExchangeChinaEquities},
		{market.MarketFutures, "akshare", market.ExchangeChinaEquities},
		{market.MarketStock, "yfinance", market.ExchangeGlobalEquities},
		{"STOCK", "", market.ExchangeGlobalEquities},
	}
	for _, tc := range cases {
		t.Run(string(tc.mt)+"/"+tc.exchange, func(t *testing.T) {
			a, id, err := f.Resolve(tc.mt, tc.exchange)
			require.NoError(t, err)
			assert.Equal(t, tc.want, id)
			assert.Equal(t, tc.want, a.Exchange())
		})
	}
}

func TestResolveConfigErrors(t *testing.T) {
	f := newTestFactory("")
	cases := []struct {
		mt       market.MarketType
		exchange string
	}{
		{"bond", ""},
		{"", ""},
		{market.MarketCrypto, "kraken"},
		{market.MarketStock, "binance"},
		{market.MarketCrypto, "china-equities"},
		{market.MarketCrypto, "yfinance"},
	}
	for _, tc := range cases {
		a, id, err := f.Resolve(tc.mt, tc.exchange)
		require.Error(t, err, "%s/%s", tc.mt, tc.exchange)
		assert.True(t, IsConfigError(err))
		assert.Nil(t, a)
		assert.Empty(t, id)
	}

	var ce *ConfigError
	_, _, err := f.Resolve("bond", "")
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, market.MarketType("bond"), ce.MarketType)
	assert.Contains(t, err.Error(), "unsupported market type")
}

func TestResolveReusesAdapters(t *testing.T) {
	f := newTestFactory(market.ExchangeCoinbase)
	a1, id, err := f.Resolve(market.MarketCrypto, "")
	require.NoError(t, err)
	assert.Equal(t, market.ExchangeCoinbase, id)
	a2, _, err := f.Resolve(market.MarketCrypto, "ccxt")
	require.NoError(t, err)
	assert.Same(t, a1.(*adapter.Crypto), a2.(*adapter.Crypto))
}

func TestNewFactoryFromConfig(t *testing.T) {
	f := NewFactory(config.Default())
	a, id, err := f.Resolve(market.MarketStock, "china-equities")
	require.NoError(t, err)
	assert.Equal(t, market.ExchangeChinaEquities, id)
	assert.Equal(t, "monthly", a.VenuePeriod("1M"))

	clients := ClientsFromConfig(config.Default())
	bc, err := clients.Binance()
	require.NoError(t, err)
	assert.NotNil(t, bc)
	hc, err := clients.Sina()
	require.NoError(t, err)
	assert.NotNil(t, hc)
}
