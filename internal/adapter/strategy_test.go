package adapter

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"unidata/internal/market"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestStrategyQuoteFallback(t *testing.T) {
	t.Run("falls back to USD when only USD is listed", func(t *testing.T) {
		client := &MockBarClient{}
		client.On("LoadPairs", mock.Anything).Return([]string{"SOL/USD", "BTC/USD"}, nil).Once()
		s := NewCoinbaseStrategy(barClient(client))
		assert.Equal(t, "SOL/USD", s.VenueSymbol(context.Background(), "SOL_USDT", market.MarketCrypto))
		assert.Equal(t, "SOL/USD", s.VenueSymbol(context.Background(), "sol/usdt", market.MarketCrypto))
		client.AssertExpectations(t)
	})

	t.Run("keeps the pair when neither form is listed", func(t *testing.T) {
		client := &MockBarClient{}
		client.On("LoadPairs", mock.Anything).Return([]string{"BTC/USD"}, nil).Once()
		s := NewCoinbaseStrategy(barClient(client))
		assert.Equal(t, "SOL/USDT", s.VenueSymbol(context.Background(), "SOL_USDT", market.MarketCrypto))
	})

	t.Run("keeps the pair when it is listed", func(t *testing.T) {
		client := &MockBarClient{}
		client.On("LoadPairs", mock.Anything).Return([]string{"SOL/USDT", "SOL/USD"}, nil).Once()
		s := NewCoinbaseStrategy(barClient(client))
		assert.Equal(t, "SOL/USDT", s.VenueSymbol(context.Background(), "SOL_USDT", market.MarketCrypto))
	})

	t.Run("keeps the pair when loading fails", func(t *testing.T) {
		client := &MockBarClient{}
		client.On("LoadPairs", mock.Anything).Return(nil, errors.New("timeout")).Once()
		s := NewCoinbaseStrategy(barClient(client))
		assert.Equal(t, "SOL/USDT", s.VenueSymbol(context.Background(), "SOL_USDT", market.MarketCrypto))
		assert.Equal(t, "ETH/USDT", s.VenueSymbol(context.Background(), "ETH_USDT", market.MarketCrypto))
		client.AssertNumberOfCalls(t, "LoadPairs", 1)
	})

	t.Run("quotes without fallback never load pairs", func(t *testing.T) {
		client := &MockBarClient{}
		s := NewCoinbaseStrategy(barClient(client))
		assert.Equal(t, "BTC/EUR", s.VenueSymbol(context.Background(), "BTC_EUR", market.MarketCrypto))
		client.AssertNotCalled(t, "LoadPairs", mock.Anything)

		b := NewBinanceStrategy(barClient(client))
		assert.Equal(t, "BTC/USDT", b.VenueSymbol(context.Background(), "BTCUSDT", market.MarketCrypto))
		client.AssertNotCalled(t, "LoadPairs", mock.Anything)
	})
}

type countingClient struct {
	MockBarClient
	loads atomic.Int32
}

func (c *countingClient) LoadPairs(context.Context) ([]string, error) {
	c.loads.Add(1)
	time.Sleep(20 * time.Millisecond)
	return []string{"SOL/USD"}, nil
}

func TestStrategyLoadsPairsOnceUnderConcurrency(t *testing.T) {
	client := &countingClient{}
	var builds atomic.Int32
	s := NewCoinbaseStrategy(func() (market.BarClient, error) {
		builds.Add(1)
		return client, nil
	})

	const n = 32
	var wg sync.WaitGroup
	got := make([]string, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got[i] = s.VenueSymbol(context.Background(), "SOL_USDT", market.MarketCrypto)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), client.loads.Load())
	assert.Equal(t, int32(1), builds.Load())
	for _, sym := range got {
		assert.Equal(t, "SOL/USD", sym)
	}
}

func TestStrategyClientError(t *testing.T) {
	s := NewGateStrategy(func() (market.BarClient, error) { return nil, errors.New("bad proxy") })
	_, err := s.Client()
	require.Error(t, err)
	assert.Equal(t, market.ExchangeGate, s.Name())
	assert.Equal(t, "7d", s.VenuePeriod("1w"))
}

// ctxPairsClient fails LoadPairs for a cancelled context, as an HTTP client would.
type ctxPairsClient struct {
	MockBarClient
	loads atomic.Int32
}

func (c *ctxPairsClient) LoadPairs(ctx context.Context) ([]string, error) {
	c.loads.Add(1)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return []string{"SOL/USD"}, nil
}

func TestStrategyPairLoadIgnoresCallerCancel(t *testing.T) {
	client := &ctxPairsClient{}
	s := NewCoinbaseStrategy(barClient(client))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Equal(t, "SOL/USD", s.VenueSymbol(ctx, "SOL_USDT", market.MarketCrypto))
	assert.Equal(t, "SOL/USD", s.VenueSymbol(context.Background(), "SOL_USDT", market.MarketCrypto))
	assert.Equal(t, int32(1), client.loads.Load())
}
