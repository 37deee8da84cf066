package gateway

import (
	"errors"
	"fmt"

	"unidata/internal/market"
)

// ConfigError reports a (market type, exchange) combination no adapter serves. It is raised
// before any I/O and is the only error Pull returns.
type ConfigError struct {
	MarketType market.MarketType
	Exchange   string
	Reason     string
}

func (e *ConfigError) Error() string {
	if e.Exchange == "" {
		return fmt.Sprintf("config error: market type %q: %s", e.MarketType, e.Reason)
	}
	return fmt.Sprintf("config error: market type %q, exchange %q: %s", e.MarketType, e.Exchange, e.Reason)
}

func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}
