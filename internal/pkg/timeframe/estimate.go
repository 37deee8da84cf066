package timeframe

import "time"

// maxLookback caps the estimated window so very large limits cannot overflow time.Duration.
const maxLookback = 200 * 365 * 24 * time.Hour

// Default safety buffers. Daily and longer bars absorb weekends and holidays; intraday bars only
// need to absorb session gaps.
const (
	DefaultDailyBuffer    = 2.0
	DefaultIntradayBuffer = 1.5
)

// Estimator computes a start date that should cover limit bars ending at end.
type Estimator struct {
	DailyBuffer    float64
	IntradayBuffer float64
}

// DefaultEstimator uses the default buffers.
var DefaultEstimator = Estimator{
	DailyBuffer:    DefaultDailyBuffer,
	IntradayBuffer: DefaultIntradayBuffer,
}

func (e Estimator) buffer(u Unit) float64 {
	if u.Daily() {
		if e.DailyBuffer > 0 {
			return e.DailyBuffer
		}
		return DefaultDailyBuffer
	}
	if e.IntradayBuffer > 0 {
		return e.IntradayBuffer
	}
	return DefaultIntradayBuffer
}

// EstimateStart returns end - barDuration*limit*buffer. Limits below 1 count as 1, so the result
// never moves later as limit grows.
func (e Estimator) EstimateStart(end time.Time, limit int, period string) time.Time {
	if limit < 1 {
		limit = 1
	}
	n, u := Resolve(period)
	bar := time.Duration(n) * u.Duration()
	span := float64(bar) * float64(limit) * e.buffer(u)
	if span > float64(maxLookback) {
		span = float64(maxLookback)
	}
	return end.Add(-time.Duration(span))
}

// EstimateStart uses DefaultEstimator.
func EstimateStart(end time.Time, limit int, period string) time.Time {
	return DefaultEstimator.EstimateStart(end, limit, period)
}
