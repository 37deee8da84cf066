// Package klinehttp exposes the kline service over HTTP.
package klinehttp

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"unidata/internal/analysis/visual"
	"unidata/internal/gateway"
	"unidata/internal/kline"
	"unidata/internal/market"

	"github.com/gin-gonic/gin"
)

// maxBatch bounds POST /batch bodies.
const maxBatch = 50

// Puller is the part of kline.Service the routes need.
type Puller interface {
	Pull(ctx context.Context, req kline.Request) (market.Result, error)
	PullBatch(ctx context.Context, reqs []kline.Request) []market.Result
}

type Router struct {
	mu     sync.RWMutex
	puller Puller
}

func NewRouter(p Puller) *Router {
	return &Router{puller: p}
}

func (r *Router) SetPuller(p Puller) {
	r.mu.Lock()
	r.puller = p
	r.mu.Unlock()
}

func (r *Router) current() Puller {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.puller
}

// Register 将 /api/kline 路由挂载到给定分组下。
func (r *Router) Register(group *gin.RouterGroup) {
	if group == nil {
		return
	}
	group.GET("", r.handlePull)
	group.GET("/chart", r.handleChart)
	group.POST("/batch", r.handleBatch)
}

// pullQuery mirrors kline.Request as query parameters.
type pullQuery struct {
	Ticker     string `form:"ticker" json:"ticker"`
	MarketType string `form:"market_type" json:"market_type"`
	Period     string `form:"period" json:"period"`
	Start      string `form:"start" json:"start"`
	End        string `form:"end" json:"end"`
	Limit      *int   `form:"limit" json:"limit"`
	Exchange   string `form:"exchange" json:"exchange"`
}

func (q pullQuery) toRequest() (kline.Request, error) {
	req := kline.Request{
		Ticker:     strings.TrimSpace(q.Ticker),
		MarketType: market.MarketType(strings.ToLower(strings.TrimSpace(q.MarketType))),
		Period:     strings.TrimSpace(q.Period),
		Exchange:   strings.TrimSpace(q.Exchange),
	}
	if q.Limit != nil {
		req.Limit = *q.Limit
	}
	var err error
	if req.Start, err = ParseTime(q.Start); err != nil {
		return req, fmt.Errorf("invalid start: %w", err)
	}
	if req.End, err = ParseTime(q.End); err != nil {
		return req, fmt.Errorf("invalid end: %w", err)
	}
	return req, nil
}

// ParseTime accepts "", "2006-01-02", RFC3339, or epoch milliseconds. Empty input is the zero time.
func ParseTime(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.ParseInLocation("2006-01-02", raw, time.UTC); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	if ms, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC(), nil
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q", raw)
}

func (r *Router) pull(c *gin.Context) (market.Result, bool) {
	var q pullQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return market.Result{}, false
	}
	req, err := q.toRequest()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return market.Result{}, false
	}
	res, err := r.current().Pull(c.Request.Context(), req)
	if err != nil {
		status := http.StatusInternalServerError
		if gateway.IsConfigError(err) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return market.Result{}, false
	}
	return res, true
}

func (r *Router) handlePull(c *gin.Context) {
	res, ok := r.pull(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, res)
}

func (r *Router) handleChart(c *gin.Context) {
	res, ok := r.pull(c)
	if !ok {
		return
	}
	if !res.IsOK() {
		c.JSON(http.StatusNotFound, res)
		return
	}
	html, err := visual.RenderKlineHTML(res.Data, visual.ChartOptions{})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", html)
}

func (r *Router) handleBatch(c *gin.Context) {
	var queries []pullQuery
	if err := c.ShouldBindJSON(&queries); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(queries) > maxBatch {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("at most %d requests per batch", maxBatch)})
		return
	}
	reqs := make([]kline.Request, 0, len(queries))
	for i, q := range queries {
		req, err := q.toRequest()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("request %d: %v", i, err)})
			return
		}
		reqs = append(reqs, req)
	}
	c.JSON(http.StatusOK, gin.H{"results": r.current().PullBatch(c.Request.Context(), reqs)})
}
