package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"scholar-fetch/internal/scholar/model"
	"scholar-fetch/internal/scholar/scrape"
)

// Proxy forwards browser requests to the upstream portals so in-browser
// callers dodge cross-origin restrictions. The upstream body comes back with
// status 200 even when the portal redirected or blocked; callers attempt a
// graceful parse of whatever the portal served instead of hitting a CORS
// failure.
type Proxy struct {
	Log     *zap.Logger
	sources map[string]model.Source
	client  *resty.Client
}

func NewProxy(log *zap.Logger, sources []model.Source, timeout time.Duration) *Proxy {
	byID := make(map[string]model.Source, len(sources))
	for _, src := range sources {
		byID[src.ID] = src
	}
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", scrape.BrowserUserAgent).
		SetHeader("Accept", scrape.AcceptHTML).
		SetHeader("Accept-Language", "en-US,en;q=0.9")
	return &Proxy{Log: log, sources: byID, client: client}
}

func (p *Proxy) Handle(c *gin.Context) {
	src, ok := p.sources[c.Param("source")]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "university not found"})
		return
	}

	target := src.BaseURL + c.Param("path")
	if q := c.Request.URL.RawQuery; q != "" {
		target += "?" + q
	}

	res, err := p.client.R().SetContext(c.Request.Context()).Get(target)
	if err != nil {
		p.Log.Warn("proxy fetch failed", zap.String("target", target), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch data"})
		return
	}

	c.Header("Access-Control-Allow-Origin", "*")
	c.Data(http.StatusOK, "text/html; charset=utf-8", res.Body())
}
