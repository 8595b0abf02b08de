package tile_proxy

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/GrainArc/SiteMeasure/models"
	"github.com/GrainArc/SiteMeasure/response"
)

const maxUpstreamBody = 16 << 20

// Options configures the upstream collaborators. The key is appended as the
// "key" query parameter and never leaves the server.
type Options struct {
	ServiceURL        string
	PlacesURL         string
	ReferenceLayerURL string
	APIKey            string
	CacheTTL          time.Duration
	Timeout           time.Duration
}

// UpstreamProxy forwards the basemap service descriptor, postcode lookups and
// the reference layer. Failures are not retried.
type UpstreamProxy struct {
	opts       Options
	httpClient *http.Client
	cache      *ResponseCache
}

func NewUpstreamProxy(opts Options) *UpstreamProxy {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	return &UpstreamProxy{
		opts: opts,
		httpClient: &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		cache: NewResponseCache(64, opts.CacheTTL),
	}
}

func (p *UpstreamProxy) Close() {
	p.cache.Close()
}

func (p *UpstreamProxy) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/service", p.HandleService)
	r.GET("/places", p.HandlePlaces)
	r.GET("/reference-layer", p.HandleReferenceLayer)
}

func (p *UpstreamProxy) withKey(raw string, query url.Values) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	q := u.Query()
	for k, vs := range query {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	if p.opts.APIKey != "" {
		q.Set("key", p.opts.APIKey)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// fetch performs one GET. A non-2xx answer becomes *models.UpstreamError.
func (p *UpstreamProxy) fetch(ctx context.Context, service, raw string, query url.Values) ([]byte, string, error) {
	if raw == "" {
		return nil, "", &models.UpstreamError{Service: service, Status: http.StatusServiceUnavailable, Body: service + " upstream is not configured"}
	}
	target, err := p.withKey(raw, query)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", service, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, "", &models.UpstreamError{Service: service, Status: http.StatusBadGateway, Body: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxUpstreamBody))
	if err != nil {
		return nil, "", &models.UpstreamError{Service: service, Status: http.StatusBadGateway, Body: err.Error()}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", &models.UpstreamError{Service: service, Status: resp.StatusCode, Body: string(body)}
	}
	return body, resp.Header.Get("Content-Type"), nil
}

func (p *UpstreamProxy) cached(ctx context.Context, service, raw string) (*CacheItem, error) {
	if item, ok := p.cache.Get(service); ok {
		return item, nil
	}
	body, contentType, err := p.fetch(ctx, service, raw, nil)
	if err != nil {
		return nil, err
	}
	p.cache.Set(service, body, contentType)
	return &CacheItem{Data: body, ContentType: contentType}, nil
}

// Service returns the basemap service descriptor.
func (p *UpstreamProxy) Service(ctx context.Context) (*CacheItem, error) {
	return p.cached(ctx, "service", p.opts.ServiceURL)
}

func (p *UpstreamProxy) ReferenceLayer(ctx context.Context) (*CacheItem, error) {
	return p.cached(ctx, "reference-layer", p.opts.ReferenceLayerURL)
}

// Places looks up address candidates for a postcode. Results are not cached.
func (p *UpstreamProxy) Places(ctx context.Context, postcode string) (*CacheItem, error) {
	postcode = strings.TrimSpace(postcode)
	if postcode == "" {
		return nil, errors.New("postcode is required")
	}
	body, contentType, err := p.fetch(ctx, "places", p.opts.PlacesURL, url.Values{"postcode": {postcode}})
	if err != nil {
		return nil, err
	}
	return &CacheItem{Data: body, ContentType: contentType}, nil
}

func contentTypeOr(ct string) string {
	if ct == "" {
		return "application/json"
	}
	return ct
}

// writeResult relays a body or the upstream status and body unchanged.
func writeResult(c *gin.Context, item *CacheItem, err error) {
	var upstream *models.UpstreamError
	switch {
	case err == nil:
		c.Data(http.StatusOK, contentTypeOr(item.ContentType), item.Data)
	case errors.As(err, &upstream):
		log.Printf("%v", upstream)
		response.Error(c, upstream.Status, upstream.Body)
	default:
		response.BadRequest(c, err.Error())
	}
}

func (p *UpstreamProxy) HandleService(c *gin.Context) {
	item, err := p.Service(c.Request.Context())
	writeResult(c, item, err)
}

func (p *UpstreamProxy) HandlePlaces(c *gin.Context) {
	item, err := p.Places(c.Request.Context(), c.Query("postcode"))
	writeResult(c, item, err)
}

func (p *UpstreamProxy) HandleReferenceLayer(c *gin.Context) {
	item, err := p.ReferenceLayer(c.Request.Context())
	writeResult(c, item, err)
}
