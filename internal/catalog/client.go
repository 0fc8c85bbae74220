// Path: internal/catalog/client.go
package catalog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"pokedex/internal/config"
	"pokedex/internal/domain"
	"pokedex/internal/normalize"
	"pokedex/internal/shape"
)

// Endpoint labels used in logs and metrics.
const (
	endpointList      = "list"
	endpointEntity    = "entity"
	endpointLookup    = "lookup"
	endpointEvolution = "evolution"
)

// Client is a client for the upstream Pokémon catalog API.
// Every call is one independent request: no caching, no batching, no retry.
type Client struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
	metrics *Metrics
	log     *zap.Logger
}

// NewClient creates and configures a new Client.
func NewClient(cfg config.CatalogConfig, metrics *Metrics, logger *zap.Logger) *Client {
	burst := cfg.BurstLimit
	if burst < 1 {
		burst = 1
	}
	limit := rate.Limit(cfg.RequestsPerSecond)
	if cfg.RequestsPerSecond <= 0 {
		limit = rate.Inf
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
		limiter: rate.NewLimiter(limit, burst),
		metrics: metrics,
		log:     logger.Named("catalog"),
	}
}

// ListAll fetches the whole catalog in its lite form.
func (c *Client) ListAll(ctx context.Context) ([]domain.CatalogEntity, error) {
	root, err := c.get(ctx, endpointList, c.baseURL+"/pokemon")
	if err != nil {
		return nil, err
	}
	return normalize.LiteList(root), nil
}

// FetchByID fetches the raw payload of one entity.
func (c *Client) FetchByID(ctx context.Context, id int) (shape.Node, error) {
	root, err := c.get(ctx, endpointEntity, c.baseURL+"/pokemon/"+strconv.Itoa(id))
	if err != nil {
		return shape.Node{}, err
	}
	if isAbsent(root) {
		return shape.Node{}, domain.ErrNotFound
	}
	return root, nil
}

// Lookup fetches an entity by name or id, as typed by a user.
// An upstream answer that signals absence yields domain.ErrNotFound.
func (c *Client) Lookup(ctx context.Context, key string) (shape.Node, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return shape.Node{}, domain.ErrNotFound
	}
	root, err := c.get(ctx, endpointLookup, c.baseURL+"/pokemon/"+url.PathEscape(key))
	if err != nil {
		return shape.Node{}, err
	}
	if isAbsent(root) {
		return shape.Node{}, domain.ErrNotFound
	}
	return root, nil
}

// FetchEvolution fetches the standalone evolution block of an entity.
// The endpoint is optional upstream: a 404 yields domain.ErrNotFound.
func (c *Client) FetchEvolution(ctx context.Context, id int) (shape.Node, error) {
	root, err := c.get(ctx, endpointEvolution, c.baseURL+"/pokemon/"+strconv.Itoa(id)+"/evolution")
	if err != nil {
		var te *domain.TransportError
		if errors.As(err, &te) && te.StatusCode == http.StatusNotFound {
			return shape.Node{}, domain.ErrNotFound
		}
		return shape.Node{}, err
	}
	if !root.Present() {
		return shape.Node{}, domain.ErrNotFound
	}
	return root, nil
}

// get performs one rate-limited GET and parses the JSON body.
// Non-2xx statuses fail without the body being parsed.
func (c *Client) get(ctx context.Context, endpoint, reqURL string) (root shape.Node, err error) {
	started := time.Now()
	outcome := "ok"
	defer func() {
		if err != nil {
			outcome = "error"
		}
		c.metrics.observe(endpoint, outcome, started)
	}()

	if err := c.limiter.Wait(ctx); err != nil {
		return shape.Node{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return shape.Node{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	c.log.Debug("catalog request", zap.String("endpoint", endpoint), zap.String("url", reqURL))

	resp, err := c.client.Do(req)
	if err != nil {
		return shape.Node{}, &domain.TransportError{Op: http.MethodGet, URL: reqURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Debug("catalog non-success status",
			zap.String("endpoint", endpoint),
			zap.String("url", reqURL),
			zap.Int("status", resp.StatusCode),
		)
		return shape.Node{}, &domain.TransportError{Op: http.MethodGet, URL: reqURL, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return shape.Node{}, &domain.TransportError{Op: http.MethodGet, URL: reqURL, Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	if len(bytes.TrimSpace(body)) == 0 {
		return shape.Node{}, nil
	}

	root, err = shape.Parse(body)
	if err != nil {
		return shape.Node{}, &domain.TransportError{Op: http.MethodGet, URL: reqURL, Err: fmt.Errorf("failed to parse json response: %w", err)}
	}
	return root, nil
}

// isAbsent recognizes the ways a successful response says "no such entity":
// a null or empty body, an explicit error field, or a 404 status field.
func isAbsent(root shape.Node) bool {
	if !root.Present() {
		return true
	}
	if !root.IsObject() {
		return false
	}
	if len(root.Members()) == 0 || root.Get("error").Present() {
		return true
	}
	status, ok := root.Get("status").Int()
	return ok && status == http.StatusNotFound
}
