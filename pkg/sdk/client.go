package sdk

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const defaultTimeout = 15 * time.Second

// Client talks to a mapsearch backend over HTTP.
type Client struct {
	baseURL string
	apiKey  string
	hc      *http.Client
}

// New creates a Client.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{timeout: defaultTimeout}
	for _, o := range opts {
		o.apply(cfg)
	}

	if cfg.baseURL == "" {
		return nil, errors.New("sdk: base URL required (use WithBaseURL)")
	}
	if _, err := url.Parse(cfg.baseURL); err != nil {
		return nil, fmt.Errorf("sdk: parse base URL: %w", err)
	}

	hc := cfg.httpClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.timeout}
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.baseURL, "/"),
		apiKey:  cfg.apiKey,
		hc:      hc,
	}, nil
}

// GetClusters runs the aggregate viewport query.
func (c *Client) GetClusters(ctx context.Context, q Query) (ClusterPage, error) {
	var page ClusterPage
	err := c.get(ctx, "/api/v1/search/clusters", queryParams(q), &page)
	return page, err
}

// GetFiltered runs the paginated listings query.
func (c *Client) GetFiltered(ctx context.Context, q Query) (ListingPage, error) {
	var page ListingPage
	err := c.get(ctx, "/api/v1/search/listings", queryParams(q), &page)
	return page, err
}

// GetListing fetches one listing by MLS key.
func (c *Client) GetListing(ctx context.Context, key string) (Listing, error) {
	var l Listing
	err := c.get(ctx, "/api/v1/listings/"+url.PathEscape(key), nil, &l)
	return l, err
}

// Upsert stores listings in the backend index.
func (c *Client) Upsert(ctx context.Context, items []Listing) error {
	body := struct {
		Listings []Listing `json:"listings"`
	}{Listings: items}
	return c.send(ctx, http.MethodPut, "/api/v1/listings", body, nil)
}

// Remove deletes listings by MLS key.
func (c *Client) Remove(ctx context.Context, keys []string) error {
	body := struct {
		Keys []string `json:"keys"`
	}{Keys: keys}
	return c.send(ctx, http.MethodDelete, "/api/v1/listings", body, nil)
}

// HealthCheck fetches the service health report.
func (c *Client) HealthCheck(ctx context.Context) (Health, error) {
	var h Health
	err := c.get(ctx, "/health", nil, &h)
	return h, err
}

func queryParams(q Query) url.Values {
	v := url.Values{}
	if len(q.Polygon) > 0 {
		pairs := make([]string, len(q.Polygon))
		for i, p := range q.Polygon {
			pairs[i] = fmt.Sprintf("%g,%g", p.Lat, p.Lng)
		}
		v.Set("polygon", strings.Join(pairs, "|"))
	} else if q.Bounds != nil {
		v.Set("north", strconv.FormatFloat(q.Bounds.North, 'f', -1, 64))
		v.Set("south", strconv.FormatFloat(q.Bounds.South, 'f', -1, 64))
		v.Set("east", strconv.FormatFloat(q.Bounds.East, 'f', -1, 64))
		v.Set("west", strconv.FormatFloat(q.Bounds.West, 'f', -1, 64))
	}
	if q.Zoom != 0 {
		v.Set("zoom", strconv.FormatFloat(q.Zoom, 'f', -1, 64))
	}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.PageSize > 0 {
		v.Set("page_size", strconv.Itoa(q.PageSize))
	}
	for key, vals := range q.Filters {
		for _, val := range vals {
			v.Add(key, val)
		}
	}
	return v
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	target := c.baseURL + path
	if len(params) > 0 {
		target += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
	if err != nil {
		return fmt.Errorf("sdk: build request: %w", err)
	}
	return c.do(req, out)
}

func (c *Client) send(ctx context.Context, method, path string, body, out any) error {
	buf, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("sdk: encode body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(buf))
	if err != nil {
		return fmt.Errorf("sdk: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("sdk: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return apiErrorFrom(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("sdk: decode response: %w", err)
	}
	return nil
}

func apiErrorFrom(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	var envelope struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err := json.Unmarshal(raw, &envelope); err == nil {
		apiErr.Code = envelope.Code
		apiErr.Message = envelope.Message
	} else {
		apiErr.Message = strings.TrimSpace(string(raw))
	}
	return apiErr
}
