// Package storefront is the typed REST surface of the upstream storefront
// CMS. Its collections (products, orders, transactions, customers) are the
// system of record; the till only reads and patches them.
package storefront

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/kimutaiwycliff/shop-website-pos-sub000/internal/middleware"
)

// APIError is a non-2xx reply from the storefront.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("storefront returned %d: %s", e.StatusCode, e.Message)
}

// Client is the shared HTTP plumbing for all storefront collections. Calls
// run through a circuit breaker so a down storefront fails fast instead of
// tying up the till on timeouts.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	timeout time.Duration
	breaker *gobreaker.CircuitBreaker[*http.Response]
}

func NewClient(baseURL string, httpClient *http.Client, timeout time.Duration) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid storefront base url %q: %w", baseURL, err)
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	breaker := gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:    "storefront",
		Timeout: 30 * time.Second,
	})

	return &Client{baseURL: u, http: httpClient, timeout: timeout, breaker: breaker}, nil
}

// do issues one JSON request. A 5xx counts as a breaker failure; 4xx is a
// plain APIError on the caller.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	rel := &url.URL{Path: path, RawQuery: query.Encode()}
	u := c.baseURL.ResolveReference(rel)

	var payload []byte
	if in != nil {
		var err error
		payload, err = json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal %s %s body: %w", method, path, err)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.breaker.Execute(func() (*http.Response, error) {
		var body io.Reader
		if payload != nil {
			body = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
		if err != nil {
			return nil, err
		}
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if cid := middleware.GetCorrelationID(ctx); cid != "" {
			req.Header.Set(middleware.HeaderCorrelationID, cid)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			defer resp.Body.Close()
			return nil, readAPIError(resp)
		}
		return resp, nil
	})
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("%s %s: %w", method, path, readAPIError(resp))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode %s %s response: %w", method, path, err)
		}
	}
	return nil
}

func readAPIError(resp *http.Response) *APIError {
	msg := resp.Status
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err == nil && len(raw) > 0 {
		if json.Unmarshal(raw, &body) == nil {
			switch {
			case body.Error != "":
				msg = body.Error
			case body.Message != "":
				msg = body.Message
			}
		}
	}
	return &APIError{StatusCode: resp.StatusCode, Message: msg}
}
