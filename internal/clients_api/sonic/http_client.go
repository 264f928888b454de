package sonic

// Transport layer for the Sonic Odyssey REST API. Handles request shaping,
// browser-profile headers, rate limiting and the circuit breaker; the auth
// and mint flows live in their own files and go through MakeRequest.

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"sonic-minter/internal/infra/log"
	"sonic-minter/internal/infra/retry"

	json "github.com/goccy/go-json"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	// TestnetAPI is the Odyssey campaign API for the Sonic testnet.
	TestnetAPI = "https://odyssey-api.sonic.game"
	// DevnetAPI is the Odyssey campaign API for the Sonic devnet.
	DevnetAPI = "https://odyssey-api-devnet.sonic.game"

	frontendOrigin = "https://odyssey.sonic.game"
)

// DefaultAPIURL maps a network name to the Odyssey API serving it. The
// campaign runs on testnet; mainnet has no separate deployment.
func DefaultAPIURL(network string) string {
	if network == "devnet" {
		return DevnetAPI
	}
	return TestnetAPI
}

// Options tune the client; zero values fall back to the defaults below.
type Options struct {
	BaseURL         string
	RequestTimeout  time.Duration
	MaxResponseSize int64
}

// Client talks to the Odyssey API. It keeps the bearer token obtained by
// Authenticate and attaches it to every subsequent request.
type Client struct {
	baseURL         string
	httpClient      *http.Client
	authToken       string
	rateLimiter     *rate.Limiter
	circuitBreaker  *gobreaker.CircuitBreaker
	maxResponseSize int64
}

func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = TestnetAPI
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 30 * time.Second
	}
	if opts.MaxResponseSize <= 0 {
		opts.MaxResponseSize = 10 * 1024 * 1024
	}

	rateLimiter := rate.NewLimiter(rate.Limit(10), 20)

	circuitBreaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "OdysseyAPI",
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
	})

	return &Client{
		baseURL:         opts.BaseURL,
		rateLimiter:     rateLimiter,
		circuitBreaker:  circuitBreaker,
		maxResponseSize: opts.MaxResponseSize,
		httpClient: &http.Client{
			Timeout: opts.RequestTimeout,
			Transport: &http.Transport{
				DisableKeepAlives: false,
				MaxIdleConns:      10,
				IdleConnTimeout:   90 * time.Second,
			},
		},
	}
}

// SetAuthToken stores the bearer token attached to subsequent requests.
func (c *Client) SetAuthToken(token string) {
	c.authToken = token
}

// AuthToken returns the current bearer token, empty before Authenticate.
func (c *Client) AuthToken() string {
	return c.authToken
}

// MakeRequest performs one API call. body is JSON-encoded when non-nil.
// Non-2xx responses come back as *retry.HTTPError carrying status and body.
func (c *Client) MakeRequest(ctx context.Context, method, endpoint string, body interface{}) ([]byte, error) {
	requestID := log.GenerateRequestID()
	startTime := time.Now()

	if ctx.Err() != nil {
		return nil, fmt.Errorf("context cancelled: %w", ctx.Err())
	}

	if c.rateLimiter != nil {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter wait failed: %w", err)
		}
	}

	if c.circuitBreaker == nil {
		return c.doRequest(ctx, requestID, method, endpoint, body, startTime)
	}

	var respBody []byte
	_, err := c.circuitBreaker.Execute(func() (interface{}, error) {
		b, err := c.doRequest(ctx, requestID, method, endpoint, body, startTime)
		if err != nil {
			return nil, err
		}
		respBody = b
		return b, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			log.LogError("Circuit breaker rejected request",
				zap.String("request_id", requestID),
				zap.String("endpoint", endpoint),
				zap.Error(err))
		}
		return nil, err
	}

	return respBody, nil
}

func (c *Client) doRequest(ctx context.Context, requestID, method, endpoint string, body interface{}, startTime time.Time) ([]byte, error) {
	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	c.setBrowserHeaders(req)

	log.LogRequest(requestID, method, endpoint, zap.String("url", req.URL.String()))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.LogResponse(requestID, 0, time.Since(startTime).Milliseconds(),
			zap.String("endpoint", endpoint), zap.Error(err))
		return nil, fmt.Errorf("failed to perform request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, c.maxResponseSize))
	if err != nil {
		log.LogResponse(requestID, resp.StatusCode, time.Since(startTime).Milliseconds(),
			zap.String("endpoint", endpoint), zap.Error(err))
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	duration := time.Since(startTime).Milliseconds()
	log.LogResponse(requestID, resp.StatusCode, duration, zap.String("endpoint", endpoint))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &retry.HTTPError{
			StatusCode: resp.StatusCode,
			Body:       respBody,
			RetryAfter: retry.ParseRetryAfter(resp.Header.Get("Retry-After")),
		}
	}

	return respBody, nil
}

// setBrowserHeaders applies the header profile the Odyssey frontend sends.
// The API fronts requests with bot protection; plain client headers get
// challenged.
func (c *Client) setBrowserHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")
	req.Header.Set("Origin", frontendOrigin)
	req.Header.Set("Referer", frontendOrigin+"/")
	req.Header.Set("Connection", "keep-alive")

	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}
}
