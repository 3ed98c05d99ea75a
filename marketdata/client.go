// Package marketdata provides a client for the Finnhub market-data API.
package marketdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL   = "https://finnhub.io/api/v1"
	DefaultTimeout   = 10 * time.Second
	DefaultRateLimit = 10 // requests per second

	maxAttempts    = 3
	initialBackoff = 200 * time.Millisecond
)

// ErrUnknownSymbol is returned when Finnhub answers a quote request with an
// all-zero body, which is how it signals a ticker it does not know.
var ErrUnknownSymbol = errors.New("unknown symbol")

// APIError wraps any failure talking to Finnhub: transport errors, timeouts
// and non-2xx responses all end up here with the upstream message preserved.
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("finnhub: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// Quote is a point-in-time snapshot of a symbol's price. Field mapping
// follows Finnhub's /quote response (c, d, dp, h, l, o, pc, t).
type Quote struct {
	Symbol        string  `json:"symbol"`
	CurrentPrice  float64 `json:"currentPrice"`
	Change        float64 `json:"change"`
	PercentChange float64 `json:"percentChange"`
	HighPrice     float64 `json:"highPrice"`
	LowPrice      float64 `json:"lowPrice"`
	OpenPrice     float64 `json:"openPrice"`
	PreviousClose float64 `json:"previousClose"`
	Timestamp     int64   `json:"timestamp"`
}

// SearchResult is one match from Finnhub's symbol search.
type SearchResult struct {
	Description   string `json:"description"`
	DisplaySymbol string `json:"displaySymbol"`
	Symbol        string `json:"symbol"`
	Type          string `json:"type"`
}

// CompanyProfile mirrors Finnhub's /stock/profile2 payload.
type CompanyProfile struct {
	Country              string  `json:"country"`
	Currency             string  `json:"currency"`
	Exchange             string  `json:"exchange"`
	IPO                  string  `json:"ipo"`
	MarketCapitalization float64 `json:"marketCapitalization"`
	Name                 string  `json:"name"`
	Phone                string  `json:"phone"`
	SharesOutstanding    float64 `json:"shareOutstanding"`
	Ticker               string  `json:"ticker"`
	WebURL               string  `json:"weburl"`
	Logo                 string  `json:"logo"`
	Industry             string  `json:"finnhubIndustry"`
}

// Candles holds OHLCV series from /stock/candle. Status is "ok" or
// "no_data".
type Candles struct {
	Close      []float64 `json:"c"`
	High       []float64 `json:"h"`
	Low        []float64 `json:"l"`
	Open       []float64 `json:"o"`
	Status     string    `json:"s"`
	Timestamps []int64   `json:"t"`
	Volumes    []float64 `json:"v"`
}

// Client talks to Finnhub with a fixed HTTP timeout, client-side rate
// limiting and bounded retry on transient failures.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// ClientOption configures the client.
type ClientOption func(*Client)

// WithBaseURL sets the base URL.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithRateLimit sets the request rate limit.
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithTimeout sets the HTTP timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new Finnhub client.
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// get performs a rate-limited GET with bounded retry. Transport errors and
// 5xx responses retry with exponential backoff; 4xx responses do not.
func (c *Client) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	if params == nil {
		params = url.Values{}
	}
	params.Set("token", c.apiKey)

	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	var lastErr error
	backoff := initialBackoff

	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return &APIError{Message: ctx.Err().Error(), Endpoint: path}
			}
			backoff *= 2
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return &APIError{Message: err.Error(), Endpoint: path}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return &APIError{Message: err.Error(), Endpoint: path}
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = &APIError{Message: err.Error(), Endpoint: path}
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = &APIError{StatusCode: resp.StatusCode, Message: err.Error(), Endpoint: path}
			continue
		}

		if resp.StatusCode >= 500 {
			lastErr = &APIError{StatusCode: resp.StatusCode, Message: string(body), Endpoint: path}
			continue
		}
		if resp.StatusCode != http.StatusOK {
			return &APIError{StatusCode: resp.StatusCode, Message: string(body), Endpoint: path}
		}

		if err := json.Unmarshal(body, result); err != nil {
			return &APIError{StatusCode: resp.StatusCode, Message: "decode response: " + err.Error(), Endpoint: path}
		}
		return nil
	}

	return lastErr
}

// GetQuote fetches the current quote for one symbol. An all-zero response
// means Finnhub does not know the ticker and yields ErrUnknownSymbol.
func (c *Client) GetQuote(ctx context.Context, symbol string) (*Quote, error) {
	var raw struct {
		C  float64 `json:"c"`
		D  float64 `json:"d"`
		DP float64 `json:"dp"`
		H  float64 `json:"h"`
		L  float64 `json:"l"`
		O  float64 `json:"o"`
		PC float64 `json:"pc"`
		T  int64   `json:"t"`
	}

	params := url.Values{}
	params.Set("symbol", symbol)
	if err := c.get(ctx, "/quote", params, &raw); err != nil {
		return nil, err
	}

	if raw.C == 0 && raw.PC == 0 && raw.T == 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSymbol, symbol)
	}

	return &Quote{
		Symbol:        symbol,
		CurrentPrice:  raw.C,
		Change:        raw.D,
		PercentChange: raw.DP,
		HighPrice:     raw.H,
		LowPrice:      raw.L,
		OpenPrice:     raw.O,
		PreviousClose: raw.PC,
		Timestamp:     raw.T,
	}, nil
}

// GetQuotes fetches quotes for many symbols concurrently. A symbol whose
// fetch fails is simply absent from the result; callers treat missing
// entries as price 0 so one bad ticker never sinks a whole valuation.
func (c *Client) GetQuotes(ctx context.Context, symbols []string) map[string]Quote {
	quotes := make(map[string]Quote, len(symbols))

	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, symbol := range symbols {
		wg.Add(1)
		go func(symbol string) {
			defer wg.Done()
			q, err := c.GetQuote(ctx, symbol)
			if err != nil {
				return
			}
			mu.Lock()
			quotes[symbol] = *q
			mu.Unlock()
		}(symbol)
	}
	wg.Wait()

	return quotes
}

// Search runs Finnhub's symbol search.
func (c *Client) Search(ctx context.Context, query string) ([]SearchResult, error) {
	var raw struct {
		Count  int            `json:"count"`
		Result []SearchResult `json:"result"`
	}

	params := url.Values{}
	params.Set("q", query)
	if err := c.get(ctx, "/search", params, &raw); err != nil {
		return nil, err
	}
	return raw.Result, nil
}

// GetProfile fetches the company profile for a symbol.
func (c *Client) GetProfile(ctx context.Context, symbol string) (*CompanyProfile, error) {
	var profile CompanyProfile

	params := url.Values{}
	params.Set("symbol", symbol)
	if err := c.get(ctx, "/stock/profile2", params, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// GetCandles fetches historical OHLCV data for a symbol between from and to
// (unix seconds) at the given resolution (1, 5, 15, 30, 60, D, W, M).
func (c *Client) GetCandles(ctx context.Context, symbol, resolution string, from, to int64) (*Candles, error) {
	var candles Candles

	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("resolution", resolution)
	params.Set("from", fmt.Sprintf("%d", from))
	params.Set("to", fmt.Sprintf("%d", to))
	if err := c.get(ctx, "/stock/candle", params, &candles); err != nil {
		return nil, err
	}
	return &candles, nil
}
