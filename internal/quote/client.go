package quote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"github.com/mtlprog/budget/internal/date"
)

const (
	DefaultRatesURL  = "https://api.frankfurter.app"
	DefaultPricesURL = "https://eodhd.com/api"
	DefaultRateLimit = 5 // requests per second
)

// HTTPClient fetches daily exchange rates from a Frankfurter-compatible API and
// end-of-day share prices from an EODHD-compatible API.
type HTTPClient struct {
	ratesURL   string
	pricesURL  string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	delay      time.Duration
	maxRetries int
}

// ClientOption configures the client.
type ClientOption func(*HTTPClient)

func WithRatesURL(u string) ClientOption {
	return func(c *HTTPClient) { c.ratesURL = strings.TrimRight(u, "/") }
}

func WithPricesURL(u string) ClientOption {
	return func(c *HTTPClient) { c.pricesURL = strings.TrimRight(u, "/") }
}

// WithRateLimit caps outgoing requests per second.
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *HTTPClient) {
		if requestsPerSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
		}
	}
}

// WithRetry sets the number of retries on HTTP 429 and the base back-off delay.
func WithRetry(maxRetries int, delay time.Duration) ClientOption {
	return func(c *HTTPClient) {
		c.maxRetries = maxRetries
		c.delay = delay
	}
}

// NewHTTPClient creates a quote client. apiKey authenticates share price requests.
func NewHTTPClient(apiKey string, opts ...ClientOption) *HTTPClient {
	c := &HTTPClient{
		ratesURL:   DefaultRatesURL,
		pricesURL:  DefaultPricesURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		delay:      10 * time.Second,
		maxRetries: 3,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchRates returns the daily rates of base against every symbol within [from, to].
// Rates are keyed by Pair(base, symbol).
func (c *HTTPClient) FetchRates(ctx context.Context, base string, symbols []string, from, to date.Date) ([]Quote, error) {
	if len(symbols) == 0 {
		return nil, nil
	}
	params := url.Values{}
	params.Set("base", base)
	params.Set("symbols", strings.Join(symbols, ","))
	reqURL := fmt.Sprintf("%s/%s..%s?%s", c.ratesURL, from, to, params.Encode())

	body, err := c.fetchWithRetry(ctx, reqURL)
	if err != nil {
		return nil, fmt.Errorf("fetching %s rates: %w", base, err)
	}

	// {"base":"EUR","start_date":"2024-01-02","rates":{"2024-01-02":{"USD":1.0956}}}
	var raw struct {
		Base  string                                `json:"base"`
		Rates map[string]map[string]decimal.Decimal `json:"rates"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("parsing rates response: %w", err)
	}

	var quotes []Quote
	for day, bySymbol := range raw.Rates {
		d, err := date.Parse(day)
		if err != nil {
			return nil, fmt.Errorf("parsing rates response: %w", err)
		}
		for symbol, r := range bySymbol {
			quotes = append(quotes, Quote{Kind: KindRate, Symbol: Pair(base, symbol), Date: d, Value: r})
		}
	}
	return quotes, nil
}

// FetchPrices returns the daily closing prices of ticker within [from, to].
func (c *HTTPClient) FetchPrices(ctx context.Context, ticker string, from, to date.Date) ([]Quote, error) {
	params := url.Values{}
	params.Set("api_token", c.apiKey)
	params.Set("fmt", "json")
	params.Set("period", "d")
	params.Set("from", from.String())
	params.Set("to", to.String())
	reqURL := fmt.Sprintf("%s/eod/%s?%s", c.pricesURL, url.PathEscape(ticker), params.Encode())

	body, err := c.fetchWithRetry(ctx, reqURL)
	if err != nil {
		return nil, fmt.Errorf("fetching prices of %s: %w", ticker, err)
	}

	var bars []struct {
		Date  string          `json:"date"`
		Close decimal.Decimal `json:"close"`
	}
	if err := json.Unmarshal(body, &bars); err != nil {
		return nil, fmt.Errorf("parsing prices of %s: %w", ticker, err)
	}

	quotes := make([]Quote, 0, len(bars))
	for _, bar := range bars {
		d, err := date.Parse(bar.Date)
		if err != nil {
			return nil, fmt.Errorf("parsing prices of %s: %w", ticker, err)
		}
		quotes = append(quotes, Quote{Kind: KindPrice, Symbol: ticker, Date: d, Value: bar.Close})
	}
	return quotes, nil
}

func (c *HTTPClient) fetchWithRetry(ctx context.Context, reqURL string) ([]byte, error) {
	var lastErr error
	for attempt := range c.maxRetries + 1 {
		if attempt > 0 {
			delay := c.delay * time.Duration(1<<uint(attempt-1))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("request failed: %w", err)
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("reading response: %w", err)
		}

		if resp.StatusCode == http.StatusOK {
			return body, nil
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			lastErr = fmt.Errorf("rate limited (attempt %d/%d)", attempt+1, c.maxRetries+1)
			continue
		}

		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
	}

	return nil, lastErr
}
