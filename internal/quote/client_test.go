package quote

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mtlprog/budget/internal/date"
)

func TestFetchRates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/2024-01-02..2024-01-03" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.URL.Query().Get("base") != "EUR" || r.URL.Query().Get("symbols") != "USD,CHF" {
			t.Errorf("query = %s", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"base": "EUR",
			"start_date": "2024-01-02",
			"rates": {
				"2024-01-02": {"USD": 1.0956, "CHF": 0.9312},
				"2024-01-03": {"USD": 1.0919, "CHF": 0.9290}
			}
		}`))
	}))
	defer server.Close()

	client := NewHTTPClient("", WithRatesURL(server.URL), WithRetry(0, 0))
	quotes, err := client.FetchRates(context.Background(), "EUR", []string{"USD", "CHF"},
		date.MustParse("2024-01-02"), date.MustParse("2024-01-03"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(quotes) != 4 {
		t.Fatalf("got %d quotes, want 4", len(quotes))
	}

	found := false
	for _, q := range quotes {
		if q.Kind != KindRate {
			t.Errorf("kind = %s, want rate", q.Kind)
		}
		if q.Symbol == "EUR/USD" && q.Date == date.MustParse("2024-01-03") {
			found = true
			if !q.Value.Equal(decimal.RequireFromString("1.0919")) {
				t.Errorf("EUR/USD = %s, want 1.0919", q.Value)
			}
		}
	}
	if !found {
		t.Error("EUR/USD on 2024-01-03 missing")
	}
}

func TestFetchRatesNoSymbols(t *testing.T) {
	client := NewHTTPClient("", WithRatesURL("http://127.0.0.1:0"))
	quotes, err := client.FetchRates(context.Background(), "EUR", nil, date.Today(), date.Today())
	if err != nil || quotes != nil {
		t.Errorf("FetchRates without symbols = %v, %v", quotes, err)
	}
}

func TestFetchPrices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/eod/VT.US" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.URL.Query().Get("api_token") != "secret" {
			t.Error("api token not sent")
		}
		w.Write([]byte(`[
			{"date": "2024-06-03", "open": 11.5, "close": 12.01, "volume": 100},
			{"date": "2024-06-04", "open": 12.0, "close": 12.34, "volume": 100}
		]`))
	}))
	defer server.Close()

	client := NewHTTPClient("secret", WithPricesURL(server.URL+"/"))
	quotes, err := client.FetchPrices(context.Background(), "VT.US", date.MustParse("2024-06-03"), date.MustParse("2024-06-04"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(quotes) != 2 || quotes[1].Symbol != "VT.US" || !quotes[1].Value.Equal(decimal.RequireFromString("12.34")) {
		t.Errorf("quotes = %+v", quotes)
	}
}

func TestFetchRetryOn429(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`[{"date": "2024-06-03", "close": 8}]`))
	}))
	defer server.Close()

	client := NewHTTPClient("k", WithPricesURL(server.URL), WithRetry(2, 10*time.Millisecond), WithRateLimit(100))
	quotes, err := client.FetchPrices(context.Background(), "VT", date.MustParse("2024-06-03"), date.MustParse("2024-06-03"))
	if err != nil {
		t.Fatalf("unexpected error after retry: %v", err)
	}
	if attempts != 2 || len(quotes) != 1 {
		t.Errorf("attempts = %d, quotes = %d", attempts, len(quotes))
	}
}

func TestFetchGivesUpAfterRetries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewHTTPClient("k", WithPricesURL(server.URL), WithRetry(1, time.Millisecond))
	if _, err := client.FetchPrices(context.Background(), "VT", date.Today(), date.Today()); err == nil {
		t.Fatal("expected error when rate limited on every attempt")
	}
}

func TestFetchHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad ticker", http.StatusNotFound)
	}))
	defer server.Close()

	client := NewHTTPClient("k", WithPricesURL(server.URL))
	if _, err := client.FetchPrices(context.Background(), "NOPE", date.Today(), date.Today()); err == nil {
		t.Fatal("expected error on HTTP 404")
	}
}

func TestFetchContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(1 * time.Second)
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	client := NewHTTPClient("k", WithPricesURL(server.URL))
	if _, err := client.FetchPrices(ctx, "VT", date.Today(), date.Today()); err == nil {
		t.Fatal("expected error on cancelled context")
	}
}
