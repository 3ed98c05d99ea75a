package marketdata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := NewClient("test-key", WithBaseURL(srv.URL), WithRateLimit(1000))
	return client, srv
}

func TestGetQuoteMapsFinnhubFields(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/quote", r.URL.Path)
		assert.Equal(t, "AAPL", r.URL.Query().Get("symbol"))
		assert.Equal(t, "test-key", r.URL.Query().Get("token"))
		w.Write([]byte(`{"c":165.5,"d":1.5,"dp":0.91,"h":166,"l":163.2,"o":164,"pc":164,"t":1712345678}`))
	}))

	quote, err := client.GetQuote(context.Background(), "AAPL")
	require.NoError(t, err)

	assert.Equal(t, "AAPL", quote.Symbol)
	assert.InDelta(t, 165.5, quote.CurrentPrice, 1e-9)
	assert.InDelta(t, 1.5, quote.Change, 1e-9)
	assert.InDelta(t, 0.91, quote.PercentChange, 1e-9)
	assert.InDelta(t, 166.0, quote.HighPrice, 1e-9)
	assert.InDelta(t, 163.2, quote.LowPrice, 1e-9)
	assert.InDelta(t, 164.0, quote.OpenPrice, 1e-9)
	assert.InDelta(t, 164.0, quote.PreviousClose, 1e-9)
	assert.Equal(t, int64(1712345678), quote.Timestamp)
}

func TestGetQuoteUnknownSymbol(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"c":0,"d":null,"dp":null,"h":0,"l":0,"o":0,"pc":0,"t":0}`))
	}))

	_, err := client.GetQuote(context.Background(), "NOPE")
	assert.ErrorIs(t, err, ErrUnknownSymbol)
}

func TestGetRetriesOn5xxThenSucceeds(t *testing.T) {
	var calls int32
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			http.Error(w, "upstream exploded", http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"c":100,"pc":99,"t":1}`))
	}))

	quote, err := client.GetQuote(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.InDelta(t, 100.0, quote.CurrentPrice, 1e-9)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestGetDoesNotRetryOn4xx(t *testing.T) {
	var calls int32
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "bad token", http.StatusUnauthorized)
	}))

	_, err := client.GetQuote(context.Background(), "AAPL")
	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Contains(t, apiErr.Message, "bad token")
}

func TestGetGivesUpAfterMaxAttempts(t *testing.T) {
	var calls int32
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "still broken", http.StatusInternalServerError)
	}))

	_, err := client.GetQuote(context.Background(), "AAPL")
	require.Error(t, err)
	assert.Equal(t, int32(maxAttempts), atomic.LoadInt32(&calls))

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
}

func TestGetQuotesDegradesPerSymbol(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("symbol") == "BAD" {
			w.Write([]byte(`{"c":0,"pc":0,"t":0}`))
			return
		}
		w.Write([]byte(`{"c":50,"pc":49,"t":1}`))
	}))

	quotes := client.GetQuotes(context.Background(), []string{"AAPL", "BAD", "MSFT"})

	assert.Len(t, quotes, 2)
	assert.Contains(t, quotes, "AAPL")
	assert.Contains(t, quotes, "MSFT")
	assert.NotContains(t, quotes, "BAD")
}

func TestSearch(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "apple", r.URL.Query().Get("q"))
		w.Write([]byte(`{"count":1,"result":[{"description":"APPLE INC","displaySymbol":"AAPL","symbol":"AAPL","type":"Common Stock"}]}`))
	}))

	results, err := client.Search(context.Background(), "apple")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "AAPL", results[0].Symbol)
	assert.Equal(t, "APPLE INC", results[0].Description)
}

func TestGetCandles(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/stock/candle", r.URL.Path)
		assert.Equal(t, "D", r.URL.Query().Get("resolution"))
		w.Write([]byte(`{"c":[10,11],"h":[10.5,11.5],"l":[9.5,10.5],"o":[10,11],"s":"ok","t":[1,2],"v":[1000,1100]}`))
	}))

	candles, err := client.GetCandles(context.Background(), "AAPL", "D", 1, 2)
	require.NoError(t, err)
	assert.Equal(t, "ok", candles.Status)
	assert.Len(t, candles.Close, 2)
}
