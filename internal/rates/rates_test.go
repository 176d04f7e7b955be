package rates

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

func nbuStub(t *testing.T, calls *atomic.Int64) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/NBU_Exchange/exchange_site", r.URL.Path)
		assert.Equal(t, "eur", r.URL.Query().Get("valcode"))
		w.Write([]byte(`[
			{"exchangedate":"05.01.2024","rate_per_unit":42.51},
			{"exchangedate":"04.01.2024","rate_per_unit":42.37},
			{"exchangedate":"03.01.2024","rate_per_unit":42.10}]`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestLoad_FetchesAndPersists(t *testing.T) {
	var calls atomic.Int64
	srv := nbuStub(t, &calls)
	path := filepath.Join(t.TempDir(), "rates.json")

	c := NewWithBaseURL(path, EUR, srv.URL)
	require.NoError(t, c.Load(day(3), day(5)))

	rate, ok := c.Rate(day(4))
	require.True(t, ok)
	assert.InDelta(t, 42.37, rate, 0.001)

	_, ok = c.Rate(day(10))
	assert.False(t, ok)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "2024-01-05")
}

func TestLoad_CoveredSpanStaysOffline(t *testing.T) {
	var calls atomic.Int64
	srv := nbuStub(t, &calls)
	path := filepath.Join(t.TempDir(), "rates.json")

	c := NewWithBaseURL(path, EUR, srv.URL)
	require.NoError(t, c.Load(day(3), day(5)))
	require.NoError(t, c.Load(day(3), day(5)))
	assert.Equal(t, int64(1), calls.Load())

	// A fresh cache instance over the same file also stays offline.
	c2 := NewWithBaseURL(path, EUR, srv.URL)
	require.NoError(t, c2.Load(day(3), day(5)))
	assert.Equal(t, int64(1), calls.Load())
}

func TestLoad_ExtendsPartialCoverage(t *testing.T) {
	var calls atomic.Int64
	srv := nbuStub(t, &calls)
	path := filepath.Join(t.TempDir(), "rates.json")

	c := NewWithBaseURL(path, EUR, srv.URL)
	require.NoError(t, c.Load(day(3), day(4)))
	require.NoError(t, c.Load(day(4), day(5)))
	assert.Equal(t, int64(2), calls.Load(), "the span end was not cached yet")
}

func TestLoad_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	c := NewWithBaseURL(filepath.Join(t.TempDir(), "rates.json"), EUR, srv.URL)
	err := c.Load(day(3), day(5))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 503")
}

func TestLoad_CorruptCacheFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rates.json")
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o644))

	c := New(path, EUR)
	err := c.Load(day(3), day(5))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing rates cache")
}
