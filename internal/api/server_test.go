package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/stromning/scholartrend/internal/chart"
	"github.com/stromning/scholartrend/internal/dataset"
)

type stubStore struct {
	data dataset.Dataset
	err  error
}

func (s *stubStore) Load(context.Context) (dataset.Dataset, error) { return s.data, s.err }
func (s *stubStore) Save(context.Context, dataset.Dataset) error   { return nil }
func (s *stubStore) Close() error                                  { return nil }

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

func newTestServer(store dataset.Store) *Server {
	return NewServer(
		store,
		chart.NewRenderer(chart.Config{Width: 400, Height: 300}),
		fixedClock{now: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)},
		zap.NewNop(),
	)
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	server := newTestServer(&stubStore{})

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestGetCounts(t *testing.T) {
	t.Parallel()

	server := newTestServer(&stubStore{data: dataset.Dataset{
		{Year: 2020, Count: 100},
		{Year: 2021, Count: 150},
	}})

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/counts", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var got dataset.Dataset
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, dataset.Dataset{{Year: 2020, Count: 100}, {Year: 2021, Count: 150}}, got)
}

func TestGetCountsStoreError(t *testing.T) {
	t.Parallel()

	server := newTestServer(&stubStore{err: errors.New("disk gone")})

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/counts", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestGetChartPNG(t *testing.T) {
	t.Parallel()

	server := newTestServer(&stubStore{data: dataset.Dataset{{Year: 2020, Count: 100}}})

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/chart.png", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, "\x89PNG\r\n\x1a\n", rec.Body.String()[:8])
}

func TestGetChartEmptyDataset(t *testing.T) {
	t.Parallel()

	server := newTestServer(&stubStore{})

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/chart.png", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetCSV(t *testing.T) {
	t.Parallel()

	server := newTestServer(&stubStore{data: dataset.Dataset{{Year: 2020, Count: 100}}})

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/data.csv", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Equal(t, "year,count\n2020,100\n", rec.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()

	server := newTestServer(&stubStore{})

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
