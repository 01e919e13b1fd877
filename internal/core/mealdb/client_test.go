package mealdb

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recipe-explorer/internal/core/cache"
	"recipe-explorer/internal/core/metrics"
	"recipe-explorer/internal/infrastructure/config"
)

type fakeMealDB struct {
	server *httptest.Server
	calls  atomic.Int32
	status int
}

func newFakeMealDB(t *testing.T, status int) *fakeMealDB {
	t.Helper()
	f := &fakeMealDB{status: status}
	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.calls.Add(1)
		if f.status != http.StatusOK {
			w.WriteHeader(f.status)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		var meals []Meal
		switch r.URL.Path {
		case "/search.php":
			if r.URL.Query().Get("s") == "chicken" {
				meals = []Meal{teriyakiMeal(), {"strMeal": "broken"}}
			}
		case "/lookup.php":
			if r.URL.Query().Get("i") == "52772" {
				meals = []Meal{teriyakiMeal()}
			}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"meals": meals})
	}))
	t.Cleanup(f.server.Close)
	return f
}

func newTestClient(t *testing.T, f *fakeMealDB, store cache.Store) (*Client, *metrics.Collector) {
	t.Helper()
	collector := metrics.NewCollector(100, nil)
	c := NewClient(config.MealDBConfig{
		Enabled: true,
		BaseURL: f.server.URL,
		Timeout: 2 * time.Second,
	}, store, collector)
	return c, collector
}

func TestSearchMeals(t *testing.T) {
	f := newFakeMealDB(t, http.StatusOK)
	c, collector := newTestClient(t, f, nil)

	results, err := c.SearchMeals(context.Background(), "  chicken ")
	require.NoError(t, err)
	// 缺少 idMeal 的料理會被略過
	require.Len(t, results, 1)
	assert.Equal(t, "52772", results[0].ID)

	recent := collector.Recent(1)
	require.Len(t, recent, 1)
	assert.Equal(t, OpSearchMeals, recent[0].OperationName)
	assert.Equal(t, "chicken", recent[0].Metadata["query"])
	assert.Equal(t, 1, recent[0].Metadata["result_count"])
	assert.Equal(t, false, recent[0].Metadata["cache_hit"])
}

func TestSearchMealsNoResults(t *testing.T) {
	f := newFakeMealDB(t, http.StatusOK)
	c, _ := newTestClient(t, f, nil)

	results, err := c.SearchMeals(context.Background(), "zzz")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchMealsBlankQuerySkipsCall(t *testing.T) {
	f := newFakeMealDB(t, http.StatusOK)
	c, collector := newTestClient(t, f, nil)

	results, err := c.SearchMeals(context.Background(), "   ")
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Equal(t, int32(0), f.calls.Load())
	assert.Equal(t, 0, collector.Len())
}

func TestSearchMealsUpstreamError(t *testing.T) {
	f := newFakeMealDB(t, http.StatusInternalServerError)
	c, collector := newTestClient(t, f, nil)

	_, err := c.SearchMeals(context.Background(), "chicken")
	assert.ErrorIs(t, err, ErrUpstream)
	assert.Equal(t, 1, collector.Len())
}

func TestSearchMealsUsesCache(t *testing.T) {
	f := newFakeMealDB(t, http.StatusOK)
	store := cache.NewManager(config.CacheConfig{MaxSize: 10, TTL: time.Minute})
	defer store.Close()
	c, collector := newTestClient(t, f, store)

	_, err := c.SearchMeals(context.Background(), "chicken")
	require.NoError(t, err)
	results, err := c.SearchMeals(context.Background(), "Chicken")
	require.NoError(t, err)

	assert.Len(t, results, 1)
	assert.Equal(t, int32(1), f.calls.Load())
	assert.Equal(t, true, collector.Recent(1)[0].Metadata["cache_hit"])
}

func TestGetMealByID(t *testing.T) {
	f := newFakeMealDB(t, http.StatusOK)
	c, collector := newTestClient(t, f, nil)

	r, err := c.GetMealByID(context.Background(), "52772")
	require.NoError(t, err)
	assert.Equal(t, "Teriyaki Chicken Casserole", r.Title)

	_, err = c.GetMealByID(context.Background(), "99999")
	assert.ErrorIs(t, err, ErrMealNotFound)

	_, err = c.GetMealByID(context.Background(), " ")
	assert.ErrorIs(t, err, ErrMealNotFound)

	recent := collector.Recent(10)
	require.Len(t, recent, 2)
	assert.Equal(t, true, recent[0].Metadata["found"])
	assert.Equal(t, false, recent[1].Metadata["found"])
}

func TestGetMealByIDUpstreamError(t *testing.T) {
	f := newFakeMealDB(t, http.StatusBadGateway)
	c, _ := newTestClient(t, f, nil)

	_, err := c.GetMealByID(context.Background(), "52772")
	assert.ErrorIs(t, err, ErrUpstream)
}

func TestClientTimeout(t *testing.T) {
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer slow.Close()

	c := NewClient(config.MealDBConfig{BaseURL: slow.URL, Timeout: 50 * time.Millisecond}, nil, nil)
	_, err := c.SearchMeals(context.Background(), "chicken")
	assert.ErrorIs(t, err, ErrUpstream)
}
