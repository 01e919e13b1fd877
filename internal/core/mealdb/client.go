package mealdb

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"recipe-explorer/internal/core/cache"
	"recipe-explorer/internal/core/metrics"
	"recipe-explorer/internal/core/recipe"
	"recipe-explorer/internal/infrastructure/config"
	"recipe-explorer/internal/pkg/common"
)

// Client TheMealDB API 客戶端
type Client struct {
	http      *resty.Client
	cache     cache.Store
	collector *metrics.Collector
	now       func() time.Time
}

var _ recipe.ExternalSource = (*Client)(nil)

// NewClient 創建 TheMealDB 客戶端；store 與 collector 可為 nil
func NewClient(cfg config.MealDBConfig, store cache.Store, collector *metrics.Collector) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "recipe-explorer")

	return &Client{
		http:      client,
		cache:     store,
		collector: collector,
		now:       time.Now,
	}
}

// SearchMeals 依名稱搜尋，空白查詢不呼叫外部服務
func (c *Client) SearchMeals(ctx context.Context, query string) ([]recipe.Recipe, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		common.LogWarn("Empty search query provided to TheMealDB client")
		return []recipe.Recipe{}, nil
	}

	timer := metrics.StartTimer("external/" + OpSearchMeals)
	meals, cacheHit, err := c.fetch(ctx, "/search.php", "s", query, cache.Key("mealdb:search", strings.ToLower(query)))

	results := make([]recipe.Recipe, 0, len(meals))
	if err == nil {
		now := c.now()
		for _, meal := range meals {
			r, terr := Transform(meal, now)
			if terr != nil {
				common.LogError("Error transforming meal",
					zap.String("id", meal.str("idMeal")),
					zap.Error(terr),
				)
				continue
			}
			results = append(results, r)
		}
	}

	d := timer.StopAndRecord(c.collector, metrics.TypeExternal, OpSearchMeals, map[string]any{
		"query":        query,
		"result_count": len(results),
		"cache_hit":    cacheHit,
	})
	common.LogExternalCall(OpSearchMeals, d, err)

	if err != nil {
		return nil, err
	}
	return results, nil
}

// GetMealByID 依 ID 取得單一料理
func (c *Client) GetMealByID(ctx context.Context, id string) (*recipe.Recipe, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		common.LogWarn("Empty meal id provided to TheMealDB client")
		return nil, ErrMealNotFound
	}

	timer := metrics.StartTimer("external/" + OpGetMealByID)
	meals, cacheHit, err := c.fetch(ctx, "/lookup.php", "i", id, cache.Key("mealdb:lookup", strings.ToLower(id)))

	var result *recipe.Recipe
	if err == nil {
		if len(meals) == 0 {
			err = ErrMealNotFound
		} else {
			r, terr := Transform(meals[0], c.now())
			if terr != nil {
				err = fmt.Errorf("%w: %w", ErrUpstream, terr)
			} else {
				result = &r
			}
		}
	}

	d := timer.StopAndRecord(c.collector, metrics.TypeExternal, OpGetMealByID, map[string]any{
		"meal_id":   id,
		"found":     result != nil,
		"cache_hit": cacheHit,
	})
	if errors.Is(err, ErrMealNotFound) {
		common.LogWarn("Meal not found in TheMealDB", zap.String("meal_id", id))
	} else {
		common.LogExternalCall(OpGetMealByID, d, err)
	}

	if err != nil {
		return nil, err
	}
	return result, nil
}

// fetch 先查快取，未命中時呼叫 TheMealDB 並寫回快取
func (c *Client) fetch(ctx context.Context, path, param, value, key string) ([]Meal, bool, error) {
	if body, ok := c.cached(ctx, key); ok {
		var resp mealsResponse
		if err := common.ParseJSONBytes(body, &resp); err == nil {
			return resp.Meals, true, nil
		}
		common.LogWarn("Discarding undecodable cache entry", zap.String("key", key))
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam(param, value).
		Get(path)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, false, fmt.Errorf("%w: unexpected status %d", ErrUpstream, resp.StatusCode())
	}

	var decoded mealsResponse
	if err := common.ParseJSONBytes(resp.Body(), &decoded); err != nil {
		return nil, false, fmt.Errorf("%w: failed to decode response: %w", ErrUpstream, err)
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, key, resp.Body()); err != nil {
			common.LogWarn("Failed to cache TheMealDB response", zap.String("key", key), zap.Error(err))
		}
	}
	return decoded.Meals, false, nil
}

func (c *Client) cached(ctx context.Context, key string) ([]byte, bool) {
	if c.cache == nil {
		return nil, false
	}
	body, err := c.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			common.LogWarn("Cache lookup failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	return body, true
}
