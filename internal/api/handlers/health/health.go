package health

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"recipe-explorer/internal/core/cache"
	"recipe-explorer/internal/infrastructure/config"
	"recipe-explorer/internal/pkg/common"
)

// HealthResponse 健康檢查響應
type HealthResponse struct {
	Status    string         `json:"status"`
	Timestamp time.Time      `json:"timestamp"`
	Version   string         `json:"version"`
	Uptime    string         `json:"uptime"`
	Runtime   map[string]any `json:"runtime"`
	Recipes   *RecipeStatus  `json:"recipes,omitempty"`
}

// RecipeStatus 儲存與外部來源狀態
type RecipeStatus struct {
	StoredCount    int          `json:"stored_count"`
	ExternalSource bool         `json:"external_source"`
	CacheBackend   string       `json:"cache_backend"`
	Cache          *cache.Stats `json:"cache,omitempty"`
}

// Counter 回傳目前儲存的食譜數
type Counter interface {
	Count() int
}

// Handler 健康檢查處理器
type Handler struct {
	cfg     *config.Config
	store   Counter
	cache   cache.Store
	started time.Time
}

// NewHandler 創建健康檢查處理器；cacheStore 可為 nil
func NewHandler(cfg *config.Config, store Counter, cacheStore cache.Store) *Handler {
	return &Handler{
		cfg:     cfg,
		store:   store,
		cache:   cacheStore,
		started: time.Now(),
	}
}

// HealthCheck 健康檢查處理器
func (h *Handler) HealthCheck(c *gin.Context) {
	// 獲取運行時信息
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	// 構建響應
	resp := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
		Version:   h.cfg.App.Version,
		Uptime:    time.Since(h.started).Round(time.Second).String(),
		Runtime: map[string]any{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]any{
				"alloc":       m.Alloc,
				"total_alloc": m.TotalAlloc,
				"sys":         m.Sys,
				"num_gc":      m.NumGC,
			},
		},
	}

	if h.store != nil {
		resp.Recipes = &RecipeStatus{
			StoredCount:    h.store.Count(),
			ExternalSource: h.cfg.MealDB.Enabled,
			CacheBackend:   cache.BackendName(h.cache),
		}
		if reporter, ok := h.cache.(cache.StatsReporter); ok {
			stats := reporter.Stats()
			resp.Recipes.Cache = &stats
		}
	}

	// 記錄請求
	common.LogDebug("Health check request",
		zap.String("client_ip", c.ClientIP()),
		zap.String("path", c.Request.URL.Path),
	)

	c.JSON(http.StatusOK, resp)
}

// ReadinessCheck 就緒檢查處理器
func (h *Handler) ReadinessCheck(c *gin.Context) {
	if h.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not_ready",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
	})
}

// LivenessCheck 存活檢查處理器
func (h *Handler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}
