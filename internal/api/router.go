package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"recipe-explorer/internal/api/handlers/health"
	metricsHandler "recipe-explorer/internal/api/handlers/metrics"
	"recipe-explorer/internal/api/handlers/pages"
	recipeHandler "recipe-explorer/internal/api/handlers/recipe"
	"recipe-explorer/internal/api/middleware"
	"recipe-explorer/internal/core/cache"
	"recipe-explorer/internal/core/mealdb"
	"recipe-explorer/internal/core/metrics"
	recipeService "recipe-explorer/internal/core/recipe"
	"recipe-explorer/internal/infrastructure/config"
	"recipe-explorer/internal/pkg/common"
)

// SetupRouter 設置路由；cacheStore 為 nil 時外部回應不快取
func SetupRouter(cfg *config.Config, cacheStore cache.Store) (*gin.Engine, error) {
	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	// 設置 gin 模式
	if !cfg.App.Debug && gin.Mode() == gin.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}

	// 每個路由器使用獨立的 Prometheus registry
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := middleware.NewHTTPMetrics(registry)

	// 創建路由引擎
	router := gin.New()

	// 註冊基礎中間件
	router.Use(middleware.Recovery())
	router.Use(httpMetrics.PanicRecovered())
	router.Use(middleware.Logger())
	router.Use(requestid.New()) // 自動生成請求 ID

	// CORS 設置
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	// 413 回應也要計入請求指標
	router.Use(httpMetrics.Handler())
	router.Use(middleware.BodySizeLimit(cfg.Server.MaxBodyBytes))
	router.Use(middleware.Timeout(cfg.Server.RequestTimeout))

	tmpl, err := pages.LoadTemplates()
	if err != nil {
		return nil, fmt.Errorf("failed to parse page templates: %w", err)
	}
	router.SetHTMLTemplate(tmpl)

	common.LogInfo("Initializing services",
		zap.Bool("mealdb_enabled", cfg.MealDB.Enabled),
		zap.String("cache_backend", cfg.Cache.Backend),
		zap.Bool("cache_available", cacheStore != nil),
		zap.Duration("timeout", cfg.Server.RequestTimeout),
	)

	// 初始化服務
	collector := metrics.NewCollector(cfg.Metrics.MaxSamples, registry)
	store := recipeService.NewStore(cfg.Storage.SeedDefault)
	validator := recipeService.NewValidator(cfg.Import.MaxRecipes)

	var external recipeService.ExternalSource
	if cfg.MealDB.Enabled {
		external = mealdb.NewClient(cfg.MealDB, cacheStore, collector)
	}
	recipeSvc := recipeService.NewService(store, validator, external, collector)

	// 健康檢查路由
	healthHandler := health.NewHandler(cfg, store, cacheStore)
	router.GET("/health", healthHandler.HealthCheck)
	router.GET("/ready", healthHandler.ReadinessCheck)
	router.GET("/live", healthHandler.LivenessCheck)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})))

	// API 路由組
	api := router.Group("/api")
	if cfg.RateLimit.Enabled {
		api.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window, httpMetrics.RateLimitRejected))
	}
	{
		recipeHandlerInstance := recipeHandler.NewHandler(recipeSvc, cfg.Import)

		createHandlers := []gin.HandlerFunc{recipeHandlerInstance.HandleCreateRecipe}
		if cfg.DedupWindow > 0 {
			createHandlers = append([]gin.HandlerFunc{middleware.NewDeduplicator(cfg.DedupWindow).Handler()}, createHandlers...)
		}

		// 註冊食譜相關路由
		recipeGroup := api.Group("/recipes")
		{
			recipeGroup.GET("", recipeHandlerInstance.HandleListRecipes)
			recipeGroup.GET("/export", recipeHandlerInstance.HandleExportRecipes)
			recipeGroup.GET("/internal/:id", recipeHandlerInstance.HandleGetInternalRecipe)
			recipeGroup.GET("/external/:id", recipeHandlerInstance.HandleGetExternalRecipe)
			recipeGroup.GET("/:id", recipeHandlerInstance.HandleGetRecipe)
			recipeGroup.POST("", createHandlers...)
			recipeGroup.POST("/import", recipeHandlerInstance.HandleImportRecipes)
			recipeGroup.PUT("/:id", recipeHandlerInstance.HandleUpdateRecipe)
			recipeGroup.DELETE("/:id", recipeHandlerInstance.HandleDeleteRecipe)
		}

		metricsHandlerInstance := metricsHandler.NewHandler(collector)
		api.GET("/metrics", metricsHandlerInstance.HandleGetMetrics)
		api.DELETE("/metrics", metricsHandlerInstance.HandleClearMetrics)
	}

	// HTML 頁面
	pageHandler := pages.NewHandler(recipeSvc)
	router.GET("/", pageHandler.HandleHome)
	router.GET("/recipes/new", pageHandler.HandleNewForm)
	router.POST("/recipes/new", pageHandler.HandleCreate)
	router.GET("/recipes/:id", pageHandler.HandleDetail)
	router.GET("/recipes/:id/edit", pageHandler.HandleEditForm)
	router.POST("/recipes/:id/edit", pageHandler.HandleUpdate)
	router.POST("/recipes/:id/delete", pageHandler.HandleDelete)
	router.GET("/import", pageHandler.HandleImportPage)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, common.NewErrorResponse(common.NewNotFound("Route", "")))
	})

	common.LogInfo("Router setup completed successfully",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.Bool("external_source", external != nil),
		zap.Bool("rate_limit", cfg.RateLimit.Enabled),
		zap.Duration("dedup_window", cfg.DedupWindow),
		zap.Int64("max_body_size", cfg.Server.MaxBodyBytes),
	)

	return router, nil
}
