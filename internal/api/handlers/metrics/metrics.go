package metrics

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"recipe-explorer/internal/api/response"
	"recipe-explorer/internal/core/metrics"
	"recipe-explorer/internal/pkg/common"
)

// MaxLimit recent_metrics 單次最多回傳筆數
const MaxLimit = 1000

// Handler 計時統計 API 處理器
type Handler struct {
	collector *metrics.Collector
}

// NewHandler 創建計時統計處理器
func NewHandler(collector *metrics.Collector) *Handler {
	return &Handler{collector: collector}
}

// HandleGetMetrics 回傳統計、最近樣本與內外部效能比較
func (h *Handler) HandleGetMetrics(c *gin.Context) {
	limit := metrics.DefaultRecentLimit
	if raw, ok := c.GetQuery("limit"); ok {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > MaxLimit {
			result := common.NewValidationResult()
			result.Addf("limit", common.CodeInvalidFormat, "Limit must be an integer between 1 and %d", MaxLimit)
			response.Error(c, common.NewValidationFailed(result))
			return
		}
		limit = n
	}

	recent := h.collector.Recent(limit)
	response.Success(c, http.StatusOK, gin.H{
		"statistics":             h.collector.Statistics(),
		"recent_metrics":         recent,
		"performance_comparison": h.collector.Comparison(),
	}, "Metrics retrieved successfully", map[string]any{
		"limit":         limit,
		"returned":      len(recent),
		"total_samples": h.collector.Len(),
	})
}

// HandleClearMetrics 清除所有計時樣本
func (h *Handler) HandleClearMetrics(c *gin.Context) {
	h.collector.Clear()
	response.Success(c, http.StatusOK, gin.H{"cleared": true}, "Metrics cleared successfully", nil)
}
