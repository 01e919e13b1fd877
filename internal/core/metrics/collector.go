package metrics

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"recipe-explorer/internal/pkg/common"
)

// 操作類型
const (
	TypeInternal = "internal"
	TypeExternal = "external"
)

// DefaultMaxSamples 預設保留的樣本數
const DefaultMaxSamples = 1000

// DefaultRecentLimit Recent 未指定數量時的預設值
const DefaultRecentLimit = 100

// Sample 單筆計時紀錄
type Sample struct {
	Timestamp     time.Time      `json:"timestamp"`
	OperationType string         `json:"operation_type"`
	OperationName string         `json:"operation_name"`
	DurationMS    float64        `json:"duration_ms"`
	Metadata      map[string]any `json:"metadata"`
}

// OperationStats 單一操作的累計統計
type OperationStats struct {
	Count   int     `json:"count"`
	TotalMS float64 `json:"total_ms"`
	MinMS   float64 `json:"min_ms"`
	MaxMS   float64 `json:"max_ms"`
	AvgMS   float64 `json:"avg_ms"`
}

// Statistics 聚合統計
type Statistics struct {
	InternalAvgMS   float64                   `json:"internal_avg_ms"`
	InternalCount   int                       `json:"internal_count"`
	ExternalAvgMS   float64                   `json:"external_avg_ms"`
	ExternalCount   int                       `json:"external_count"`
	Operations      map[string]OperationStats `json:"operations"`
	TotalOperations int                       `json:"total_operations"`
}

// Comparison 內部與外部操作的效能比較
type Comparison struct {
	InternalAvgMS float64 `json:"internal_avg_ms"`
	ExternalAvgMS float64 `json:"external_avg_ms"`
	DifferenceMS  float64 `json:"difference_ms"`
	Ratio         float64 `json:"ratio"`
	Faster        string  `json:"faster"`
	Message       string  `json:"message"`
}

// Collector 計時樣本收集器，以環形緩衝保留最近的樣本
type Collector struct {
	mu        sync.RWMutex
	samples   []Sample
	next      int
	full      bool
	opStats   map[string]*OperationStats
	histogram *prometheus.HistogramVec
	now       func() time.Time
}

// NewCollector 創建收集器；reg 為 nil 時不註冊 Prometheus 指標
func NewCollector(maxSamples int, reg prometheus.Registerer) *Collector {
	if maxSamples <= 0 {
		maxSamples = DefaultMaxSamples
	}

	histogram := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recipe_operation_duration_seconds",
			Help:    "Duration of internal storage and external API operations in seconds",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"type", "operation"},
	)
	if reg != nil {
		reg.MustRegister(histogram)
	}

	return &Collector{
		samples:   make([]Sample, maxSamples),
		opStats:   make(map[string]*OperationStats),
		histogram: histogram,
		now:       time.Now,
	}
}

// Record 記錄一筆樣本
func (c *Collector) Record(opType, opName string, d time.Duration, metadata map[string]any) {
	ms := common.DurationMS(d)
	if metadata == nil {
		metadata = map[string]any{}
	}

	c.mu.Lock()
	c.samples[c.next] = Sample{
		Timestamp:     c.now(),
		OperationType: opType,
		OperationName: opName,
		DurationMS:    common.RoundMS(ms),
		Metadata:      metadata,
	}
	c.next = (c.next + 1) % len(c.samples)
	if c.next == 0 {
		c.full = true
	}

	stats, ok := c.opStats[opName]
	if !ok {
		stats = &OperationStats{MinMS: math.Inf(1)}
		c.opStats[opName] = stats
	}
	stats.Count++
	stats.TotalMS += ms
	stats.MinMS = math.Min(stats.MinMS, ms)
	stats.MaxMS = math.Max(stats.MaxMS, ms)
	stats.AvgMS = common.RoundMS(stats.TotalMS / float64(stats.Count))
	c.mu.Unlock()

	c.histogram.WithLabelValues(opType, opName).Observe(d.Seconds())

	common.LogDebug("Recorded metric",
		zap.String("type", opType),
		zap.String("operation", opName),
		zap.Float64("duration_ms", ms),
	)
}

// retained 依時間順序回傳保留中的樣本，需持有讀鎖
func (c *Collector) retained() []Sample {
	if !c.full {
		return c.samples[:c.next]
	}
	out := make([]Sample, 0, len(c.samples))
	out = append(out, c.samples[c.next:]...)
	return append(out, c.samples[:c.next]...)
}

// Len 保留中的樣本數
func (c *Collector) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.full {
		return len(c.samples)
	}
	return c.next
}

// Recent 回傳最新的 limit 筆樣本（依時間順序），limit <= 0 時為 100
func (c *Collector) Recent(limit int) []Sample {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	all := c.retained()
	if len(all) > limit {
		all = all[len(all)-limit:]
	}
	out := make([]Sample, len(all))
	copy(out, all)
	return out
}

// Statistics 回傳聚合統計
func (c *Collector) Statistics() Statistics {
	c.mu.RLock()
	defer c.mu.RUnlock()

	all := c.retained()
	stats := Statistics{
		Operations:      make(map[string]OperationStats, len(c.opStats)),
		TotalOperations: len(all),
	}

	var internalSum, externalSum float64
	for _, s := range all {
		switch s.OperationType {
		case TypeInternal:
			internalSum += s.DurationMS
			stats.InternalCount++
		case TypeExternal:
			externalSum += s.DurationMS
			stats.ExternalCount++
		}
	}
	if stats.InternalCount > 0 {
		stats.InternalAvgMS = common.RoundMS(internalSum / float64(stats.InternalCount))
	}
	if stats.ExternalCount > 0 {
		stats.ExternalAvgMS = common.RoundMS(externalSum / float64(stats.ExternalCount))
	}

	for name, op := range c.opStats {
		stats.Operations[name] = OperationStats{
			Count:   op.Count,
			TotalMS: common.RoundMS(op.TotalMS),
			MinMS:   common.RoundMS(op.MinMS),
			MaxMS:   common.RoundMS(op.MaxMS),
			AvgMS:   op.AvgMS,
		}
	}
	return stats
}

// Comparison 內外部皆有樣本時回傳比較結果，否則為 nil
func (c *Collector) Comparison() *Comparison {
	stats := c.Statistics()
	if stats.InternalCount == 0 || stats.ExternalCount == 0 {
		return nil
	}

	cmp := &Comparison{
		InternalAvgMS: stats.InternalAvgMS,
		ExternalAvgMS: stats.ExternalAvgMS,
		DifferenceMS:  common.RoundMS(math.Abs(stats.ExternalAvgMS - stats.InternalAvgMS)),
	}

	switch {
	case stats.InternalAvgMS <= stats.ExternalAvgMS:
		cmp.Faster = TypeInternal
		if stats.InternalAvgMS > 0 {
			cmp.Ratio = common.RoundMS(stats.ExternalAvgMS / stats.InternalAvgMS)
			cmp.Message = fmt.Sprintf("Internal operations are %.2fx faster than external API calls", cmp.Ratio)
		} else {
			cmp.Message = "Internal operations completed in under 0.01ms"
		}
	default:
		cmp.Faster = TypeExternal
		if stats.ExternalAvgMS > 0 {
			cmp.Ratio = common.RoundMS(stats.InternalAvgMS / stats.ExternalAvgMS)
		}
		cmp.Message = fmt.Sprintf("External API calls are %.2fx faster than internal operations", cmp.Ratio)
	}
	return cmp
}

// Clear 清除所有樣本與統計
func (c *Collector) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.samples {
		c.samples[i] = Sample{}
	}
	c.next = 0
	c.full = false
	c.opStats = make(map[string]*OperationStats)

	common.LogInfo("Cleared all metrics")
}
