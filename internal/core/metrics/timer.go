package metrics

import (
	"time"

	"go.uber.org/zap"

	"recipe-explorer/internal/pkg/common"
)

// Timer 計時器
type Timer struct {
	operation string
	start     time.Time
	elapsed   time.Duration
	stopped   bool
}

// StartTimer 開始計時
func StartTimer(operation string) *Timer {
	return &Timer{operation: operation, start: time.Now()}
}

// Stop 停止計時並回傳耗時，重複呼叫回傳第一次的結果
func (t *Timer) Stop() time.Duration {
	if t.stopped {
		return t.elapsed
	}
	t.elapsed = time.Since(t.start)
	t.stopped = true
	common.LogDebug("Operation timed",
		zap.String("operation", t.operation),
		zap.Duration("耗時", t.elapsed),
	)
	return t.elapsed
}

// DurationMS 毫秒耗時，四捨五入到兩位小數
func (t *Timer) DurationMS() float64 {
	if !t.stopped {
		return 0
	}
	return common.RoundMS(common.DurationMS(t.elapsed))
}

// StopAndRecord 停止計時並記錄到收集器
func (t *Timer) StopAndRecord(c *Collector, opType, opName string, metadata map[string]any) time.Duration {
	d := t.Stop()
	if c != nil {
		c.Record(opType, opName, d, metadata)
	}
	return d
}
