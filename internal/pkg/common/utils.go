package common

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// GenerateUUID 生成 UUID
func GenerateUUID() string {
	return uuid.New().String()
}

// RoundMS 四捨五入到小數點後兩位
func RoundMS(v float64) float64 {
	return math.Round(v*100) / 100
}

// DurationMS 將 time.Duration 轉為毫秒
func DurationMS(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
