package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"recipe-explorer/internal/infrastructure/config"
	"recipe-explorer/internal/pkg/common"
)

// ErrCacheMiss 快取未命中或已過期
var ErrCacheMiss = errors.New("cache miss")

// Store 外部回應快取
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}

// StatsReporter 可回報命中統計的快取
type StatsReporter interface {
	Stats() Stats
}

// BackendName 回傳實際使用中的快取後端名稱
func BackendName(store Store) string {
	switch store.(type) {
	case nil:
		return config.CacheBackendNone
	case *Manager:
		return config.CacheBackendMemory
	case *Redis:
		return config.CacheBackendRedis
	default:
		return "custom"
	}
}

// New 依設定建立快取後端；backend 為 none 時回傳 nil
func New(ctx context.Context, cfg config.CacheConfig) (Store, error) {
	switch cfg.Backend {
	case config.CacheBackendMemory:
		return NewManager(cfg), nil
	case config.CacheBackendRedis:
		r, err := NewRedis(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return r, nil
	case config.CacheBackendNone, "":
		common.LogInfo("Cache disabled")
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

// Key 生成快取鍵
func Key(namespace, raw string) string {
	hash := sha256.Sum256([]byte(raw))
	return fmt.Sprintf("%s:%s", namespace, hex.EncodeToString(hash[:]))
}
