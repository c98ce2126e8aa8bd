package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"obtracker/internal/models"
)

// DueEntry 缓存中的一条到期报警（展示层读取的扁平视图）
type DueEntry struct {
	PatientID string          `json:"patient_id"`
	Room      string          `json:"room"`
	Name      string          `json:"name"`
	AlertID   string          `json:"alert_id"`
	Label     string          `json:"label"`
	AutoType  models.AutoType `json:"auto_type,omitempty"`
	DueAt     time.Time       `json:"due_at"`
}

// DueCache 到期报警缓存（每轮检查后整体刷新，带 TTL）
type DueCache struct {
	client *redis.Client
	key    string
	ttl    time.Duration
	logger *zap.Logger
}

// NewDueCache 创建到期报警缓存
func NewDueCache(client *redis.Client, key string, ttl time.Duration, logger *zap.Logger) *DueCache {
	return &DueCache{
		client: client,
		key:    key,
		ttl:    ttl,
		logger: logger,
	}
}

// Update 覆盖写入本轮到期集
func (c *DueCache) Update(ctx context.Context, entries []DueEntry) error {
	jsonData, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to marshal due entries: %w", err)
	}
	if err := c.client.Set(ctx, c.key, jsonData, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set due cache: %w", err)
	}
	c.logger.Debug("Updated due cache",
		zap.String("key", c.key),
		zap.Int("entry_count", len(entries)),
	)
	return nil
}

// Load 读取当前到期集，键不存在（已过期）时返回空
func (c *DueCache) Load(ctx context.Context) ([]DueEntry, error) {
	val, err := c.client.Get(ctx, c.key).Result()
	if err != nil {
		if err == redis.Nil {
			return []DueEntry{}, nil
		}
		return nil, fmt.Errorf("failed to get due cache: %w", err)
	}
	var entries []DueEntry
	if err := json.Unmarshal([]byte(val), &entries); err != nil {
		return nil, fmt.Errorf("failed to unmarshal due entries: %w", err)
	}
	return entries, nil
}
