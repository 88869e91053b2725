// Package cache is a thin Redis layer for settings reads. Settings are
// fetched on every invoice creation and PDF export, so they are kept hot
// for a few minutes and invalidated on every save. The cache is strictly
// optional; with no Redis configured or reachable every operation is a
// no-op and callers fall through to Postgres.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"rechnung-backend/internal/config"
	"rechnung-backend/internal/logger"
	"rechnung-backend/internal/models"
)

const settingsTTL = 5 * time.Minute

type Cache struct {
	client *redis.Client
}

// New connects to Redis when an address is configured. Connection failure
// degrades to a disabled cache instead of failing startup.
func New(cfg *config.Config) *Cache {
	log := logger.WithComponent("cache")

	if cfg.Redis.Addr == "" {
		log.Info().Msg("redis not configured, cache disabled")
		return &Cache{}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Warn().Err(err).Msg("redis unreachable, cache disabled")
		return &Cache{}
	}

	log.Info().Str("addr", cfg.Redis.Addr).Msg("redis connected")
	return &Cache{client: client}
}

func settingsKey(userID uuid.UUID) string {
	return "settings:" + userID.String()
}

// GetSettings returns the cached settings or nil on miss or disabled cache.
func (c *Cache) GetSettings(ctx context.Context, userID uuid.UUID) *models.UserSettings {
	if c.client == nil {
		return nil
	}
	data, err := c.client.Get(ctx, settingsKey(userID)).Bytes()
	if err != nil {
		return nil
	}
	var settings models.UserSettings
	if err := json.Unmarshal(data, &settings); err != nil {
		return nil
	}
	return &settings
}

func (c *Cache) CacheSettings(ctx context.Context, settings *models.UserSettings) {
	if c.client == nil {
		return
	}
	data, err := json.Marshal(settings)
	if err != nil {
		return
	}
	c.client.Set(ctx, settingsKey(settings.UserID), data, settingsTTL)
}

func (c *Cache) InvalidateSettings(ctx context.Context, userID uuid.UUID) {
	if c.client == nil {
		return
	}
	c.client.Del(ctx, settingsKey(userID))
}

func (c *Cache) Close() {
	if c.client != nil {
		c.client.Close()
	}
}
