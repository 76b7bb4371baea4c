package basket

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redisclient "github.com/angelmondragon/warehousepos-backend/pkg/redis"
	"github.com/google/uuid"
)

type cacheStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	BasketKey(userID string) string
}

// Cache keeps a write-through JSON copy of each user's cart in Redis.
type Cache struct {
	store cacheStore
	ttl   time.Duration
}

func NewCache(store cacheStore, ttl time.Duration) (*Cache, error) {
	if store == nil {
		return nil, fmt.Errorf("cache store required")
	}
	return &Cache{store: store, ttl: ttl}, nil
}

// Load returns the cached snapshot and whether one existed.
func (c *Cache) Load(ctx context.Context, userID uuid.UUID) (Snapshot, bool, error) {
	raw, err := c.store.Get(ctx, c.store.BasketKey(userID.String()))
	if err != nil {
		if redisclient.IsNil(err) {
			return Snapshot{}, false, nil
		}
		return Snapshot{}, false, err
	}
	var snap Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return Snapshot{}, false, fmt.Errorf("decode basket snapshot: %w", err)
	}
	return snap, true, nil
}

// Store overwrites the cached snapshot. An empty cart drops the key.
func (c *Cache) Store(ctx context.Context, snap Snapshot) error {
	if snap.Empty() {
		return c.Drop(ctx, snap.UserID)
	}
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode basket snapshot: %w", err)
	}
	return c.store.Set(ctx, c.store.BasketKey(snap.UserID.String()), string(payload), c.ttl)
}

func (c *Cache) Drop(ctx context.Context, userID uuid.UUID) error {
	return c.store.Del(ctx, c.store.BasketKey(userID.String()))
}
