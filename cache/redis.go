package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/r2w34/fb-ai-sys-sub001/store"
)

const statusCacheDuration = 5 * time.Minute

// Cache fronts the connection-status reads with Redis. The service runs fine
// without Redis; a failed connection just disables caching.
type Cache struct {
	client  *redis.Client
	enabled bool
	group   singleflight.Group
}

func New(addr, username, password string) *Cache {
	if addr == "" {
		log.Printf("💾 CACHE: no Redis address configured, caching disabled")
		return &Cache{}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Username: username,
		Password: password,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		log.Printf("💾 CACHE: Redis connection failed, caching disabled: %v", err)
		return &Cache{}
	}

	log.Printf("💾 CACHE: Redis connected successfully")
	return &Cache{client: client, enabled: true}
}

func statusKey(shop string) string {
	return fmt.Sprintf("facebook:%s:status", shop)
}

// GetStatus returns the cached connection status or falls back to dbFetch.
// Concurrent misses for the same shop are collapsed to one DB read.
func (c *Cache) GetStatus(ctx context.Context, shop string, dbFetch func(context.Context, string) (*store.ConnectionStatus, error)) (*store.ConnectionStatus, error) {
	if c == nil || !c.enabled {
		return dbFetch(ctx, shop)
	}

	key := statusKey(shop)
	if data, err := c.client.Get(ctx, key).Bytes(); err == nil {
		var status store.ConnectionStatus
		if err := json.Unmarshal(data, &status); err == nil {
			return &status, nil
		}
	}

	value, err, _ := c.group.Do(key, func() (interface{}, error) {
		status, err := dbFetch(ctx, shop)
		if err != nil {
			return nil, err
		}

		// Update cache async
		go func() {
			data, err := json.Marshal(status)
			if err != nil {
				return
			}
			bg, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := c.client.Set(bg, key, data, statusCacheDuration).Err(); err != nil {
				log.Printf("💾 CACHE: failed to cache status for %s: %v", shop, err)
			}
		}()

		return status, nil
	})
	if err != nil {
		return nil, err
	}
	return value.(*store.ConnectionStatus), nil
}

// InvalidateStatus drops the cached snapshot after a reconcile or disconnect.
func (c *Cache) InvalidateStatus(ctx context.Context, shop string) {
	if c == nil || !c.enabled {
		return
	}
	if err := c.client.Del(ctx, statusKey(shop)).Err(); err != nil {
		log.Printf("💾 CACHE: failed to invalidate status for %s: %v", shop, err)
	}
}
