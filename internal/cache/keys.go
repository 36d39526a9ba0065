package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	userKeyPrefix = "user:%d"
	itemKeyPrefix = "item:%s:%d"
	statsKey      = "admin:dashboard"
)

const (
	UserTTL  = 5 * time.Minute
	ItemTTL  = 10 * time.Minute
	StatsTTL = time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(userKeyPrefix, userID)
}

// ItemKey builds the cache key for a single item, namespaced by kind so
// lost and found IDs never collide.
func ItemKey(kind string, itemID uint) string {
	return fmt.Sprintf(itemKeyPrefix, kind, itemID)
}

// StatsKey is the cache key for the admin dashboard aggregates.
func StatsKey() string {
	return statsKey
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

func InvalidateItem(ctx context.Context, kind string, itemID uint) {
	Invalidate(ctx, ItemKey(kind, itemID))
}

func InvalidateStats(ctx context.Context) {
	Invalidate(ctx, statsKey)
}
