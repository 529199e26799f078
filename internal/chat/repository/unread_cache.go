package repository

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

const unreadCachePrefix = "chat:unread:"

// UnreadCache 快取 unread count, field 包含 read marker 與最新 seq, 任一前進後舊值自然失效
type UnreadCache interface {
	Get(ctx context.Context, conversationID, userID string, marker, latest int64) (int64, bool, error)
	Set(ctx context.Context, conversationID, userID string, marker, latest, count int64) error
	// Invalidate 新訊息寫入後整個 conversation 清掉
	Invalidate(ctx context.Context, conversationID string) error
}

type redisUnreadCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisUnreadCache create UnreadCache
func NewRedisUnreadCache(client *redis.Client, ttl time.Duration) UnreadCache {
	return &redisUnreadCache{client: client, ttl: ttl}
}

func unreadField(userID string, marker, latest int64) string {
	return fmt.Sprintf("%s:%d:%d", userID, marker, latest)
}

func (c *redisUnreadCache) Get(ctx context.Context, conversationID, userID string, marker, latest int64) (int64, bool, error) {
	val, err := c.client.HGet(ctx, unreadCachePrefix+conversationID, unreadField(userID, marker, latest)).Result()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false, nil
	}
	return n, true, nil
}

func (c *redisUnreadCache) Set(ctx context.Context, conversationID, userID string, marker, latest, count int64) error {
	key := unreadCachePrefix + conversationID
	pipe := c.client.TxPipeline()
	pipe.HSet(ctx, key, unreadField(userID, marker, latest), count)
	pipe.Expire(ctx, key, c.ttl)
	_, err := pipe.Exec(ctx)
	return err
}

func (c *redisUnreadCache) Invalidate(ctx context.Context, conversationID string) error {
	return c.client.Del(ctx, unreadCachePrefix+conversationID).Err()
}
