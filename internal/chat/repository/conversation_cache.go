package repository

import (
	"context"
	"errors"
	"time"

	"jobboard_chat_service/internal/chat/domain"
	"jobboard_chat_service/pkg/database"
)

const conversationCachePrefix = "chat:conversation_cache:"

// ConversationCache read-through cache of resolved conversations
type ConversationCache interface {
	// Get 沒有 cache 時回傳 nil, nil
	Get(ctx context.Context, conversationID string) (*domain.Conversation, error)
	Set(ctx context.Context, conv *domain.Conversation) error
	Del(ctx context.Context, conversationID string) error
}

type redisConversationCache struct {
	repo database.RedisRepository[domain.Conversation]
	ttl  time.Duration
}

// NewRedisConversationCache create ConversationCache
func NewRedisConversationCache(repo database.RedisRepository[domain.Conversation], ttl time.Duration) ConversationCache {
	return &redisConversationCache{repo: repo, ttl: ttl}
}

func (c *redisConversationCache) Get(ctx context.Context, conversationID string) (*domain.Conversation, error) {
	conv, err := c.repo.Get(ctx, conversationCachePrefix+conversationID)
	if errors.Is(err, database.ErrCacheMiss) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

func (c *redisConversationCache) Set(ctx context.Context, conv *domain.Conversation) error {
	return c.repo.Set(ctx, conversationCachePrefix+conv.ID, *conv, c.ttl)
}

func (c *redisConversationCache) Del(ctx context.Context, conversationID string) error {
	return c.repo.Del(ctx, conversationCachePrefix+conversationID)
}
