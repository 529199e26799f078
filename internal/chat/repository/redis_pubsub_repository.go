package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"sync"

	"jobboard_chat_service/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// PubSub fan-out of committed messages between gateway nodes
type PubSub interface {
	Publish(ctx context.Context, channel string, message interface{}) error
	// Subscribe pattern 為 glob, ctx 結束時取消訂閱
	Subscribe(ctx context.Context, pattern string, handler func(channel string, payload []byte)) error
}

// RedisPubSub definition redis pub/sub
type RedisPubSub struct {
	client *redis.Client
}

// NewRedisPubSub create RedisPubSub
func NewRedisPubSub(client *redis.Client) *RedisPubSub {
	return &RedisPubSub{client: client}
}

// Publish 將 message 序列化後，發布到指定 channel
func (r *RedisPubSub) Publish(ctx context.Context, channel string, message interface{}) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}
	return r.client.Publish(ctx, channel, data).Err()
}

// Subscribe 訂閱 pattern，收到訊息後呼叫 handler 處理
func (r *RedisPubSub) Subscribe(ctx context.Context, pattern string, handler func(channel string, payload []byte)) error {
	sub := r.client.PSubscribe(ctx, pattern)
	// 確認訂閱成功後才回傳
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return fmt.Errorf("psubscribe %s: %w", pattern, err)
	}

	go func() {
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case m, ok := <-ch:
				if !ok {
					return
				}
				handler(m.Channel, []byte(m.Payload))
			case <-ctx.Done():
				logger.Log.Info("pubsub closed", zap.String("pattern", pattern))
				return
			}
		}
	}()
	return nil
}

// LocalPubSub in-process PubSub for a single node deployment and tests
type LocalPubSub struct {
	mu       sync.RWMutex
	nextID   int
	handlers map[int]localSubscription
}

type localSubscription struct {
	pattern string
	handler func(channel string, payload []byte)
}

// NewLocalPubSub create LocalPubSub
func NewLocalPubSub() *LocalPubSub {
	return &LocalPubSub{handlers: make(map[int]localSubscription)}
}

// Publish handler 同步執行
func (l *LocalPubSub) Publish(_ context.Context, channel string, message interface{}) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}

	l.mu.RLock()
	matched := make([]localSubscription, 0, len(l.handlers))
	for _, s := range l.handlers {
		if ok, _ := path.Match(s.pattern, channel); ok {
			matched = append(matched, s)
		}
	}
	l.mu.RUnlock()

	for _, s := range matched {
		s.handler(channel, data)
	}
	return nil
}

func (l *LocalPubSub) Subscribe(ctx context.Context, pattern string, handler func(channel string, payload []byte)) error {
	if _, err := path.Match(pattern, ""); err != nil {
		return fmt.Errorf("invalid pattern %s: %w", pattern, err)
	}

	l.mu.Lock()
	id := l.nextID
	l.nextID++
	l.handlers[id] = localSubscription{pattern: pattern, handler: handler}
	l.mu.Unlock()

	go func() {
		<-ctx.Done()
		l.mu.Lock()
		delete(l.handlers, id)
		l.mu.Unlock()
	}()
	return nil
}
