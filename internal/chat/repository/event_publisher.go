package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"jobboard_chat_service/internal/chat/domain"

	"github.com/segmentio/kafka-go"
)

// EventPublisher downstream sink of committed messages
type EventPublisher interface {
	PublishMessageCreated(ctx context.Context, msg domain.ChatMessage) error
}

// messageWriter subset of *kafka.Writer
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

type kafkaEventPublisher struct {
	writer messageWriter
}

// NewKafkaEventPublisher create EventPublisher over a kafka writer
func NewKafkaEventPublisher(writer messageWriter) EventPublisher {
	return &kafkaEventPublisher{writer: writer}
}

// PublishMessageCreated key 為 conversation id, 同一對話的事件保持順序
func (p *kafkaEventPublisher) PublishMessageCreated(ctx context.Context, msg domain.ChatMessage) error {
	data, err := json.Marshal(domain.MessageEvent{
		Type:    domain.MessageEventCreated,
		Message: msg,
	})
	if err != nil {
		return err
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(msg.ConversationID),
		Value: data,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(domain.MessageEventCreated)},
		},
	})
	if err != nil {
		return fmt.Errorf("publish %s event: %w", domain.MessageEventCreated, err)
	}
	return nil
}
