package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"jobboard_chat_service/pkg/logger"

	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

// StatusQueue 應徵狀態變更通知的 queue
const StatusQueue = "job_application.status"

const requeueDelay = 5 * time.Second

// errMalformedStatus 格式錯誤的訊息不重新排入
var errMalformedStatus = errors.New("malformed status change")

// StatusChange job application status notification
type StatusChange struct {
	ApplicationID string `json:"application_id"`
	Status        string `json:"status"`
}

// StatusConsumer 消費應徵狀態變更, 關閉對應的 conversation
type StatusConsumer struct {
	rabbitChannel *amqp.Channel
	registry      *ConversationRegistry
	queueName     string
}

// NewStatusConsumer 建構 StatusConsumer 實例
func NewStatusConsumer(rabbitChannel *amqp.Channel, registry *ConversationRegistry, queueName string) *StatusConsumer {
	if queueName == "" {
		queueName = StatusQueue
	}
	return &StatusConsumer{
		rabbitChannel: rabbitChannel,
		registry:      registry,
		queueName:     queueName,
	}
}

// StartConsumer 開始消費訊息, ctx 結束時返回
func (c *StatusConsumer) StartConsumer(ctx context.Context) error {
	msgs, err := c.rabbitChannel.Consume(
		c.queueName, // queue
		"",          // consumer tag，留空由系統分配
		false,       // autoAck 為 false，使用手動確認
		false,       // exclusive
		false,       // noLocal
		false,       // noWait
		nil,         // arguments
	)
	if err != nil {
		return fmt.Errorf("consume %s: %w", c.queueName, err)
	}

	logger.Log.Info("status consumer started", zap.String("queue", c.queueName))
	for {
		select {
		case d, ok := <-msgs:
			if !ok {
				logger.Log.Warn("RabbitMQ 消費 channel 已關閉", zap.String("queue", c.queueName))
				return nil
			}
			c.ack(ctx, d)
		case <-ctx.Done():
			logger.Log.Info("status consumer stopped", zap.String("queue", c.queueName))
			return nil
		}
	}
}

func (c *StatusConsumer) ack(ctx context.Context, d amqp.Delivery) {
	err := c.handleDelivery(ctx, d.Body)
	switch {
	case err == nil:
		if err := d.Ack(false); err != nil {
			logger.Log.Error("ack failed", zap.Error(err))
		}
	case errors.Is(err, errMalformedStatus):
		logger.Log.Error("drop status change", zap.ByteString("body", d.Body), zap.Error(err))
		if err := d.Nack(false, false); err != nil {
			logger.Log.Error("nack failed", zap.Error(err))
		}
	default:
		logger.Log.Error("處理狀態變更失敗", zap.Error(err))
		select {
		case <-time.After(requeueDelay):
		case <-ctx.Done():
		}
		if err := d.Nack(false, true); err != nil {
			logger.Log.Error("nack failed", zap.Error(err))
		}
	}
}

func (c *StatusConsumer) handleDelivery(ctx context.Context, body []byte) error {
	var change StatusChange
	if err := json.Unmarshal(body, &change); err != nil {
		return fmt.Errorf("%w: %v", errMalformedStatus, err)
	}
	if change.ApplicationID == "" || change.Status == "" {
		return fmt.Errorf("%w: missing application_id or status", errMalformedStatus)
	}

	logger.Log.Debug("status change received",
		zap.String("application_id", change.ApplicationID),
		zap.String("status", change.Status))
	return c.registry.ApplyApplicationStatus(ctx, change.ApplicationID, change.Status)
}
