package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"jobboard_chat_service/internal/chat/domain"
	"jobboard_chat_service/internal/chat/repository"
	"jobboard_chat_service/pkg/logger"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/leebenson/conform"
	"go.uber.org/zap"
)

const (
	eventPublishTimeout = 5 * time.Second
	commitTimeout       = 10 * time.Second
)

// messageInput 寫入前清掉 HTML / JS 並 trim
type messageInput struct {
	Content string `conform:"!html,!js,trim" validate:"required,max=4000"`
}

// SendMessageUseCase 負責處理聊天訊息
type SendMessageUseCase struct {
	registry *ConversationRegistry
	msgRepo  repository.MessageRepository
	markers  repository.ReadMarkerRepository
	unread   *UnreadUseCase
	pubsub   repository.PubSub
	events   repository.EventPublisher

	locks    *keyedMutex
	validate *validator.Validate
	now      func() time.Time
}

// NewSendMessageUseCase init message use case, events 可為 nil
func NewSendMessageUseCase(
	registry *ConversationRegistry,
	msgRepo repository.MessageRepository,
	markers repository.ReadMarkerRepository,
	unread *UnreadUseCase,
	pubsub repository.PubSub,
	events repository.EventPublisher,
) *SendMessageUseCase {
	return &SendMessageUseCase{
		registry: registry,
		msgRepo:  msgRepo,
		markers:  markers,
		unread:   unread,
		pubsub:   pubsub,
		events:   events,
		locks:    newKeyedMutex(),
		validate: validator.New(),
		now:      time.Now,
	}
}

func sanitizeContent(validate *validator.Validate, content string) (string, error) {
	in := messageInput{Content: content}
	if err := conform.Strings(&in); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrInvalidMessage, err)
	}
	if err := validate.Struct(in); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrInvalidMessage, err)
	}
	return in.Content, nil
}

// Append 寫入一則訊息, commit 後才推播
func (uc *SendMessageUseCase) Append(ctx context.Context, sender domain.Identity, conversationID, recipientID, content string) (*domain.ChatMessage, error) {
	conv, err := uc.registry.Resolve(ctx, conversationID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidConversation, conversationID)
	}
	if err != nil {
		return nil, err
	}

	recipient, err := resolveRecipient(conv, sender, recipientID)
	if err != nil {
		return nil, err
	}
	if conv.IsClosed() && !sender.IsOperator() {
		return nil, fmt.Errorf("conversation %s: %w", conv.ID, domain.ErrConversationClosed)
	}

	body, err := sanitizeContent(uc.validate, content)
	if err != nil {
		return nil, err
	}

	// 連線斷掉不能中斷寫入, 否則 seq 已配出卻沒有訊息
	storeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), commitTimeout)
	defer cancel()

	// publish 也在鎖內, 同一對話的 new_message 依 seq 順序送出
	unlock := uc.locks.Lock(conv.ID)
	if !sender.IsOperator() {
		if err := uc.ensureOpen(storeCtx, conv.ID); err != nil {
			unlock()
			return nil, err
		}
	}
	msg, err := uc.commit(storeCtx, conv.ID, sender.MemberID, recipient, body)
	if err != nil {
		unlock()
		return nil, err
	}
	uc.publish(storeCtx, *msg)
	unlock()

	uc.afterCommit(ctx, *msg)
	return msg, nil
}

// resolveRecipient 收件人一定是另一位參與者, operator 預設寄給應徵者
func resolveRecipient(conv *domain.Conversation, sender domain.Identity, recipientID string) (string, error) {
	if conv.HasParticipant(sender.MemberID) {
		expected := conv.Counterparty(sender.MemberID)
		if recipientID != "" && recipientID != expected {
			return "", fmt.Errorf("%w: recipient %s", domain.ErrInvalidConversation, recipientID)
		}
		return expected, nil
	}
	if !sender.IsOperator() {
		return "", fmt.Errorf("%w: sender %s", domain.ErrInvalidConversation, sender.MemberID)
	}
	if recipientID == "" {
		return conv.ApplicantID, nil
	}
	if !conv.HasParticipant(recipientID) {
		return "", fmt.Errorf("%w: recipient %s", domain.ErrInvalidConversation, recipientID)
	}
	return recipientID, nil
}

// ensureOpen 以 DB 的 status 為準, Resolve 拿到的可能是舊 cache
func (uc *SendMessageUseCase) ensureOpen(ctx context.Context, conversationID string) error {
	conv, err := uc.registry.Fresh(ctx, conversationID)
	if err != nil {
		return err
	}
	if conv.IsClosed() {
		return fmt.Errorf("conversation %s: %w", conv.ID, domain.ErrConversationClosed)
	}
	return nil
}

// commit 呼叫端持有 conversation 的鎖, 跨 process 由 counter + unique index 保證
func (uc *SendMessageUseCase) commit(ctx context.Context, conversationID, senderID, recipientID, body string) (*domain.ChatMessage, error) {
	seq, createdAt, err := uc.msgRepo.NextSequence(ctx, conversationID, uc.now().UnixMilli())
	if err != nil {
		return nil, err
	}

	msg := &domain.ChatMessage{
		ID:             uuid.New().String(),
		ConversationID: conversationID,
		SenderID:       senderID,
		RecipientID:    recipientID,
		Content:        body,
		Seq:            seq,
		CreatedAt:      createdAt,
	}
	if err := uc.msgRepo.Insert(ctx, msg); err != nil {
		released, relErr := uc.msgRepo.ReleaseSequence(ctx, conversationID, seq)
		if relErr != nil || !released {
			logger.Log.Error("sequence hole",
				zap.String("conversation_id", conversationID),
				zap.Int64("seq", seq),
				zap.Error(relErr))
		}
		return nil, err
	}
	return msg, nil
}

func (uc *SendMessageUseCase) publish(ctx context.Context, msg domain.ChatMessage) {
	if uc.pubsub == nil {
		return
	}
	event := domain.MessageEvent{Type: domain.MessageEventCreated, Message: msg}
	if err := uc.pubsub.Publish(ctx, domain.ConversationChannel(msg.ConversationID), event); err != nil {
		logger.Log.Error("Publish error", zap.String("conversation_id", msg.ConversationID), zap.Error(err))
	}
}

func (uc *SendMessageUseCase) afterCommit(ctx context.Context, msg domain.ChatMessage) {
	if uc.unread != nil {
		uc.unread.Invalidate(ctx, msg.ConversationID)
	}

	if uc.events != nil {
		// kafka writer 會等 batch, 不阻塞送出
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), eventPublishTimeout)
			defer cancel()
			if err := uc.events.PublishMessageCreated(ctx, msg); err != nil {
				logger.Log.Warn("message event publish failed", zap.String("message_id", msg.ID), zap.Error(err))
			}
		}()
	}
}

// Page 依 seq 由小到大, page 從 1 開始
func (uc *SendMessageUseCase) Page(ctx context.Context, conversationID string, page, pageSize int) (*domain.MessagePage, error) {
	conv, err := uc.registry.Resolve(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	page, pageSize = normalizePage(page, pageSize)
	total, err := uc.msgRepo.CountByConversation(ctx, conv.ID)
	if err != nil {
		return nil, err
	}

	messages := make([]domain.ChatMessage, 0)
	skip := int64(page-1) * int64(pageSize)
	if total > skip {
		if messages, err = uc.msgRepo.FindPage(ctx, conv.ID, skip, int64(pageSize)); err != nil {
			return nil, err
		}
	}

	return &domain.MessagePage{
		Total:    total,
		Page:     page,
		PageSize: pageSize,
		Messages: messages,
	}, nil
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = domain.DefaultPageSize
	}
	if pageSize > domain.MaxPageSize {
		pageSize = domain.MaxPageSize
	}
	return page, pageSize
}

// MarkRead - 已讀, uptoSeq <= 0 代表讀到最新, 回傳目前 marker
func (uc *SendMessageUseCase) MarkRead(ctx context.Context, reader domain.Identity, conversationID string, uptoSeq int64) (int64, error) {
	conv, err := uc.registry.Resolve(ctx, conversationID)
	if err != nil {
		return 0, err
	}
	if !conv.HasParticipant(reader.MemberID) {
		return 0, fmt.Errorf("conversation %s: %w", conv.ID, domain.ErrForbidden)
	}

	latest, err := uc.msgRepo.LatestSequence(ctx, conv.ID)
	if err != nil {
		return 0, err
	}
	if uptoSeq <= 0 || uptoSeq > latest {
		uptoSeq = latest
	}

	marker, err := uc.markers.Advance(ctx, conv.ID, reader.MemberID, uptoSeq)
	if err != nil {
		return 0, err
	}
	if err := uc.msgRepo.MarkReadUpTo(ctx, conv.ID, reader.MemberID, marker); err != nil {
		return 0, err
	}
	if uc.unread != nil {
		uc.unread.Invalidate(ctx, conv.ID)
	}
	return marker, nil
}
