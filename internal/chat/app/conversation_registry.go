package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"jobboard_chat_service/internal/chat/domain"
	"jobboard_chat_service/internal/chat/repository"
	"jobboard_chat_service/pkg"
	"jobboard_chat_service/pkg/logger"

	"go.uber.org/zap"
)

// ConversationRegistry maps job applications to conversations
type ConversationRegistry struct {
	convRepo  repository.ConversationRepository
	cache     repository.ConversationCache
	directory repository.ApplicationDirectory
}

// NewConversationRegistry init registry, cache 可為 nil
func NewConversationRegistry(
	convRepo repository.ConversationRepository,
	cache repository.ConversationCache,
	directory repository.ApplicationDirectory,
) *ConversationRegistry {
	return &ConversationRegistry{
		convRepo:  convRepo,
		cache:     cache,
		directory: directory,
	}
}

// Resolve 取得 application 對應的 conversation, 第一次使用時建立
func (r *ConversationRegistry) Resolve(ctx context.Context, applicationID string) (*domain.Conversation, error) {
	if applicationID == "" {
		return nil, domain.ErrNotFound
	}

	if conv := r.fromCache(ctx, applicationID); conv != nil {
		return conv, nil
	}

	conv, err := r.convRepo.FindByID(ctx, applicationID)
	if err == nil {
		r.toCache(ctx, conv)
		return conv, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	app, err := r.directory.FindApplication(ctx, applicationID)
	if err != nil {
		return nil, err
	}

	conv = &domain.Conversation{
		ID:            app.ID,
		JobPostID:     app.JobPostID,
		ApplicantID:   app.ApplicantID,
		CounterpartID: app.EmployerID,
		Status:        conversationStatus(app.Status),
		CreatedAt:     time.Now().UnixMilli(),
	}
	if err := r.convRepo.Create(ctx, conv); err != nil {
		if !errors.Is(err, domain.ErrConversationExists) {
			return nil, fmt.Errorf("create conversation %s: %w", applicationID, err)
		}
		// 另一個請求先建立了, 以 DB 版本為準
		if conv, err = r.convRepo.FindByID(ctx, applicationID); err != nil {
			return nil, err
		}
	} else {
		logger.Log.Info("conversation created", zap.String("conversation_id", conv.ID), zap.String("job_post_id", conv.JobPostID))
	}

	r.toCache(ctx, conv)
	return conv, nil
}

// Authorize participant or operator
func (r *ConversationRegistry) Authorize(conv *domain.Conversation, identity domain.Identity) error {
	if conv.HasParticipant(identity.MemberID) || identity.IsOperator() {
		return nil
	}
	return fmt.Errorf("conversation %s: %w", conv.ID, domain.ErrForbidden)
}

// ApplyApplicationStatus 應徵狀態改變時同步 conversation status
func (r *ConversationRegistry) ApplyApplicationStatus(ctx context.Context, applicationID, status string) error {
	if conversationStatus(status) != domain.ConversationClosed {
		return nil
	}
	return r.MarkClosed(ctx, applicationID)
}

// MarkClosed close a conversation, 尚未建立的 conversation 會在 Resolve 時依應徵狀態建立
func (r *ConversationRegistry) MarkClosed(ctx context.Context, applicationID string) error {
	err := r.convRepo.UpdateStatus(ctx, applicationID, domain.ConversationClosed)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	if _, err := r.Fresh(ctx, applicationID); err != nil {
		r.dropCache(ctx, applicationID)
	}
	logger.Log.Info("conversation closed", zap.String("conversation_id", applicationID))
	return nil
}

// Fresh 繞過 cache 直接讀 DB, 並把結果寫回 cache
// 寫入訊息前用來確認 status, cache 可能被較慢的 Resolve 寫回舊的 open
func (r *ConversationRegistry) Fresh(ctx context.Context, applicationID string) (*domain.Conversation, error) {
	conv, err := r.convRepo.FindByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	r.toCache(ctx, conv)
	return conv, nil
}

func (r *ConversationRegistry) dropCache(ctx context.Context, id string) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Del(ctx, id); err != nil {
		logger.Log.Warn("conversation cache del failed", zap.String("conversation_id", id), zap.Error(err))
	}
}

func (r *ConversationRegistry) fromCache(ctx context.Context, id string) *domain.Conversation {
	if r.cache == nil {
		return nil
	}
	conv, err := r.cache.Get(ctx, id)
	if err != nil {
		logger.Log.Warn("conversation cache get failed", zap.String("conversation_id", id), zap.Error(err))
		return nil
	}
	return conv
}

func (r *ConversationRegistry) toCache(ctx context.Context, conv *domain.Conversation) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Set(ctx, conv); err != nil {
		logger.Log.Warn("conversation cache set failed", zap.String("conversation_id", conv.ID), zap.Error(err))
	}
}

func conversationStatus(applicationStatus string) domain.ConversationStatus {
	if pkg.Contains(domain.ClosingApplicationStatuses, applicationStatus) {
		return domain.ConversationClosed
	}
	return domain.ConversationOpen
}
