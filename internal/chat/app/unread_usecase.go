package app

import (
	"context"
	"fmt"

	"jobboard_chat_service/internal/chat/domain"
	"jobboard_chat_service/internal/chat/repository"
	"jobboard_chat_service/pkg/logger"

	"go.uber.org/zap"
)

// UnreadUseCase unread badge, computed on demand
type UnreadUseCase struct {
	registry *ConversationRegistry
	convRepo repository.ConversationRepository
	msgRepo  repository.MessageRepository
	markers  repository.ReadMarkerRepository
	cache    repository.UnreadCache
}

// NewUnreadUseCase init unread use case, cache 可為 nil
func NewUnreadUseCase(
	registry *ConversationRegistry,
	convRepo repository.ConversationRepository,
	msgRepo repository.MessageRepository,
	markers repository.ReadMarkerRepository,
	cache repository.UnreadCache,
) *UnreadUseCase {
	return &UnreadUseCase{
		registry: registry,
		convRepo: convRepo,
		msgRepo:  msgRepo,
		markers:  markers,
		cache:    cache,
	}
}

// UnreadCount 收件人為 userID 且 seq 大於 read marker 的訊息數
func (uc *UnreadUseCase) UnreadCount(ctx context.Context, conversationID, userID string) (int64, error) {
	marker, err := uc.markers.Get(ctx, conversationID, userID)
	if err != nil {
		return 0, err
	}
	latest, err := uc.msgRepo.LatestSequence(ctx, conversationID)
	if err != nil {
		return 0, err
	}
	if latest <= marker {
		return 0, nil
	}

	if uc.cache != nil {
		n, ok, err := uc.cache.Get(ctx, conversationID, userID, marker, latest)
		if err != nil {
			logger.Log.Warn("unread cache get failed", zap.String("conversation_id", conversationID), zap.Error(err))
		} else if ok {
			return n, nil
		}
	}

	n, err := uc.msgRepo.CountUnread(ctx, conversationID, userID, marker)
	if err != nil {
		return 0, err
	}

	if uc.cache != nil {
		if err := uc.cache.Set(ctx, conversationID, userID, marker, latest, n); err != nil {
			logger.Log.Warn("unread cache set failed", zap.String("conversation_id", conversationID), zap.Error(err))
		}
	}
	return n, nil
}

// ConversationUnread unread of one conversation, 只有參與者有 read marker
func (uc *UnreadUseCase) ConversationUnread(ctx context.Context, identity domain.Identity, conversationID string) (*domain.UnreadInfo, error) {
	conv, err := uc.registry.Resolve(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !conv.HasParticipant(identity.MemberID) {
		return nil, fmt.Errorf("conversation %s: %w", conv.ID, domain.ErrForbidden)
	}

	n, err := uc.UnreadCount(ctx, conv.ID, identity.MemberID)
	if err != nil {
		return nil, err
	}
	return &domain.UnreadInfo{ConversationID: conv.ID, UnreadCount: n}, nil
}

// TotalUnread 所有參與的 conversation 加總
func (uc *UnreadUseCase) TotalUnread(ctx context.Context, userID string) (*domain.UnreadSummary, error) {
	convs, err := uc.convRepo.FindByParticipant(ctx, userID)
	if err != nil {
		return nil, err
	}

	summary := &domain.UnreadSummary{Conversations: make([]domain.UnreadInfo, 0, len(convs))}
	for _, conv := range convs {
		n, err := uc.UnreadCount(ctx, conv.ID, userID)
		if err != nil {
			return nil, err
		}
		summary.Total += n
		summary.Conversations = append(summary.Conversations, domain.UnreadInfo{
			ConversationID: conv.ID,
			UnreadCount:    n,
		})
	}
	return summary, nil
}

// Invalidate 新訊息或已讀後清掉 cache, 失敗只記 log
func (uc *UnreadUseCase) Invalidate(ctx context.Context, conversationID string) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.Invalidate(ctx, conversationID); err != nil {
		logger.Log.Warn("unread cache invalidate failed", zap.String("conversation_id", conversationID), zap.Error(err))
	}
}
