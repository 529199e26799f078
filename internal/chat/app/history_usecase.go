package app

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"jobboard_chat_service/internal/chat/domain"
	"jobboard_chat_service/internal/chat/repository"
	errprocess "jobboard_chat_service/pkg/err"
	"jobboard_chat_service/pkg/logger"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// HistoryUseCase access controlled read path over the message store
type HistoryUseCase struct {
	registry    *ConversationRegistry
	messages    *SendMessageUseCase
	msgRepo     repository.MessageRepository
	lookup      repository.JobPostLookup
	members     repository.MemberDirectory
	transcripts repository.TranscriptStore
	now         func() time.Time
}

// NewHistoryUseCase init history use case
func NewHistoryUseCase(
	registry *ConversationRegistry,
	messages *SendMessageUseCase,
	msgRepo repository.MessageRepository,
	lookup repository.JobPostLookup,
	members repository.MemberDirectory,
	transcripts repository.TranscriptStore,
) *HistoryUseCase {
	return &HistoryUseCase{
		registry:    registry,
		messages:    messages,
		msgRepo:     msgRepo,
		lookup:      lookup,
		members:     members,
		transcripts: transcripts,
		now:         time.Now,
	}
}

// GetHistory participant or operator, 參與者讀取後 read marker 前進
func (uc *HistoryUseCase) GetHistory(ctx context.Context, reader domain.Identity, conversationID string, page, pageSize int) (*domain.MessagePage, error) {
	conv, err := uc.registry.Resolve(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if err := uc.registry.Authorize(conv, reader); err != nil {
		return nil, err
	}

	result, err := uc.messages.Page(ctx, conv.ID, page, pageSize)
	if err != nil {
		return nil, err
	}

	if n := len(result.Messages); n > 0 && conv.HasParticipant(reader.MemberID) {
		last := result.Messages[n-1].Seq
		if _, err := uc.messages.MarkRead(ctx, reader, conv.ID, last); err != nil {
			logger.Log.Warn("advance read marker failed", zap.String("conversation_id", conv.ID), zap.Error(err))
		}
	}
	return result, nil
}

func requireOperator(identity domain.Identity) error {
	if !identity.IsOperator() {
		return fmt.Errorf("operator only: %w", domain.ErrForbidden)
	}
	return nil
}

// SearchJobPosts operator lookup by title
func (uc *HistoryUseCase) SearchJobPosts(ctx context.Context, operator domain.Identity, title string) ([]domain.JobPost, error) {
	if err := requireOperator(operator); err != nil {
		return nil, err
	}
	return uc.lookup.SearchJobPosts(ctx, title)
}

// ListApplicants operator applicant listing of a job post
func (uc *HistoryUseCase) ListApplicants(ctx context.Context, operator domain.Identity, jobPostID string) ([]domain.ApplicantSummary, error) {
	if err := requireOperator(operator); err != nil {
		return nil, err
	}
	return uc.lookup.ListApplicants(ctx, jobPostID)
}

// AuditHistory history plus participant display metadata, 不移動 read marker
func (uc *HistoryUseCase) AuditHistory(ctx context.Context, operator domain.Identity, conversationID string, page, pageSize int) (*domain.AuditPage, error) {
	if err := requireOperator(operator); err != nil {
		return nil, err
	}

	conv, err := uc.registry.Resolve(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	result, err := uc.messages.Page(ctx, conv.ID, page, pageSize)
	if err != nil {
		return nil, err
	}

	return &domain.AuditPage{
		Conversation: *conv,
		Participants: uc.participants(ctx, conv),
		MessagePage:  *result,
	}, nil
}

// participants member service 失敗時只回 member id
func (uc *HistoryUseCase) participants(ctx context.Context, conv *domain.Conversation) map[string]domain.Participant {
	ids := []string{conv.ApplicantID, conv.CounterpartID}
	found := make([]domain.Participant, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	for i, id := range ids {
		i, id := i, id
		found[i] = domain.Participant{MemberID: id}
		if uc.members == nil {
			continue
		}
		g.Go(func() error {
			p, err := uc.members.FindMember(gctx, id)
			if err != nil {
				logger.Log.Warn("member lookup failed", zap.String("member_id", id), zap.Error(err))
				return nil
			}
			found[i] = *p
			return nil
		})
	}
	_ = g.Wait()

	out := make(map[string]domain.Participant, len(found))
	for _, p := range found {
		out[p.MemberID] = p
	}
	return out
}

// ExportTranscript 將完整對話上傳至 object storage
func (uc *HistoryUseCase) ExportTranscript(ctx context.Context, operator domain.Identity, conversationID string) (*domain.TranscriptExport, error) {
	if err := requireOperator(operator); err != nil {
		return nil, err
	}

	conv, err := uc.registry.Resolve(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	messages, err := uc.msgRepo.FindAll(ctx, conv.ID)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	data, err := json.Marshal(domain.Transcript{
		Conversation: *conv,
		Messages:     messages,
		ExportedAt:   now.UnixMilli(),
		ExportedBy:   operator.MemberID,
	})
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("transcripts/%s/%d.json", conv.ID, now.UnixMilli())
	url, err := uc.transcripts.Save(ctx, key, data)
	if err != nil {
		return nil, errprocess.Wrap("upload transcript "+key, err)
	}

	logger.Log.Info("transcript exported",
		zap.String("conversation_id", conv.ID),
		zap.String("object_key", key),
		zap.String("operator_id", operator.MemberID))
	return &domain.TranscriptExport{ObjectKey: key, URL: url, MessageCount: len(messages)}, nil
}
