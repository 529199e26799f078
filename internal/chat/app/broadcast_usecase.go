package app

import (
	"context"
	"fmt"
	"sync/atomic"

	"jobboard_chat_service/internal/chat/domain"
	"jobboard_chat_service/internal/chat/repository"
	"jobboard_chat_service/pkg"
	"jobboard_chat_service/pkg/logger"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// BroadcastUseCase one-to-many send over the applications of a job post
type BroadcastUseCase struct {
	directory   repository.ApplicationDirectory
	registry    *ConversationRegistry
	messages    *SendMessageUseCase
	concurrency int
}

// NewBroadcastUseCase init broadcast use case
func NewBroadcastUseCase(
	directory repository.ApplicationDirectory,
	registry *ConversationRegistry,
	messages *SendMessageUseCase,
	concurrency int,
) *BroadcastUseCase {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &BroadcastUseCase{
		directory:   directory,
		registry:    registry,
		messages:    messages,
		concurrency: concurrency,
	}
}

// BroadcastToApplicants send content to every application of jobPostID
func (uc *BroadcastUseCase) BroadcastToApplicants(ctx context.Context, sender domain.Identity, jobPostID, content string) (domain.BroadcastResult, error) {
	apps, err := uc.directory.ListApplications(ctx, jobPostID)
	if err != nil {
		return domain.BroadcastResult{}, err
	}
	// 職缺上沒有任何一筆屬於 sender 才整批拒絕, 個別應徵仍在 sendOne 檢查
	if !sender.IsOperator() && len(apps) > 0 && !ownsAny(apps, sender.MemberID) {
		return domain.BroadcastResult{}, fmt.Errorf("job post %s: %w", jobPostID, domain.ErrForbidden)
	}

	ids := make([]string, 0, len(apps))
	for _, app := range apps {
		ids = append(ids, app.ID)
	}
	return uc.dispatch(ctx, sender, jobPostID, ids, content)
}

func ownsAny(apps []domain.Application, employerID string) bool {
	for _, app := range apps {
		if app.EmployerID == employerID {
			return true
		}
	}
	return false
}

// BroadcastToSelected send content to the given applications of jobPostID
func (uc *BroadcastUseCase) BroadcastToSelected(ctx context.Context, sender domain.Identity, jobPostID string, applicationIDs []string, content string) (domain.BroadcastResult, error) {
	return uc.dispatch(ctx, sender, jobPostID, pkg.Unique(applicationIDs), content)
}

// dispatch 個別失敗只計數, 不中斷整批
func (uc *BroadcastUseCase) dispatch(ctx context.Context, sender domain.Identity, jobPostID string, applicationIDs []string, content string) (domain.BroadcastResult, error) {
	if _, err := sanitizeContent(uc.messages.validate, content); err != nil {
		return domain.BroadcastResult{}, err
	}

	var sent, failed atomic.Int64
	var g errgroup.Group
	g.SetLimit(uc.concurrency)

	for _, applicationID := range applicationIDs {
		applicationID := applicationID
		g.Go(func() error {
			if err := uc.sendOne(ctx, sender, jobPostID, applicationID, content); err != nil {
				failed.Add(1)
				logger.Log.Debug("broadcast target failed",
					zap.String("job_post_id", jobPostID),
					zap.String("application_id", applicationID),
					zap.Error(err))
				return nil
			}
			sent.Add(1)
			return nil
		})
	}
	_ = g.Wait()

	result := domain.BroadcastResult{Sent: int(sent.Load()), Failed: int(failed.Load())}
	logger.Log.Info("broadcast done",
		zap.String("job_post_id", jobPostID),
		zap.String("sender_id", sender.MemberID),
		zap.Int("sent", result.Sent),
		zap.Int("failed", result.Failed))
	return result, nil
}

func (uc *BroadcastUseCase) sendOne(ctx context.Context, sender domain.Identity, jobPostID, applicationID, content string) error {
	conv, err := uc.registry.Resolve(ctx, applicationID)
	if err != nil {
		return err
	}
	if conv.JobPostID != jobPostID {
		return fmt.Errorf("application %s not in job post %s: %w", applicationID, jobPostID, domain.ErrNotFound)
	}
	if !sender.IsOperator() && conv.CounterpartID != sender.MemberID {
		return fmt.Errorf("application %s: %w", applicationID, domain.ErrForbidden)
	}
	// broadcast 不會寫入已關閉的對話, operator 也一樣
	if conv.IsClosed() {
		return fmt.Errorf("application %s: %w", applicationID, domain.ErrConversationClosed)
	}

	_, err = uc.messages.Append(ctx, sender, conv.ID, conv.ApplicantID, content)
	return err
}

// BulkRejectApplications reject through the application directory and close the conversations
func (uc *BroadcastUseCase) BulkRejectApplications(ctx context.Context, caller domain.Identity, jobPostID string, applicationIDs []string) (domain.BulkResult, error) {
	var succeeded, failed atomic.Int64
	var g errgroup.Group
	g.SetLimit(uc.concurrency)

	for _, applicationID := range pkg.Unique(applicationIDs) {
		applicationID := applicationID
		g.Go(func() error {
			if err := uc.rejectOne(ctx, caller, jobPostID, applicationID); err != nil {
				failed.Add(1)
				logger.Log.Debug("reject application failed", zap.String("application_id", applicationID), zap.Error(err))
				return nil
			}
			succeeded.Add(1)
			return nil
		})
	}
	_ = g.Wait()

	return domain.BulkResult{Succeeded: int(succeeded.Load()), Failed: int(failed.Load())}, nil
}

func (uc *BroadcastUseCase) rejectOne(ctx context.Context, caller domain.Identity, jobPostID, applicationID string) error {
	app, err := uc.directory.FindApplication(ctx, applicationID)
	if err != nil {
		return err
	}
	if app.JobPostID != jobPostID {
		return fmt.Errorf("application %s not in job post %s: %w", applicationID, jobPostID, domain.ErrNotFound)
	}
	if !caller.IsOperator() && app.EmployerID != caller.MemberID {
		return fmt.Errorf("application %s: %w", applicationID, domain.ErrForbidden)
	}
	if err := uc.directory.RejectApplication(ctx, jobPostID, applicationID); err != nil {
		return err
	}
	return uc.registry.MarkClosed(ctx, applicationID)
}
