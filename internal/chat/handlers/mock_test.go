package handlers

import (
	"context"

	"jobboard_chat_service/internal/chat/domain"

	"github.com/stretchr/testify/mock"
)

type MockMessageService struct {
	mock.Mock
}

func (m *MockMessageService) Append(ctx context.Context, sender domain.Identity, conversationID, recipientID, content string) (*domain.ChatMessage, error) {
	args := m.Called(ctx, sender, conversationID, recipientID, content)
	if msg := args.Get(0); msg != nil {
		return msg.(*domain.ChatMessage), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockMessageService) MarkRead(ctx context.Context, reader domain.Identity, conversationID string, uptoSeq int64) (int64, error) {
	args := m.Called(ctx, reader, conversationID, uptoSeq)
	return args.Get(0).(int64), args.Error(1)
}

type MockUnreadService struct {
	mock.Mock
}

func (m *MockUnreadService) ConversationUnread(ctx context.Context, identity domain.Identity, conversationID string) (*domain.UnreadInfo, error) {
	args := m.Called(ctx, identity, conversationID)
	if info := args.Get(0); info != nil {
		return info.(*domain.UnreadInfo), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUnreadService) TotalUnread(ctx context.Context, userID string) (*domain.UnreadSummary, error) {
	args := m.Called(ctx, userID)
	if summary := args.Get(0); summary != nil {
		return summary.(*domain.UnreadSummary), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockHistoryService struct {
	mock.Mock
}

func (m *MockHistoryService) GetHistory(ctx context.Context, reader domain.Identity, conversationID string, page, pageSize int) (*domain.MessagePage, error) {
	args := m.Called(ctx, reader, conversationID, page, pageSize)
	if p := args.Get(0); p != nil {
		return p.(*domain.MessagePage), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockHistoryService) SearchJobPosts(ctx context.Context, operator domain.Identity, title string) ([]domain.JobPost, error) {
	args := m.Called(ctx, operator, title)
	return args.Get(0).([]domain.JobPost), args.Error(1)
}

func (m *MockHistoryService) ListApplicants(ctx context.Context, operator domain.Identity, jobPostID string) ([]domain.ApplicantSummary, error) {
	args := m.Called(ctx, operator, jobPostID)
	return args.Get(0).([]domain.ApplicantSummary), args.Error(1)
}

func (m *MockHistoryService) AuditHistory(ctx context.Context, operator domain.Identity, conversationID string, page, pageSize int) (*domain.AuditPage, error) {
	args := m.Called(ctx, operator, conversationID, page, pageSize)
	if p := args.Get(0); p != nil {
		return p.(*domain.AuditPage), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockHistoryService) ExportTranscript(ctx context.Context, operator domain.Identity, conversationID string) (*domain.TranscriptExport, error) {
	args := m.Called(ctx, operator, conversationID)
	if e := args.Get(0); e != nil {
		return e.(*domain.TranscriptExport), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockBroadcastService struct {
	mock.Mock
}

func (m *MockBroadcastService) BroadcastToApplicants(ctx context.Context, sender domain.Identity, jobPostID, content string) (domain.BroadcastResult, error) {
	args := m.Called(ctx, sender, jobPostID, content)
	return args.Get(0).(domain.BroadcastResult), args.Error(1)
}

func (m *MockBroadcastService) BroadcastToSelected(ctx context.Context, sender domain.Identity, jobPostID string, applicationIDs []string, content string) (domain.BroadcastResult, error) {
	args := m.Called(ctx, sender, jobPostID, applicationIDs, content)
	return args.Get(0).(domain.BroadcastResult), args.Error(1)
}

func (m *MockBroadcastService) BulkRejectApplications(ctx context.Context, caller domain.Identity, jobPostID string, applicationIDs []string) (domain.BulkResult, error) {
	args := m.Called(ctx, caller, jobPostID, applicationIDs)
	return args.Get(0).(domain.BulkResult), args.Error(1)
}
