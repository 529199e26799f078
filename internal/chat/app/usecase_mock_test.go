package app

import (
	"context"

	"jobboard_chat_service/internal/chat/domain"

	"github.com/stretchr/testify/mock"
)

// MockMemberDirectory Mock MemberDirectory
type MockMemberDirectory struct {
	mock.Mock
}

// FindMember moke find member by id
func (m *MockMemberDirectory) FindMember(ctx context.Context, memberID string) (*domain.Participant, error) {
	args := m.Called(ctx, memberID)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.Participant), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockEventPublisher Mock EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

// PublishMessageCreated moke publish message.created
func (m *MockEventPublisher) PublishMessageCreated(ctx context.Context, msg domain.ChatMessage) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

// MockConversationCache Mock ConversationCache
type MockConversationCache struct {
	mock.Mock
}

// Get moke cache get
func (m *MockConversationCache) Get(ctx context.Context, conversationID string) (*domain.Conversation, error) {
	args := m.Called(ctx, conversationID)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.Conversation), args.Error(1)
	}
	return nil, args.Error(1)
}

// Set moke cache set
func (m *MockConversationCache) Set(ctx context.Context, conv *domain.Conversation) error {
	args := m.Called(ctx, conv)
	return args.Error(0)
}

// Del moke cache del
func (m *MockConversationCache) Del(ctx context.Context, conversationID string) error {
	args := m.Called(ctx, conversationID)
	return args.Error(0)
}
