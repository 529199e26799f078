package app

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"jobboard_chat_service/internal/chat/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func seedApp42(t *testing.T, env *testEnv) {
	t.Helper()
	ctx := context.Background()
	for _, step := range []struct {
		sender  domain.Identity
		content string
	}{
		{applicantA, "Hi"},
		{employerB, "Hello"},
		{applicantA, "When can we talk?"},
	} {
		_, err := env.messages.Append(ctx, step.sender, "app-42", "", step.content)
		require.NoError(t, err)
	}
}

func TestHistoryUseCase_GetHistory(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(app42)
	seedApp42(t, env)

	t.Run("非參與者", func(t *testing.T) {
		_, err := env.history.GetHistory(ctx, strangerC, "app-42", 1, 20)
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("不存在的對話", func(t *testing.T) {
		_, err := env.history.GetHistory(ctx, applicantA, "app-missing", 1, 20)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("operator 讀取不影響 read marker", func(t *testing.T) {
		page, err := env.history.GetHistory(ctx, operatorOp, "app-42", 1, 20)
		require.NoError(t, err)
		assert.Len(t, page.Messages, 3)

		n, err := env.unread.UnreadCount(ctx, "app-42", "B")
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)
	})

	t.Run("參與者讀取後 marker 前進到最後一則", func(t *testing.T) {
		page, err := env.history.GetHistory(ctx, employerB, "app-42", 1, 2)
		require.NoError(t, err)
		require.Len(t, page.Messages, 2)

		marker, err := env.markers.Get(ctx, "app-42", "B")
		require.NoError(t, err)
		assert.Equal(t, int64(2), marker)

		n, err := env.unread.UnreadCount(ctx, "app-42", "B")
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})
}

func TestHistoryUseCase_OperatorOnly(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(app42)
	env.lookup.posts = []domain.JobPost{
		{ID: "post-1", Title: "Senior Go Engineer", EmployerID: "B"},
		{ID: "post-2", Title: "Barista", EmployerID: "E"},
	}
	env.lookup.applicants["post-1"] = []domain.ApplicantSummary{
		{ApplicationID: "app-42", ApplicantID: "A", Username: "alice", Status: "submitted"},
	}

	_, err := env.history.SearchJobPosts(ctx, employerB, "go")
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = env.history.ListApplicants(ctx, applicantA, "post-1")
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = env.history.AuditHistory(ctx, employerB, "app-42", 1, 20)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = env.history.ExportTranscript(ctx, applicantA, "app-42")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	posts, err := env.history.SearchJobPosts(ctx, operatorOp, "GO engineer")
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "post-1", posts[0].ID)

	applicants, err := env.history.ListApplicants(ctx, operatorOp, "post-1")
	require.NoError(t, err)
	require.Len(t, applicants, 1)
	assert.Equal(t, "alice", applicants[0].Username)
}

func TestHistoryUseCase_AuditHistory(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(app42)
	seedApp42(t, env)

	members := new(MockMemberDirectory)
	members.On("FindMember", mock.Anything, "A").Return(&domain.Participant{MemberID: "A", Username: "alice", Role: "applicant"}, nil)
	members.On("FindMember", mock.Anything, "B").Return(nil, errors.New("member service down"))
	env.history.members = members

	audit, err := env.history.AuditHistory(ctx, operatorOp, "app-42", 1, 20)
	require.NoError(t, err)
	assert.Equal(t, "app-42", audit.Conversation.ID)
	assert.Equal(t, int64(3), audit.Total)
	assert.Equal(t, "alice", audit.Participants["A"].Username)
	// member service 失敗時仍回傳 member id
	assert.Equal(t, domain.Participant{MemberID: "B"}, audit.Participants["B"])

	// audit 不移動 marker
	n, err := env.unread.UnreadCount(ctx, "app-42", "B")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	members.AssertExpectations(t)
}

func TestHistoryUseCase_ExportTranscript(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(app42)
	seedApp42(t, env)
	env.history.now = fixedClock(1700000000000)

	export, err := env.history.ExportTranscript(ctx, operatorOp, "app-42")
	require.NoError(t, err)
	assert.Equal(t, "transcripts/app-42/1700000000000.json", export.ObjectKey)
	assert.Equal(t, "http://minio.local/transcripts/app-42/1700000000000.json", export.URL)
	assert.Equal(t, 3, export.MessageCount)

	var transcript domain.Transcript
	require.NoError(t, json.Unmarshal(env.transcripts.objects[export.ObjectKey], &transcript))
	assert.Equal(t, "op", transcript.ExportedBy)
	require.Len(t, transcript.Messages, 3)
	assert.Equal(t, "When can we talk?", transcript.Messages[2].Content)

	t.Run("上傳失敗", func(t *testing.T) {
		uploadErr := errors.New("minio: bucket not found")
		env.transcripts.err = uploadErr
		_, err := env.history.ExportTranscript(ctx, operatorOp, "app-42")
		assert.ErrorIs(t, err, uploadErr)
		assert.Equal(t, "internal_error", domain.ErrorCode(err))
	})
}
