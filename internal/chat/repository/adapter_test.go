package repository

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"testing"
	"time"

	"jobboard_chat_service/internal/chat/domain"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
)

type stubMemberServer struct {
	members map[string]FindMemberResponse
}

func (s *stubMemberServer) FindMember(_ context.Context, req *FindMemberRequest) (*FindMemberResponse, error) {
	m, ok := s.members[req.MemberID]
	if !ok {
		return nil, status.Error(codes.NotFound, "member not found")
	}
	return &m, nil
}

func startMemberServer(t *testing.T) *grpc.ClientConn {
	t.Helper()
	lis := bufconn.Listen(1024 * 1024)
	srv := grpc.NewServer()
	RegisterMemberServiceServer(srv, &stubMemberServer{members: map[string]FindMemberResponse{
		"A": {MemberID: "A", Username: "alice", Role: "applicant"},
		"B": {MemberID: "B", Username: "bob", Role: "employer"},
	}})
	go func() { _ = srv.Serve(lis) }()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		conn.Close()
		srv.Stop()
	})
	return conn
}

// 測試 member service grpc client (structpb payload)
func TestMemberDirectory_FindMember(t *testing.T) {
	conn := startMemberServer(t)
	dir := NewMemberDirectory(conn)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	t.Run("存在的會員", func(t *testing.T) {
		p, err := dir.FindMember(ctx, "A")
		require.NoError(t, err)
		assert.Equal(t, &domain.Participant{MemberID: "A", Username: "alice", Role: "applicant"}, p)
	})

	t.Run("不存在的會員", func(t *testing.T) {
		_, err := dir.FindMember(ctx, "nobody")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("預設 proto codec", func(t *testing.T) {
		req, err := structpb.NewStruct(map[string]interface{}{"member_id": "B"})
		require.NoError(t, err)
		resp := new(structpb.Struct)
		require.NoError(t, conn.Invoke(ctx, findMemberMethod, req, resp))
		assert.Equal(t, map[string]interface{}{
			"member_id": "B",
			"username":  "bob",
			"role":      "employer",
		}, resp.AsMap())
	})
}

type fakeKafkaWriter struct {
	messages []kafka.Message
	err      error
}

func (f *fakeKafkaWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, msgs...)
	return nil
}

func TestKafkaEventPublisher(t *testing.T) {
	msg := domain.ChatMessage{ID: "m1", ConversationID: "app-42", SenderID: "A", RecipientID: "B", Content: "Hi", Seq: 1}

	t.Run("以 conversation id 作為 key", func(t *testing.T) {
		w := &fakeKafkaWriter{}
		require.NoError(t, NewKafkaEventPublisher(w).PublishMessageCreated(context.Background(), msg))
		require.Len(t, w.messages, 1)
		assert.Equal(t, "app-42", string(w.messages[0].Key))

		var event domain.MessageEvent
		require.NoError(t, json.Unmarshal(w.messages[0].Value, &event))
		assert.Equal(t, domain.MessageEventCreated, event.Type)
		assert.Equal(t, msg, event.Message)
	})

	t.Run("broker 錯誤往上傳", func(t *testing.T) {
		w := &fakeKafkaWriter{err: errors.New("broker down")}
		assert.Error(t, NewKafkaEventPublisher(w).PublishMessageCreated(context.Background(), msg))
	})
}

type fakeObjectStorage struct {
	objects   map[string][]byte
	uploadErr error
	expiry    time.Duration
}

func (f *fakeObjectStorage) UploadBytes(_ context.Context, name string, data []byte, _ string) error {
	if f.uploadErr != nil {
		return f.uploadErr
	}
	f.objects[name] = data
	return nil
}

func (f *fakeObjectStorage) PresignGetURL(_ context.Context, name string, expiry time.Duration) (string, error) {
	f.expiry = expiry
	return "http://minio.local/transcripts/" + name, nil
}

func TestMinIOTranscriptStore(t *testing.T) {
	storage := &fakeObjectStorage{objects: map[string][]byte{}}
	store := NewMinIOTranscriptStore(storage, 15*time.Minute)

	url, err := store.Save(context.Background(), "app-42/1.json", []byte(`{}`))
	require.NoError(t, err)
	assert.Equal(t, "http://minio.local/transcripts/app-42/1.json", url)
	assert.Equal(t, []byte(`{}`), storage.objects["app-42/1.json"])
	assert.Equal(t, 15*time.Minute, storage.expiry)

	storage.uploadErr = errors.New("bucket gone")
	_, err = store.Save(context.Background(), "app-42/2.json", []byte(`{}`))
	assert.Error(t, err)
}

func TestLocalPubSub(t *testing.T) {
	ps := NewLocalPubSub()
	ctx, cancel := context.WithCancel(context.Background())

	var got []string
	require.NoError(t, ps.Subscribe(ctx, domain.ConversationChannelPrefix+"*", func(channel string, payload []byte) {
		got = append(got, channel+"|"+string(payload))
	}))

	require.NoError(t, ps.Publish(context.Background(), domain.ConversationChannel("app-1"), "hi"))
	require.NoError(t, ps.Publish(context.Background(), "chat:user:1", "ignored"))
	assert.Equal(t, []string{`chat:conversation:app-1|"hi"`}, got)

	// ctx 結束後取消訂閱
	cancel()
	assert.Eventually(t, func() bool {
		ps.mu.RLock()
		defer ps.mu.RUnlock()
		return len(ps.handlers) == 0
	}, time.Second, 10*time.Millisecond)
}
