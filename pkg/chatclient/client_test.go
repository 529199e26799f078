package chatclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"jobboard_chat_service/pkg/logger"

	gws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	logger.SetNewNop()
}

var fastBackoff = WithBackoff(5*time.Millisecond, 10*time.Millisecond, 20*time.Millisecond)

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

// 測試 401 不重試
func TestConnect_Unauthorized(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := New(wsURL(srv), "bad", fastBackoff)
	err := c.Connect(context.Background())
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, int32(1), hits.Load())
}

// 測試 backoff 用完後放棄
func TestConnect_GivesUp(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := New(wsURL(srv), "tk", fastBackoff)
	err := c.Connect(context.Background())
	assert.ErrorIs(t, err, ErrReconnectFailed)
	assert.Equal(t, int32(4), hits.Load())

	assert.ErrorIs(t, c.Send("app-42", "Hi", "c-1"), ErrNotConnected)
}

// 測試斷線後重連並重新 join
func TestRun_ReconnectRejoins(t *testing.T) {
	upgrader := gws.Upgrader{}
	var (
		mu       sync.Mutex
		sessions int
		joins    [][]string
		auth     []string
	)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		mu.Lock()
		sessions++
		n := sessions
		auth = append(auth, r.Header.Get("Authorization"))
		mu.Unlock()

		var req Request
		if err := conn.ReadJSON(&req); err != nil {
			return
		}
		mu.Lock()
		joins = append(joins, req.ConversationIDs)
		mu.Unlock()
		_ = conn.WriteJSON(Response{Action: "join", Success: true})

		// 第一條連線 join 完就斷線
		if n == 1 {
			return
		}
		_ = conn.WriteJSON(Response{Action: "new_message", Success: true, Payload: map[string]interface{}{"content": "Hello"}})
		_, _, _ = conn.ReadMessage()
	}))
	defer srv.Close()

	c := New(wsURL(srv), "tk", fastBackoff)
	require.NoError(t, c.Connect(context.Background()))
	require.NoError(t, c.Join("app-42", "app-43"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	var pushed Response
	require.Eventually(t, func() bool {
		select {
		case ev := <-c.Events():
			if ev.Action == "new_message" {
				pushed = ev
				return true
			}
		default:
		}
		return false
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, "Hello", pushed.Payload["content"])

	mu.Lock()
	assert.Equal(t, 2, sessions)
	assert.Equal(t, [][]string{{"app-42", "app-43"}, {"app-42", "app-43"}}, joins)
	assert.Equal(t, []string{"Bearer tk", "Bearer tk"}, auth)
	mu.Unlock()
	assert.Equal(t, []string{"app-42", "app-43"}, c.Joined())

	require.NoError(t, c.Close())
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after Close")
	}
}

// 測試重連遇到 401 時 Run 回傳 ErrUnauthorized
func TestRun_UnauthorizedIsTerminal(t *testing.T) {
	upgrader := gws.Upgrader{}
	var sessions atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if sessions.Add(1) > 1 {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		conn.Close()
	}))
	defer srv.Close()

	c := New(wsURL(srv), "tk", fastBackoff)
	require.NoError(t, c.Connect(context.Background()))

	err := c.Run(context.Background())
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, int32(2), sessions.Load())

	_, ok := <-c.Events()
	assert.False(t, ok)
}
