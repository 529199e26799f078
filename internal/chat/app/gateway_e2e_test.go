package app

import (
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	"jobboard_chat_service/internal/chat/domain"
	"jobboard_chat_service/pkg/config"
	"jobboard_chat_service/pkg/middlewares"
	t_token "jobboard_chat_service/pkg/token"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	gws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// startGateway 在隨機 port 啟動 fiber + websocket
func startGateway(t *testing.T) (string, *testEnv) {
	ctx, cancel := context.WithCancel(context.Background())

	otherApp := domain.Application{ID: "app-7", JobPostID: "post-2", ApplicantID: "C", EmployerID: "B"}
	env := newTestEnv(app42, otherApp)
	hub := NewHub()
	require.NoError(t, hub.Run(ctx, env.pubsub))
	handler := NewChatWebsocketHandler(hub, env.registry, env.messages, env.unread, config.ChatSettings{})

	r := fiber.New(fiber.Config{DisableStartupMessage: true})
	r.Use(middlewares.JWTMiddleware())
	r.Get("/ws", websocket.New(func(c *websocket.Conn) {
		handler.HandleConnection(ctx, c)
	}))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = r.Listener(ln) }()

	t.Cleanup(func() {
		cancel()
		hub.Close()
		_ = r.Shutdown()
	})
	return "ws://" + ln.Addr().String() + "/ws", env
}

func dial(t *testing.T, url string, identity domain.Identity) *gws.Conn {
	tk, err := t_token.GenerateJWT(identity.MemberID, identity.Role, "test")
	require.NoError(t, err)

	conn, resp, err := gws.DefaultDialer.Dial(url+"?auth="+tk, nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// readUntil 讀到指定 action 為止
func readUntil(t *testing.T, conn *gws.Conn, action domain.Action) domain.WSResponse {
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	for {
		var resp domain.WSResponse
		require.NoError(t, conn.ReadJSON(&resp))
		if resp.Action == string(action) {
			return resp
		}
	}
}

// 測試沒有 token 時升級前就回 401
func TestGateway_Unauthorized(t *testing.T) {
	url, _ := startGateway(t)

	_, resp, err := gws.DefaultDialer.Dial(url, nil)
	require.ErrorIs(t, err, gws.ErrBadHandshake)
	require.NotNil(t, resp)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	_, resp, err = gws.DefaultDialer.Dial(url+"?auth=forged", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

// 測試完整流程: join, send, new_message 推送
func TestGateway_EndToEnd(t *testing.T) {
	url, env := startGateway(t)
	employer := domain.Identity{MemberID: "B", Role: string(t_token.RoleEmployer)}
	applicant := domain.Identity{MemberID: "A", Role: string(t_token.RoleApplicant)}

	a1 := dial(t, url, applicant)
	a2 := dial(t, url, applicant)
	b := dial(t, url, employer)

	// A 沒有 app-7 的權限, 只有 app-7 失敗
	require.NoError(t, a1.WriteJSON(domain.WSRequest{Action: "join", ConversationIDs: []string{"app-42", "app-7"}}))
	joinResp := readUntil(t, a1, domain.Join)
	assert.False(t, joinResp.Success)
	convs := joinResp.Payload["conversations"].(map[string]interface{})
	assert.Equal(t, true, convs["app-42"].(map[string]interface{})["success"])
	assert.Equal(t, "forbidden", convs["app-7"].(map[string]interface{})["error"])

	for _, conn := range []*gws.Conn{a2, b} {
		require.NoError(t, conn.WriteJSON(domain.WSRequest{Action: "join", ConversationID: "app-42"}))
		assert.True(t, readUntil(t, conn, domain.Join).Success)
	}

	require.NoError(t, a1.WriteJSON(domain.WSRequest{Action: "send", ConversationID: "app-42", Content: "Hi", ClientMsgID: "c-1"}))

	pushed := readUntil(t, b, domain.NewMessage)
	assert.Equal(t, "Hi", pushed.Payload["content"])
	assert.Equal(t, "A", pushed.Payload["sender_id"])

	other := readUntil(t, a2, domain.NewMessage)
	assert.Equal(t, pushed.Payload["id"], other.Payload["id"])

	ack := readUntil(t, a1, domain.Send)
	assert.True(t, ack.Success)
	assert.Equal(t, "c-1", ack.Payload["client_msg_id"])

	assert.Equal(t, 1, env.msgRepo.count("app-42"))
}
