package app

import (
	"context"
	"encoding/json"
	"time"

	"jobboard_chat_service/internal/chat/domain"
	"jobboard_chat_service/pkg"
	"jobboard_chat_service/pkg/config"
	"jobboard_chat_service/pkg/logger"
	"jobboard_chat_service/pkg/middlewares"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
)

// ChatWebsocketHandler 可包含所有需要的 UseCase
type ChatWebsocketHandler struct {
	hub       *Hub
	registry  *ConversationRegistry
	messageUC *SendMessageUseCase
	unreadUC  *UnreadUseCase
	settings  config.ChatSettings
}

// NewChatWebsocketHandler create ChatWebsocketHandler
func NewChatWebsocketHandler(
	hub *Hub,
	registry *ConversationRegistry,
	messageUC *SendMessageUseCase,
	unreadUC *UnreadUseCase,
	settings config.ChatSettings,
) *ChatWebsocketHandler {
	return &ChatWebsocketHandler{
		hub:       hub,
		registry:  registry,
		messageUC: messageUC,
		unreadUC:  unreadUC,
		settings:  settings.WithDefaults(),
	}
}

// HandleConnection 是 WebSocket 連線的進入點, token 已在升級前由 JWTMiddleware 驗證
func (h *ChatWebsocketHandler) HandleConnection(ctx context.Context, conn *websocket.Conn) {
	memberID, _ := conn.Locals(middlewares.TokenMemberID).(string)
	role, _ := conn.Locals(middlewares.TokenRole).(string)
	if memberID == "" {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "unauthorized"), time.Now().Add(writeWait))
		_ = conn.Close()
		return
	}
	h.Serve(ctx, domain.Identity{MemberID: memberID, Role: role}, conn)
}

// Serve read loop of one session, 回傳時 session 已移除
func (h *ChatWebsocketHandler) Serve(ctx context.Context, identity domain.Identity, conn wsConn) {
	ctx, cancel := context.WithCancel(ctx)
	s := NewSession(identity, conn, h.settings.SendBuffer, h.settings.InboxSize, h.settings.PingInterval)
	h.hub.Attach(s)
	logger.Log.Info("websocket connected", zap.String("member_id", identity.MemberID), zap.String("session_id", s.ID))

	defer func() {
		cancel()
		h.hub.Detach(s)
		s.Close(websocket.CloseNormalClosure, "bye")
		logger.Log.Info("websocket close", zap.String("member_id", identity.MemberID), zap.String("session_id", s.ID))
	}()

	//server發出ping之後client連線正常會回pong, pong 延長 read deadline
	_ = conn.SetReadDeadline(time.Now().Add(h.settings.PongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(h.settings.PongWait))
	})

	for {
		mt, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
				logger.Log.Warn("websocket read error", zap.String("session_id", s.ID), zap.Error(err))
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(h.settings.PongWait))

		if mt != websocket.TextMessage {
			h.sendError(s, "", "", "unsupported_message_type")
			continue
		}
		h.dispatch(ctx, s, message)
	}
}

// dispatch ping 直接回覆, 其他 action 依序交給 session worker
func (h *ChatWebsocketHandler) dispatch(ctx context.Context, s *Session, raw []byte) {
	var req domain.WSRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		h.sendError(s, "", "", "invalid_request")
		return
	}

	if domain.Action(req.Action) == domain.Ping {
		h.sendResponse(s, domain.WSResponse{Action: string(domain.Pong), Success: true})
		return
	}

	err := s.Enqueue(func() {
		h.execAction(ctx, s, req)
	})
	if err != nil {
		h.sendError(s, req.Action, req.ClientMsgID, "too_many_requests")
	}
}

func (h *ChatWebsocketHandler) execAction(ctx context.Context, s *Session, req domain.WSRequest) {
	switch domain.Action(req.Action) {
	case domain.Join:
		h.join(ctx, s, req)
	case domain.Leave:
		h.leave(s, req)
	case domain.Send:
		h.send(ctx, s, req)
	case domain.MarkRead:
		h.markRead(ctx, s, req)
	case domain.GetUnread:
		h.getUnread(ctx, s, req)
	default:
		h.sendError(s, req.Action, req.ClientMsgID, "unknown_action")
	}
}

func requestedConversations(req domain.WSRequest) []string {
	return pkg.Unique(append([]string{req.ConversationID}, req.ConversationIDs...))
}

// join 每個 channel 各自驗證, 失敗的 channel 不影響其他
func (h *ChatWebsocketHandler) join(ctx context.Context, s *Session, req domain.WSRequest) {
	ids := requestedConversations(req)
	results := make(map[string]interface{}, len(ids))
	failed := ""

	for _, id := range ids {
		conv, err := h.registry.Resolve(ctx, id)
		if err == nil {
			err = h.registry.Authorize(conv, s.Identity)
		}
		if err != nil {
			code := domain.ErrorCode(err)
			if failed == "" {
				failed = code
			}
			results[id] = map[string]interface{}{"success": false, "error": code}
			continue
		}

		h.hub.Join(conv.ID, s)
		results[id] = map[string]interface{}{
			"success": true,
			"status":  conv.Status,
			"online":  h.hub.IsOnline(conv.Counterparty(s.Identity.MemberID)),
		}
	}

	if len(ids) == 0 {
		failed = domain.ErrorCode(domain.ErrNotFound)
	}
	h.sendResponse(s, domain.WSResponse{
		Action:  req.Action,
		Success: failed == "",
		Payload: map[string]interface{}{"conversations": results},
		Error:   failed,
	})
}

func (h *ChatWebsocketHandler) leave(s *Session, req domain.WSRequest) {
	ids := requestedConversations(req)
	for _, id := range ids {
		h.hub.Leave(id, s)
	}
	h.sendResponse(s, domain.WSResponse{
		Action:  req.Action,
		Success: true,
		Payload: map[string]interface{}{"conversation_ids": ids, "state": s.State().String()},
	})
}

// send commit 後回 ack, new_message 由 hub 經 pub/sub 推送
func (h *ChatWebsocketHandler) send(ctx context.Context, s *Session, req domain.WSRequest) {
	if !s.IsJoined(req.ConversationID) {
		h.sendError(s, req.Action, req.ClientMsgID, domain.ErrorCode(domain.ErrForbidden))
		return
	}

	msg, err := h.messageUC.Append(ctx, s.Identity, req.ConversationID, req.RecipientID, req.Content)
	if err != nil {
		h.logActionError(s, req, err)
		h.sendError(s, req.Action, req.ClientMsgID, domain.ErrorCode(err))
		return
	}

	payload := domain.MessagePayload(*msg)
	payload["client_msg_id"] = req.ClientMsgID
	h.sendResponse(s, domain.WSResponse{Action: req.Action, Success: true, Payload: payload})
}

func (h *ChatWebsocketHandler) markRead(ctx context.Context, s *Session, req domain.WSRequest) {
	marker, err := h.messageUC.MarkRead(ctx, s.Identity, req.ConversationID, req.UptoSeq)
	if err != nil {
		h.logActionError(s, req, err)
		h.sendError(s, req.Action, req.ClientMsgID, domain.ErrorCode(err))
		return
	}
	h.sendResponse(s, domain.WSResponse{
		Action:  req.Action,
		Success: true,
		Payload: map[string]interface{}{"conversation_id": req.ConversationID, "read_seq": marker},
	})
}

// getUnread 指定 conversation 時只回該對話, 否則回總數與明細
func (h *ChatWebsocketHandler) getUnread(ctx context.Context, s *Session, req domain.WSRequest) {
	if req.ConversationID != "" {
		info, err := h.unreadUC.ConversationUnread(ctx, s.Identity, req.ConversationID)
		if err != nil {
			h.logActionError(s, req, err)
			h.sendError(s, req.Action, req.ClientMsgID, domain.ErrorCode(err))
			return
		}
		h.sendResponse(s, domain.WSResponse{
			Action:  req.Action,
			Success: true,
			Payload: map[string]interface{}{"conversation_id": info.ConversationID, "unread_count": info.UnreadCount},
		})
		return
	}

	summary, err := h.unreadUC.TotalUnread(ctx, s.Identity.MemberID)
	if err != nil {
		h.logActionError(s, req, err)
		h.sendError(s, req.Action, req.ClientMsgID, domain.ErrorCode(err))
		return
	}
	h.sendResponse(s, domain.WSResponse{
		Action:  req.Action,
		Success: true,
		Payload: map[string]interface{}{"total": summary.Total, "conversations": summary.Conversations},
	})
}

func (h *ChatWebsocketHandler) logActionError(s *Session, req domain.WSRequest, err error) {
	if domain.ErrorCode(err) == "internal_error" {
		logger.Log.Error("websocket err",
			zap.String("MemberID", s.Identity.MemberID),
			zap.String("Action", req.Action),
			zap.String("conversation_id", req.ConversationID),
			zap.Error(err))
		return
	}
	logger.Log.Debug("websocket action rejected", zap.String("Action", req.Action), zap.Error(err))
}

// sendResponse - 發送 JSON 給前端
func (h *ChatWebsocketHandler) sendResponse(s *Session, resp domain.WSResponse) {
	b, err := json.Marshal(resp)
	if err != nil {
		logger.Log.Error("marshal response failed", zap.Error(err))
		return
	}
	if err := s.Send(b); err != nil {
		logger.Log.Debug("send to session failed", zap.String("session_id", s.ID), zap.Error(err))
	}
}

// sendError error 只送回發出請求的連線
func (h *ChatWebsocketHandler) sendError(s *Session, action, clientMsgID, code string) {
	payload := map[string]interface{}{}
	if action != "" {
		payload["request_action"] = action
	}
	if clientMsgID != "" {
		payload["client_msg_id"] = clientMsgID
	}
	h.sendResponse(s, domain.WSResponse{
		Action:  string(domain.ErrorEvent),
		Success: false,
		Payload: payload,
		Error:   code,
	})
}
