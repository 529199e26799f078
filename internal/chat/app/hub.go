package app

import (
	"context"
	"encoding/json"
	"sync"

	"jobboard_chat_service/internal/chat/domain"
	"jobboard_chat_service/internal/chat/repository"
	"jobboard_chat_service/pkg/logger"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
)

// Hub coordinates sessions of this node and the conversations they joined.
// A member may hold several sessions at once.
type Hub struct {
	mu           sync.RWMutex
	sessions     map[string]*Session            // sessionID -> session
	userSessions map[string]map[string]*Session // memberID -> sessionID -> session
	rooms        map[string]map[string]*Session // conversationID -> sessionID -> session
	sessionRooms map[string]map[string]struct{} // sessionID -> conversationIDs
}

// NewHub constructs an initialized Hub.
func NewHub() *Hub {
	return &Hub{
		sessions:     make(map[string]*Session),
		userSessions: make(map[string]map[string]*Session),
		rooms:        make(map[string]map[string]*Session),
		sessionRooms: make(map[string]map[string]struct{}),
	}
}

// Attach registers and starts a session.
func (h *Hub) Attach(s *Session) {
	h.mu.Lock()
	h.sessions[s.ID] = s
	userSessions := h.userSessions[s.Identity.MemberID]
	if userSessions == nil {
		userSessions = make(map[string]*Session)
		h.userSessions[s.Identity.MemberID] = userSessions
	}
	userSessions[s.ID] = s
	h.sessionRooms[s.ID] = make(map[string]struct{})
	h.mu.Unlock()

	s.setState(domain.StateAuthenticated)
	s.Start()
	logger.Log.Debug("session attached", zap.String("session_id", s.ID), zap.String("member_id", s.Identity.MemberID))
}

// Detach removes a session if it is still tracked.
func (h *Hub) Detach(s *Session) {
	h.mu.Lock()
	h.detachLocked(s.ID)
	h.mu.Unlock()
}

// Join adds the session to the conversation channel.
func (h *Hub) Join(conversationID string, s *Session) bool {
	h.mu.Lock()
	if _, ok := h.sessions[s.ID]; !ok {
		h.mu.Unlock()
		return false
	}

	room := h.rooms[conversationID]
	if room == nil {
		room = make(map[string]*Session)
		h.rooms[conversationID] = room
	}
	room[s.ID] = s
	h.sessionRooms[s.ID][conversationID] = struct{}{}
	h.mu.Unlock()

	s.joined(conversationID)
	return true
}

// Leave removes the session from the conversation channel.
func (h *Hub) Leave(conversationID string, s *Session) {
	h.mu.Lock()
	h.leaveLocked(conversationID, s.ID)
	h.mu.Unlock()
	s.left(conversationID)
}

// Broadcast writes payload to every session joined to the conversation.
func (h *Hub) Broadcast(conversationID string, payload []byte) int {
	h.mu.RLock()
	room := h.rooms[conversationID]
	targets := make([]*Session, 0, len(room))
	for _, s := range room {
		targets = append(targets, s)
	}
	h.mu.RUnlock()

	// Send 可能因 buffer 滿而關閉 session, 不在鎖內呼叫
	delivered := 0
	for _, s := range targets {
		if err := s.Send(payload); err == nil {
			delivered++
		}
	}
	return delivered
}

// IsOnline member has at least one live session on this node
func (h *Hub) IsOnline(memberID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.userSessions[memberID]) > 0
}

// Run 訂閱所有 conversation channel, 收到 commit 後的訊息轉成 new_message 推給本節點的 session
func (h *Hub) Run(ctx context.Context, ps repository.PubSub) error {
	return ps.Subscribe(ctx, domain.ConversationChannelPrefix+"*", h.onPublish)
}

func (h *Hub) onPublish(channel string, payload []byte) {
	conversationID, ok := domain.ConversationFromChannel(channel)
	if !ok {
		return
	}

	var event domain.MessageEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		logger.Log.Error("pubsub payload unmarshal failed", zap.String("channel", channel), zap.Error(err))
		return
	}

	data, err := json.Marshal(domain.WSResponse{
		Action:  string(domain.NewMessage),
		Success: true,
		Payload: domain.MessagePayload(event.Message),
	})
	if err != nil {
		return
	}
	n := h.Broadcast(conversationID, data)
	logger.Log.Debug("new_message delivered", zap.String("conversation_id", conversationID), zap.Int("sessions", n))
}

// Close terminates all tracked sessions and clears hub state.
func (h *Hub) Close() {
	h.mu.Lock()
	sessions := make([]*Session, 0, len(h.sessions))
	for _, s := range h.sessions {
		sessions = append(sessions, s)
	}
	h.sessions = make(map[string]*Session)
	h.userSessions = make(map[string]map[string]*Session)
	h.rooms = make(map[string]map[string]*Session)
	h.sessionRooms = make(map[string]map[string]struct{})
	h.mu.Unlock()

	for _, s := range sessions {
		s.Close(websocket.CloseGoingAway, "server shutdown")
	}
}

func (h *Hub) detachLocked(sessionID string) {
	s, ok := h.sessions[sessionID]
	if !ok {
		return
	}
	delete(h.sessions, sessionID)

	if userSessions := h.userSessions[s.Identity.MemberID]; userSessions != nil {
		delete(userSessions, sessionID)
		if len(userSessions) == 0 {
			delete(h.userSessions, s.Identity.MemberID)
		}
	}

	for conversationID := range h.sessionRooms[sessionID] {
		h.leaveLocked(conversationID, sessionID)
	}
	delete(h.sessionRooms, sessionID)
}

func (h *Hub) leaveLocked(conversationID, sessionID string) {
	room := h.rooms[conversationID]
	if room == nil {
		return
	}
	delete(room, sessionID)
	if len(room) == 0 {
		delete(h.rooms, conversationID)
	}
	if memberships, ok := h.sessionRooms[sessionID]; ok {
		delete(memberships, conversationID)
	}
}
