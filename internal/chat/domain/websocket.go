package domain

import "strings"

// Action websocket request action
type Action string

const (
	// Join websocket action join
	Join Action = "join"
	// Leave websocket action leave
	Leave Action = "leave"
	// Send websocket action send
	Send Action = "send"
	// MarkRead websocket action mark_read
	MarkRead Action = "mark_read"
	// GetUnread websocket action get_unread
	GetUnread Action = "get_unread"
	// Ping websocket action ping
	Ping Action = "ping"
	// Pong reply of ping
	Pong Action = "pong"

	// NewMessage push after a message is committed
	NewMessage Action = "new_message"
	// ErrorEvent only sent to the originating connection
	ErrorEvent Action = "error"
)

// SessionState connection lifecycle
type SessionState int32

const (
	// StateConnecting before the upgrade completes
	StateConnecting SessionState = iota
	// StateAuthenticated credential accepted, no channel joined
	StateAuthenticated
	// StateJoined at least one channel joined
	StateJoined
	// StateDisconnected session discarded
	StateDisconnected
)

func (s SessionState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateAuthenticated:
		return "authenticated"
	case StateJoined:
		return "joined"
	case StateDisconnected:
		return "disconnected"
	}
	return "unknown"
}

// ConversationChannelPrefix redis pub/sub channel of a conversation
const ConversationChannelPrefix = "chat:conversation:"

// ConversationChannel channel name of conversationID
func ConversationChannel(conversationID string) string {
	return ConversationChannelPrefix + conversationID
}

// ConversationFromChannel reverse of ConversationChannel
func ConversationFromChannel(channel string) (string, bool) {
	if !strings.HasPrefix(channel, ConversationChannelPrefix) {
		return "", false
	}
	return strings.TrimPrefix(channel, ConversationChannelPrefix), true
}

// WSRequest websocket Request
type WSRequest struct {
	Action          string   `json:"action"`
	ConversationID  string   `json:"conversation_id"`
	ConversationIDs []string `json:"conversation_ids"`
	RecipientID     string   `json:"recipient_id"`
	Content         string   `json:"content"`
	ClientMsgID     string   `json:"client_msg_id"`
	UptoSeq         int64    `json:"upto_seq"`
}

// WSResponse websocket Response
type WSResponse struct {
	Action  string                 `json:"action"`
	Success bool                   `json:"success"`
	Payload map[string]interface{} `json:"payload,omitempty"`
	Error   string                 `json:"error,omitempty"`
}

// MessagePayload payload of a new_message / send ack
func MessagePayload(msg ChatMessage) map[string]interface{} {
	return map[string]interface{}{
		"id":              msg.ID,
		"conversation_id": msg.ConversationID,
		"sender_id":       msg.SenderID,
		"recipient_id":    msg.RecipientID,
		"content":         msg.Content,
		"seq":             msg.Seq,
		"created_at":      msg.CreatedAt,
	}
}
