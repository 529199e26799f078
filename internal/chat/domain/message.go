package domain

const (
	// DefaultPageSize history page size when none requested
	DefaultPageSize = 20
	// MaxPageSize upper bound of a history page
	MaxPageSize = 100
	// MaxContentLength characters accepted per message
	MaxContentLength = 4000
)

// ChatMessage 表示一則聊天訊息, 建立後只會改 read flag
type ChatMessage struct {
	ID             string `bson:"_id" json:"id"`
	ConversationID string `bson:"conversation_id" json:"conversation_id"`
	SenderID       string `bson:"sender_id" json:"sender_id"`
	RecipientID    string `bson:"recipient_id" json:"recipient_id"`
	Content        string `bson:"content" json:"content"`
	Seq            int64  `bson:"seq" json:"seq"`
	CreatedAt      int64  `bson:"created_at" json:"created_at"` // unix ms
	Read           bool   `bson:"read" json:"read"`
}

// MessagePage one page of history, ascending by seq
type MessagePage struct {
	Total    int64         `json:"total"`
	Page     int           `json:"page"`
	PageSize int           `json:"page_size"`
	Messages []ChatMessage `json:"messages"`
}

// AuditPage operator view of a conversation
type AuditPage struct {
	Conversation Conversation           `json:"conversation"`
	Participants map[string]Participant `json:"participants"`
	MessagePage
}

// ReadMarker highest seq read by a user in a conversation
type ReadMarker struct {
	ConversationID string `bson:"conversation_id" json:"conversation_id"`
	UserID         string `bson:"user_id" json:"user_id"`
	Seq            int64  `bson:"seq" json:"seq"`
	UpdatedAt      int64  `bson:"updated_at" json:"updated_at"`
}

// UnreadInfo unread count of one conversation
type UnreadInfo struct {
	ConversationID string `json:"conversation_id"`
	UnreadCount    int64  `json:"unread_count"`
}

// UnreadSummary total badge and its breakdown
type UnreadSummary struct {
	Total         int64        `json:"total"`
	Conversations []UnreadInfo `json:"conversations"`
}

// MessageEventCreated kafka event type
const MessageEventCreated = "message.created"

// MessageEvent downstream notification of a committed message
type MessageEvent struct {
	Type    string      `json:"type"`
	Message ChatMessage `json:"message"`
}

// Transcript exported conversation
type Transcript struct {
	Conversation Conversation  `json:"conversation"`
	Messages     []ChatMessage `json:"messages"`
	ExportedAt   int64         `json:"exported_at"`
	ExportedBy   string        `json:"exported_by"`
}

// TranscriptExport location of an exported transcript
type TranscriptExport struct {
	ObjectKey    string `json:"object_key"`
	URL          string `json:"url"`
	MessageCount int    `json:"message_count"`
}
