package domain

import "errors"

var (
	// ErrUnauthorized bad, missing or expired credential
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden authenticated but not a participant nor operator
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound unknown job application or conversation
	ErrNotFound = errors.New("not found")
	// ErrInvalidConversation append to unknown conversation or by a non participant
	ErrInvalidConversation = errors.New("invalid conversation")
	// ErrConversationClosed write on a closed conversation by a non operator
	ErrConversationClosed = errors.New("conversation closed")
	// ErrInvalidMessage empty or oversized body after sanitizing
	ErrInvalidMessage = errors.New("invalid message")
	// ErrConversationExists concurrent implicit creation lost the race
	ErrConversationExists = errors.New("conversation already exists")
)

// ErrorCode stable code sent to clients
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrInvalidConversation):
		return "invalid_conversation"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrConversationClosed):
		return "conversation_closed"
	case errors.Is(err, ErrInvalidMessage):
		return "invalid_message"
	}
	return "internal_error"
}
