package handlers

import (
	"github.com/gofiber/fiber/v2"
)

// ConversationHandler 處理參與者的對話 HTTP 請求
type ConversationHandler struct {
	messages MessageService
	history  HistoryService
	unread   UnreadService
}

// NewConversationHandler create ConversationHandler
func NewConversationHandler(messages MessageService, history HistoryService, unread UnreadService) *ConversationHandler {
	return &ConversationHandler{
		messages: messages,
		history:  history,
		unread:   unread,
	}
}

// SendMessageRequest body of POST /conversations/:applicationID/messages
type SendMessageRequest struct {
	RecipientID string `json:"recipient_id"`
	Content     string `json:"content" validate:"required"`
}

// MarkReadRequest body of POST /conversations/:applicationID/read, 0 代表讀到最新
type MarkReadRequest struct {
	UptoSeq int64 `json:"upto_seq" validate:"gte=0"`
}

// SendMessage 非即時的送訊息入口
// @Summary Send a message
// @Description Append a message to the conversation of a job application
// @Tags Conversations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param applicationID path string true "Job application id"
// @Param request body SendMessageRequest true "message"
// @Success 201 {object} domain.ChatMessage
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /conversations/{applicationID}/messages [post]
func (h *ConversationHandler) SendMessage(c *fiber.Ctx) error {
	identity, err := identityFrom(c)
	if err != nil {
		return errorResponse(c, err)
	}

	var req SendMessageRequest
	if err := parseBody(c, &req); err != nil {
		return badRequest(c, err.Error())
	}

	msg, err := h.messages.Append(c.UserContext(), identity, c.Params("applicationID"), req.RecipientID, req.Content)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(msg)
}

// GetMessages 分頁讀取對話紀錄
// @Summary Conversation history
// @Description Page through a conversation in sequence order, participants only
// @Tags Conversations
// @Produce json
// @Security BearerAuth
// @Param applicationID path string true "Job application id"
// @Param page query int false "page, from 1"
// @Param page_size query int false "page size"
// @Success 200 {object} domain.MessagePage
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /conversations/{applicationID}/messages [get]
func (h *ConversationHandler) GetMessages(c *fiber.Ctx) error {
	identity, err := identityFrom(c)
	if err != nil {
		return errorResponse(c, err)
	}

	page, pageSize := pageQuery(c)
	result, err := h.history.GetHistory(c.UserContext(), identity, c.Params("applicationID"), page, pageSize)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(result)
}

// MarkRead 前進 read marker
// @Summary Mark read
// @Description Advance the caller's read marker, never moves backwards
// @Tags Conversations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param applicationID path string true "Job application id"
// @Param request body MarkReadRequest false "upto_seq"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} map[string]string
// @Router /conversations/{applicationID}/read [post]
func (h *ConversationHandler) MarkRead(c *fiber.Ctx) error {
	identity, err := identityFrom(c)
	if err != nil {
		return errorResponse(c, err)
	}

	var req MarkReadRequest
	if len(c.Body()) > 0 {
		if err := parseBody(c, &req); err != nil {
			return badRequest(c, err.Error())
		}
	}

	conversationID := c.Params("applicationID")
	marker, err := h.messages.MarkRead(c.UserContext(), identity, conversationID, req.UptoSeq)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{"conversation_id": conversationID, "read_seq": marker})
}

// GetUnread 單一對話未讀數
// @Summary Conversation unread count
// @Tags Conversations
// @Produce json
// @Security BearerAuth
// @Param applicationID path string true "Job application id"
// @Success 200 {object} domain.UnreadInfo
// @Failure 403 {object} map[string]string
// @Router /conversations/{applicationID}/unread [get]
func (h *ConversationHandler) GetUnread(c *fiber.Ctx) error {
	identity, err := identityFrom(c)
	if err != nil {
		return errorResponse(c, err)
	}

	info, err := h.unread.ConversationUnread(c.UserContext(), identity, c.Params("applicationID"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(info)
}

// GetTotalUnread 未讀徽章
// @Summary Total unread badge
// @Description Sum of unread counts over every conversation of the caller
// @Tags Conversations
// @Produce json
// @Security BearerAuth
// @Success 200 {object} domain.UnreadSummary
// @Router /unread [get]
func (h *ConversationHandler) GetTotalUnread(c *fiber.Ctx) error {
	identity, err := identityFrom(c)
	if err != nil {
		return errorResponse(c, err)
	}

	summary, err := h.unread.TotalUnread(c.UserContext(), identity.MemberID)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(summary)
}
