package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"jobboard_chat_service/internal/chat/domain"
	"jobboard_chat_service/pkg/logger"
	"jobboard_chat_service/pkg/middlewares"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

var validate = validator.New()

// MessageService write path used by the REST fallback
type MessageService interface {
	Append(ctx context.Context, sender domain.Identity, conversationID, recipientID, content string) (*domain.ChatMessage, error)
	MarkRead(ctx context.Context, reader domain.Identity, conversationID string, uptoSeq int64) (int64, error)
}

// UnreadService unread badge
type UnreadService interface {
	ConversationUnread(ctx context.Context, identity domain.Identity, conversationID string) (*domain.UnreadInfo, error)
	TotalUnread(ctx context.Context, userID string) (*domain.UnreadSummary, error)
}

// HistoryService read path and operator tools
type HistoryService interface {
	GetHistory(ctx context.Context, reader domain.Identity, conversationID string, page, pageSize int) (*domain.MessagePage, error)
	SearchJobPosts(ctx context.Context, operator domain.Identity, title string) ([]domain.JobPost, error)
	ListApplicants(ctx context.Context, operator domain.Identity, jobPostID string) ([]domain.ApplicantSummary, error)
	AuditHistory(ctx context.Context, operator domain.Identity, conversationID string, page, pageSize int) (*domain.AuditPage, error)
	ExportTranscript(ctx context.Context, operator domain.Identity, conversationID string) (*domain.TranscriptExport, error)
}

// BroadcastService one-to-many sends and bulk actions of a job post
type BroadcastService interface {
	BroadcastToApplicants(ctx context.Context, sender domain.Identity, jobPostID, content string) (domain.BroadcastResult, error)
	BroadcastToSelected(ctx context.Context, sender domain.Identity, jobPostID string, applicationIDs []string, content string) (domain.BroadcastResult, error)
	BulkRejectApplications(ctx context.Context, caller domain.Identity, jobPostID string, applicationIDs []string) (domain.BulkResult, error)
}

// ConnectCheck check api connect start
// @Summary Check chat service status
// @Description Returns a simple confirmation message
// @Tags Shared
// @Success 200 {string} string "chat service start!"
// @Router / [get]
func ConnectCheck(c *fiber.Ctx) error {
	return c.SendString("chat service start!")
}

// DebugLogFlag toggle debug log flag
// @Summary Toggle Debug Log Flag
// @Description Enable or disable debug logging
// @Tags Shared
// @Param service query string false "Service name"
// @Param status query bool true "Debug status"
// @Success 200 {string} string "Service debug mode updated"
// @Failure 400 {string} string "Invalid status value"
// @Router /debug [post]
func DebugLogFlag(c *fiber.Ctx) error {
	query, err := url.ParseQuery(string(c.Context().QueryArgs().QueryString()))
	if err != nil {
		return c.SendStatus(fiber.StatusBadRequest)
	}
	service := query.Get("service")
	statusStr := query.Get("status")
	logger.Log.Info("debug", zap.String("status", statusStr))
	status, err := strconv.ParseBool(statusStr)
	if err != nil {
		return c.SendStatus(fiber.StatusBadRequest)
	}

	logger.Log.SetDebugMode(status)
	return c.SendString(fmt.Sprintf("service[%s]: debug mode is : %t", service, status))
}

// identityFrom JWTMiddleware 寫入的 locals
func identityFrom(c *fiber.Ctx) (domain.Identity, error) {
	memberID, _ := c.Locals(middlewares.TokenMemberID).(string)
	if memberID == "" {
		return domain.Identity{}, domain.ErrUnauthorized
	}
	role, _ := c.Locals(middlewares.TokenRole).(string)
	return domain.Identity{MemberID: memberID, Role: role}, nil
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		return fiber.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, domain.ErrInvalidConversation), errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrConversationClosed):
		return fiber.StatusConflict
	case errors.Is(err, domain.ErrInvalidMessage):
		return fiber.StatusBadRequest
	}
	return fiber.StatusInternalServerError
}

// errorResponse storage 錯誤不把細節回給 client
func errorResponse(c *fiber.Ctx, err error) error {
	status := statusOf(err)
	if status == fiber.StatusInternalServerError {
		logger.Log.Error("request failed",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(err))
	}
	return c.Status(status).JSON(fiber.Map{"error": domain.ErrorCode(err)})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}

// parseBody BodyParser + validator, 回傳的 error 直接當 400 訊息
func parseBody(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		return errors.New("invalid request")
	}
	return validate.Struct(out)
}

func pageQuery(c *fiber.Ctx) (int, int) {
	return c.QueryInt("page", 1), c.QueryInt("page_size", domain.DefaultPageSize)
}
