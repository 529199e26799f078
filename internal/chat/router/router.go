package router

import (
	"context"

	"jobboard_chat_service/internal/chat/app"
	"jobboard_chat_service/internal/chat/handlers"
	"jobboard_chat_service/pkg/middlewares"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/gofiber/websocket/v2"
)

// Handlers everything RegisterRoutes mounts
type Handlers struct {
	Websocket     *app.ChatWebsocketHandler
	Conversations *handlers.ConversationHandler
	Broadcast     *handlers.BroadcastHandler
	Admin         *handlers.AdminHandler
}

// RegisterRoutes 注册聊天服務的路由, ctx 結束時 websocket session 一併結束
// @title Job Board Chat Service API
// @version 1.0
// @description Applicant and employer messaging over job applications
// @host localhost:8082
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func RegisterRoutes(ctx context.Context, r *fiber.App, h Handlers) {
	r.Get("/swagger/*", swagger.HandlerDefault)
	r.Get("/", handlers.ConnectCheck)
	r.Post("/debug", handlers.DebugLogFlag)

	// 以下都需要 token, websocket 在升級前驗證
	r.Use(middlewares.JWTMiddleware())

	r.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	r.Get("/ws", websocket.New(func(c *websocket.Conn) {
		h.Websocket.HandleConnection(ctx, c)
	}))

	r.Get("/unread", h.Conversations.GetTotalUnread)

	conversations := r.Group("/conversations/:applicationID")
	conversations.Post("/messages", h.Conversations.SendMessage)
	conversations.Get("/messages", h.Conversations.GetMessages)
	conversations.Post("/read", h.Conversations.MarkRead)
	conversations.Get("/unread", h.Conversations.GetUnread)

	jobPosts := r.Group("/job-posts/:jobPostID")
	jobPosts.Post("/broadcast", h.Broadcast.BroadcastAll)
	jobPosts.Post("/broadcast/selected", h.Broadcast.BroadcastSelected)
	jobPosts.Post("/applications/reject", h.Broadcast.BulkReject)

	admin := r.Group("/admin")
	admin.Get("/job-posts", h.Admin.SearchJobPosts)
	admin.Get("/job-posts/:jobPostID/applicants", h.Admin.ListApplicants)
	admin.Get("/conversations/:applicationID/messages", h.Admin.AuditHistory)
	admin.Post("/conversations/:applicationID/export", h.Admin.ExportTranscript)
}
