package handlers

import (
	"github.com/gofiber/fiber/v2"
)

// BroadcastHandler job post 層級的群發與批次操作
type BroadcastHandler struct {
	broadcast BroadcastService
}

// NewBroadcastHandler create BroadcastHandler
func NewBroadcastHandler(broadcast BroadcastService) *BroadcastHandler {
	return &BroadcastHandler{broadcast: broadcast}
}

// BroadcastRequest body of POST /job-posts/:jobPostID/broadcast
type BroadcastRequest struct {
	Content string `json:"content" validate:"required"`
}

// SelectedBroadcastRequest body of POST /job-posts/:jobPostID/broadcast/selected
type SelectedBroadcastRequest struct {
	ApplicationIDs []string `json:"application_ids" validate:"required,min=1,dive,required"`
	Content        string   `json:"content" validate:"required"`
}

// BulkRejectRequest body of POST /job-posts/:jobPostID/applications/reject
type BulkRejectRequest struct {
	ApplicationIDs []string `json:"application_ids" validate:"required,min=1,dive,required"`
}

// BroadcastAll 群發給職缺的所有應徵者
// @Summary Broadcast to all applicants
// @Description Send one message into every conversation of the job post, closed conversations count as failed
// @Tags Broadcast
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param jobPostID path string true "Job post id"
// @Param request body BroadcastRequest true "message"
// @Success 200 {object} domain.BroadcastResult
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /job-posts/{jobPostID}/broadcast [post]
func (h *BroadcastHandler) BroadcastAll(c *fiber.Ctx) error {
	identity, err := identityFrom(c)
	if err != nil {
		return errorResponse(c, err)
	}

	var req BroadcastRequest
	if err := parseBody(c, &req); err != nil {
		return badRequest(c, err.Error())
	}

	result, err := h.broadcast.BroadcastToApplicants(c.UserContext(), identity, c.Params("jobPostID"), req.Content)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(result)
}

// BroadcastSelected 群發給選定的應徵
// @Summary Broadcast to selected applications
// @Tags Broadcast
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param jobPostID path string true "Job post id"
// @Param request body SelectedBroadcastRequest true "targets and message"
// @Success 200 {object} domain.BroadcastResult
// @Failure 400 {object} map[string]string
// @Router /job-posts/{jobPostID}/broadcast/selected [post]
func (h *BroadcastHandler) BroadcastSelected(c *fiber.Ctx) error {
	identity, err := identityFrom(c)
	if err != nil {
		return errorResponse(c, err)
	}

	var req SelectedBroadcastRequest
	if err := parseBody(c, &req); err != nil {
		return badRequest(c, err.Error())
	}

	result, err := h.broadcast.BroadcastToSelected(c.UserContext(), identity, c.Params("jobPostID"), req.ApplicationIDs, req.Content)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(result)
}

// BulkReject 批次拒絕應徵並關閉對話
// @Summary Bulk reject applications
// @Tags Broadcast
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param jobPostID path string true "Job post id"
// @Param request body BulkRejectRequest true "applications"
// @Success 200 {object} domain.BulkResult
// @Failure 400 {object} map[string]string
// @Router /job-posts/{jobPostID}/applications/reject [post]
func (h *BroadcastHandler) BulkReject(c *fiber.Ctx) error {
	identity, err := identityFrom(c)
	if err != nil {
		return errorResponse(c, err)
	}

	var req BulkRejectRequest
	if err := parseBody(c, &req); err != nil {
		return badRequest(c, err.Error())
	}

	result, err := h.broadcast.BulkRejectApplications(c.UserContext(), identity, c.Params("jobPostID"), req.ApplicationIDs)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(result)
}
