package handlers

import (
	"github.com/gofiber/fiber/v2"
)

// AdminHandler operator 稽核與查詢
type AdminHandler struct {
	history HistoryService
}

// NewAdminHandler create AdminHandler
func NewAdminHandler(history HistoryService) *AdminHandler {
	return &AdminHandler{history: history}
}

// SearchJobPosts 以職缺標題查詢
// @Summary Search job posts by title
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param title query string true "title keyword"
// @Success 200 {array} domain.JobPost
// @Failure 403 {object} map[string]string
// @Router /admin/job-posts [get]
func (h *AdminHandler) SearchJobPosts(c *fiber.Ctx) error {
	identity, err := identityFrom(c)
	if err != nil {
		return errorResponse(c, err)
	}

	title := c.Query("title")
	if title == "" {
		return badRequest(c, "title is required")
	}

	posts, err := h.history.SearchJobPosts(c.UserContext(), identity, title)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(posts)
}

// ListApplicants 職缺的應徵者
// @Summary List applicants of a job post
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param jobPostID path string true "Job post id"
// @Success 200 {array} domain.ApplicantSummary
// @Failure 403 {object} map[string]string
// @Router /admin/job-posts/{jobPostID}/applicants [get]
func (h *AdminHandler) ListApplicants(c *fiber.Ctx) error {
	identity, err := identityFrom(c)
	if err != nil {
		return errorResponse(c, err)
	}

	applicants, err := h.history.ListApplicants(c.UserContext(), identity, c.Params("jobPostID"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(applicants)
}

// AuditHistory 稽核讀取, 不影響參與者的 read marker
// @Summary Audit conversation history
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param applicationID path string true "Job application id"
// @Param page query int false "page, from 1"
// @Param page_size query int false "page size"
// @Success 200 {object} domain.AuditPage
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /admin/conversations/{applicationID}/messages [get]
func (h *AdminHandler) AuditHistory(c *fiber.Ctx) error {
	identity, err := identityFrom(c)
	if err != nil {
		return errorResponse(c, err)
	}

	page, pageSize := pageQuery(c)
	result, err := h.history.AuditHistory(c.UserContext(), identity, c.Params("applicationID"), page, pageSize)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(result)
}

// ExportTranscript 匯出完整對話到 object storage
// @Summary Export conversation transcript
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param applicationID path string true "Job application id"
// @Success 200 {object} domain.TranscriptExport
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /admin/conversations/{applicationID}/export [post]
func (h *AdminHandler) ExportTranscript(c *fiber.Ctx) error {
	identity, err := identityFrom(c)
	if err != nil {
		return errorResponse(c, err)
	}

	export, err := h.history.ExportTranscript(c.UserContext(), identity, c.Params("applicationID"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(export)
}
