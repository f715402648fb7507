package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/vivaha/backend/internal/middleware"
	"github.com/vivaha/backend/internal/models"
	"github.com/vivaha/backend/internal/repository"
)

// AdminHandler serves the moderation console: browsing conversations and
// message history read-only, and working the report queue.
type AdminHandler struct {
	convRepo   *repository.ConversationRepository
	msgRepo    *repository.MessageRepository
	reportRepo *repository.ReportRepository
}

func NewAdminHandler(convRepo *repository.ConversationRepository, msgRepo *repository.MessageRepository, reportRepo *repository.ReportRepository) *AdminHandler {
	return &AdminHandler{convRepo: convRepo, msgRepo: msgRepo, reportRepo: reportRepo}
}

// ListConversations pages through all conversations with an id cursor and
// an optional name search.
func (h *AdminHandler) ListConversations(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	startAfter := c.Query("startAfter")
	search := c.Query("search")

	conversations, err := h.convRepo.List(c.Request.Context(), limit, startAfter, search)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "Failed to load conversations")
		return
	}

	OK(c, http.StatusOK, conversations)
}

// GetConversationMessages returns a conversation's full message history.
// Read-only; viewing never touches read state or unread counters.
func (h *AdminHandler) GetConversationMessages(c *gin.Context) {
	conversationID := c.Param("id")

	messages, err := h.msgRepo.GetByConversationID(c.Request.Context(), conversationID, 0)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "Failed to load messages")
		return
	}

	OK(c, http.StatusOK, messages)
}

// ListReports returns a page of the report queue, newest first, optionally
// filtered by status and reason.
func (h *AdminHandler) ListReports(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))

	var status *models.ReportStatus
	if raw := c.Query("status"); raw != "" {
		s := models.ReportStatus(raw)
		if !s.IsValid() {
			ErrorResponse(c, http.StatusBadRequest, "Invalid report status")
			return
		}
		status = &s
	}

	var reason *models.ReportReason
	if raw := c.Query("reason"); raw != "" {
		r := models.ReportReason(raw)
		if !r.IsValid() {
			ErrorResponse(c, http.StatusBadRequest, "Invalid report reason")
			return
		}
		reason = &r
	}

	result, err := h.reportRepo.List(page, pageSize, status, reason)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "Failed to load reports")
		return
	}

	OK(c, http.StatusOK, result)
}

// ReviewReport applies a partial status/notes update and records which admin
// reviewed it.
func (h *AdminHandler) ReviewReport(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid report id")
		return
	}

	var req models.UpdateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	if req.Status != nil && !req.Status.IsValid() {
		ErrorResponse(c, http.StatusBadRequest, "Invalid report status")
		return
	}

	report, err := h.reportRepo.Review(id, &req, middleware.AccountID(c))
	if err != nil {
		if errors.Is(err, repository.ErrReportNotFound) {
			ErrorResponse(c, http.StatusNotFound, "Report not found")
			return
		}
		ErrorResponse(c, http.StatusInternalServerError, "Failed to update report")
		return
	}

	OK(c, http.StatusOK, report)
}
