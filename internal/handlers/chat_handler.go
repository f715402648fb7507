package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/vivaha/backend/internal/cache"
	"github.com/vivaha/backend/internal/middleware"
	"github.com/vivaha/backend/internal/models"
	"github.com/vivaha/backend/internal/repository"
	"github.com/vivaha/backend/internal/upload"
)

type ChatHandler struct {
	convRepo    *repository.ConversationRepository
	msgRepo     *repository.MessageRepository
	reportRepo  *repository.ReportRepository
	walletRepo  *repository.WalletRepository
	accountRepo *repository.AccountRepository
	imageStore  *upload.ImageStore
	redisClient *cache.RedisClient

	uploadRatePerMin int
}

func NewChatHandler(convRepo *repository.ConversationRepository, msgRepo *repository.MessageRepository, reportRepo *repository.ReportRepository, walletRepo *repository.WalletRepository, accountRepo *repository.AccountRepository, imageStore *upload.ImageStore, redisClient *cache.RedisClient, uploadRatePerMin int) *ChatHandler {
	return &ChatHandler{
		convRepo:         convRepo,
		msgRepo:          msgRepo,
		reportRepo:       reportRepo,
		walletRepo:       walletRepo,
		accountRepo:      accountRepo,
		imageStore:       imageStore,
		redisClient:      redisClient,
		uploadRatePerMin: uploadRatePerMin,
	}
}

// ensureUnlocked spends tokens on first contact with another member. It
// writes the error response itself and returns false when the caller must
// stop; an empty balance maps to INSUFFICIENT_TOKENS for the client upsell.
func (h *ChatHandler) ensureUnlocked(c *gin.Context, accountID, otherID string) bool {
	unlocked, err := h.walletRepo.IsUnlocked(accountID, otherID)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "Failed to check contact status")
		return false
	}
	if unlocked {
		return true
	}
	if err := h.walletRepo.SpendForUnlock(accountID, otherID); err != nil {
		if errors.Is(err, repository.ErrInsufficientTokens) {
			CodedErrorResponse(c, http.StatusPaymentRequired, models.CodeInsufficientTokens, "Insufficient tokens to message this member")
			return false
		}
		ErrorResponse(c, http.StatusInternalServerError, "Failed to unlock contact")
		return false
	}
	return true
}

// StartConversation opens the thread with another member, creating both
// parties' summary documents. First contact spends tokens through the same
// gate as sending. Re-opening an existing thread returns it unchanged.
func (h *ChatHandler) StartConversation(c *gin.Context) {
	var req models.StartConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	accountID := middleware.AccountID(c)
	if req.OtherUserID == accountID {
		ErrorResponse(c, http.StatusBadRequest, "Cannot open a conversation with yourself")
		return
	}

	other, err := h.accountRepo.GetByAccountID(req.OtherUserID)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			ErrorResponse(c, http.StatusNotFound, "Member not found")
			return
		}
		ErrorResponse(c, http.StatusInternalServerError, "Failed to load member")
		return
	}

	conversationID := models.PairConversationID(accountID, req.OtherUserID)

	existing, err := h.convRepo.Get(c.Request.Context(), accountID, conversationID)
	if err == nil {
		OK(c, http.StatusOK, existing)
		return
	}
	if !errors.Is(err, repository.ErrConversationNotFound) {
		ErrorResponse(c, http.StatusInternalServerError, "Failed to load conversation")
		return
	}

	if !h.ensureUnlocked(c, accountID, req.OtherUserID) {
		return
	}

	caller, err := h.accountRepo.GetByAccountID(accountID)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "Failed to load account")
		return
	}

	now := time.Now()
	mine := &models.Conversation{
		ConversationID: conversationID,
		OwnerID:        accountID,
		OtherUserID:    other.AccountID,
		OtherUserName:  other.DisplayName,
		OtherUserPhoto: other.PhotoURL,
		CreatedAt:      now,
	}
	theirs := &models.Conversation{
		ConversationID: conversationID,
		OwnerID:        other.AccountID,
		OtherUserID:    caller.AccountID,
		OtherUserName:  caller.DisplayName,
		OtherUserPhoto: caller.PhotoURL,
		CreatedAt:      now,
	}

	if err := h.convRepo.Upsert(c.Request.Context(), mine); err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "Failed to create conversation")
		return
	}
	if err := h.convRepo.Upsert(c.Request.Context(), theirs); err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "Failed to create conversation")
		return
	}

	h.publishChange(conversationID, accountID, other.AccountID)

	OK(c, http.StatusCreated, mine)
}

// publishChange notifies the realtime layer. Best-effort: a dropped event
// only delays the push until the next change.
func (h *ChatHandler) publishChange(conversationID string, userIDs ...string) {
	if h.redisClient == nil {
		return
	}
	event := models.ChangeEvent{ConversationID: conversationID, UserIDs: userIDs}
	if err := h.redisClient.PublishChange(event); err != nil {
		log.Printf("failed to publish change event: %v", err)
	}
}

func messagePreview(msg *models.Message) string {
	switch msg.Type {
	case models.MessageTypeImage:
		return "📷 Photo"
	case models.MessageTypeDocument:
		return "📄 Document"
	}
	return msg.Text
}

// SendMessage persists a message after the membership and token checks pass.
// The first message to a locked member spends tokens to unlock the contact;
// an empty balance fails with INSUFFICIENT_TOKENS so clients can upsell
// instead of showing a generic error.
func (h *ChatHandler) SendMessage(c *gin.Context) {
	var req models.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	if !req.Type.IsValid() {
		ErrorResponse(c, http.StatusBadRequest, "Invalid message type")
		return
	}

	accountID := middleware.AccountID(c)

	conv, err := h.convRepo.Get(c.Request.Context(), accountID, req.ConversationID)
	if err != nil {
		if errors.Is(err, repository.ErrConversationNotFound) {
			ErrorResponse(c, http.StatusNotFound, "Conversation not found")
			return
		}
		ErrorResponse(c, http.StatusInternalServerError, "Failed to load conversation")
		return
	}
	receiverID := conv.OtherUserID

	if !h.ensureUnlocked(c, accountID, receiverID) {
		return
	}

	deviceType := req.DeviceType
	if deviceType == "" {
		deviceType = "web"
	}

	msg := &models.Message{
		MessageID:      uuid.New().String(),
		ConversationID: req.ConversationID,
		SenderID:       accountID,
		ReceiverID:     receiverID,
		Text:           req.Text,
		Type:           req.Type,
		ImageURL:       req.ImageURL,
		Timestamp:      time.Now(),
		DeviceType:     deviceType,
	}
	if err := msg.Validate(); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.msgRepo.Insert(c.Request.Context(), msg); err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "Failed to send message")
		return
	}

	if err := h.convRepo.ApplyMessage(c.Request.Context(), req.ConversationID, accountID, receiverID, messagePreview(msg), msg.Timestamp); err != nil {
		log.Printf("failed to update conversation previews: %v", err)
	}

	h.publishChange(req.ConversationID, accountID, receiverID)

	OK(c, http.StatusCreated, msg)
}

// MarkConversationRead marks every unread incoming message read and resets
// the caller's unread counter. Idempotent; re-marking a read conversation
// succeeds with zero updates.
func (h *ChatHandler) MarkConversationRead(c *gin.Context) {
	conversationID := c.Param("id")
	accountID := middleware.AccountID(c)

	member, err := h.convRepo.IsParticipant(c.Request.Context(), accountID, conversationID)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "Failed to load conversation")
		return
	}
	if !member {
		ErrorResponse(c, http.StatusNotFound, "Conversation not found")
		return
	}

	updated, err := h.msgRepo.MarkConversationRead(c.Request.Context(), conversationID, accountID)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "Failed to mark conversation read")
		return
	}

	if err := h.convRepo.ResetUnread(c.Request.Context(), accountID, conversationID); err != nil {
		log.Printf("failed to reset unread count: %v", err)
	}

	if updated > 0 {
		h.publishChange(conversationID, accountID)
	}

	OK(c, http.StatusOK, gin.H{"updated": updated})
}

// UploadImage stores a base64 data-URL image and returns its serving URL.
// The message referencing the URL is sent separately.
func (h *ChatHandler) UploadImage(c *gin.Context) {
	var req models.UploadImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	accountID := middleware.AccountID(c)

	if h.redisClient != nil {
		allowed, err := h.redisClient.AllowAction(accountID, "upload-image", h.uploadRatePerMin, h.uploadRatePerMin)
		if err == nil && !allowed {
			ErrorResponse(c, http.StatusTooManyRequests, "Too many uploads, slow down")
			return
		}
	}

	member, err := h.convRepo.IsParticipant(c.Request.Context(), accountID, req.ConversationID)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "Failed to load conversation")
		return
	}
	if !member {
		ErrorResponse(c, http.StatusNotFound, "Conversation not found")
		return
	}

	imageURL, err := h.imageStore.Save(req.Image)
	if err != nil {
		switch {
		case errors.Is(err, upload.ErrNotAnImage):
			ErrorResponse(c, http.StatusBadRequest, "Only image files can be uploaded")
		case errors.Is(err, upload.ErrTooLarge):
			ErrorResponse(c, http.StatusBadRequest, "Image is too large")
		case errors.Is(err, upload.ErrBadDataURL):
			ErrorResponse(c, http.StatusBadRequest, "Malformed image data")
		default:
			ErrorResponse(c, http.StatusInternalServerError, "Failed to upload image")
		}
		return
	}

	OK(c, http.StatusCreated, gin.H{"imageUrl": imageURL})
}

// ReportConversation files a report against the other participant for the
// moderation queue.
func (h *ChatHandler) ReportConversation(c *gin.Context) {
	conversationID := c.Param("id")
	accountID := middleware.AccountID(c)

	var req models.CreateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	if !req.Reason.IsValid() {
		ErrorResponse(c, http.StatusBadRequest, "Invalid report reason")
		return
	}

	conv, err := h.convRepo.Get(c.Request.Context(), accountID, conversationID)
	if err != nil {
		if errors.Is(err, repository.ErrConversationNotFound) {
			ErrorResponse(c, http.StatusNotFound, "Conversation not found")
			return
		}
		ErrorResponse(c, http.StatusInternalServerError, "Failed to load conversation")
		return
	}

	report := &models.ChatReport{
		ConversationID:    conversationID,
		ReporterAccountID: accountID,
		ReportedAccountID: conv.OtherUserID,
		Reason:            req.Reason,
		Description:       req.Description,
	}
	if err := h.reportRepo.Create(report); err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "Failed to submit report")
		return
	}

	OK(c, http.StatusCreated, report)
}

// DeleteConversation removes the caller's copy of the conversation. The
// other participant keeps theirs; message documents stay for moderation.
func (h *ChatHandler) DeleteConversation(c *gin.Context) {
	conversationID := c.Param("id")
	accountID := middleware.AccountID(c)

	if err := h.convRepo.Delete(c.Request.Context(), accountID, conversationID); err != nil {
		if errors.Is(err, repository.ErrConversationNotFound) {
			ErrorResponse(c, http.StatusNotFound, "Conversation not found")
			return
		}
		ErrorResponse(c, http.StatusInternalServerError, "Failed to delete conversation")
		return
	}

	h.publishChange(conversationID, accountID)

	OK(c, http.StatusOK, nil)
}

// GetConversations returns the caller's conversation list once, for clients
// without a live connection. The realtime layer pushes the same snapshot.
func (h *ChatHandler) GetConversations(c *gin.Context) {
	accountID := middleware.AccountID(c)

	conversations, err := h.convRepo.GetByOwner(c.Request.Context(), accountID)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "Failed to load conversations")
		return
	}

	OK(c, http.StatusOK, conversations)
}

// GetMessages returns one conversation's messages oldest first.
func (h *ChatHandler) GetMessages(c *gin.Context) {
	conversationID := c.Param("id")
	accountID := middleware.AccountID(c)

	member, err := h.convRepo.IsParticipant(c.Request.Context(), accountID, conversationID)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "Failed to load conversation")
		return
	}
	if !member {
		ErrorResponse(c, http.StatusNotFound, "Conversation not found")
		return
	}

	messages, err := h.msgRepo.GetByConversationID(c.Request.Context(), conversationID, 0)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "Failed to load messages")
		return
	}

	OK(c, http.StatusOK, messages)
}
