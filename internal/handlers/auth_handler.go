package handlers

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/vivaha/backend/internal/auth"
	"github.com/vivaha/backend/internal/cache"
	"github.com/vivaha/backend/internal/middleware"
	"github.com/vivaha/backend/internal/models"
	"github.com/vivaha/backend/internal/repository"
)

type AuthHandler struct {
	accountRepo *repository.AccountRepository
	jwtService  *auth.JWTService
	redisClient *cache.RedisClient
}

func NewAuthHandler(accountRepo *repository.AccountRepository, jwtService *auth.JWTService, redisClient *cache.RedisClient) *AuthHandler {
	return &AuthHandler{
		accountRepo: accountRepo,
		jwtService:  jwtService,
		redisClient: redisClient,
	}
}

// generateAccountID mints the public member handle shown to other users,
// e.g. VM3F9A21C4. The internal uuid never leaves the database layer.
func generateAccountID() string {
	return "VM" + strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8])
}

// Register handles account registration
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	if _, err := h.accountRepo.GetByEmail(req.Email); err == nil {
		ErrorResponse(c, http.StatusConflict, "Email already registered")
		return
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "Failed to hash password")
		return
	}

	account := &models.Account{
		ID:           uuid.New(),
		AccountID:    generateAccountID(),
		Email:        req.Email,
		DisplayName:  req.DisplayName,
		PhotoURL:     req.PhotoURL,
		PasswordHash: hashedPassword,
		Role:         models.RoleUser,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if err := account.Validate(); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.accountRepo.Create(account); err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "Failed to create account")
		return
	}

	token, err := h.jwtService.GenerateToken(account.ID, account.AccountID, account.Email, account.Role)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	if err := h.storeSession(token, account); err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "Failed to create session")
		return
	}

	OK(c, http.StatusCreated, models.LoginResponse{Token: token, Account: *account})
}

// Login handles account login
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	account, err := h.accountRepo.GetByEmail(req.Email)
	if err != nil {
		ErrorResponse(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	if err := auth.CheckPassword(account.PasswordHash, req.Password); err != nil {
		ErrorResponse(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := h.jwtService.GenerateToken(account.ID, account.AccountID, account.Email, account.Role)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	if err := h.storeSession(token, account); err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "Failed to create session")
		return
	}

	OK(c, http.StatusOK, models.LoginResponse{Token: token, Account: *account})
}

// Logout clears the server-side session for the presented token. The JWT
// itself stays valid until expiry; the session record is what the realtime
// layer and clients key off.
func (h *AuthHandler) Logout(c *gin.Context) {
	tokenValue, _ := c.Get(middleware.ContextToken)
	token, _ := tokenValue.(string)

	if h.redisClient != nil && token != "" {
		if err := h.redisClient.ClearSession(token); err != nil {
			log.Printf("failed to clear session: %v", err)
		}
	}

	OK(c, http.StatusOK, nil)
}

// GetMe returns the current account
func (h *AuthHandler) GetMe(c *gin.Context) {
	userIDValue, _ := c.Get(middleware.ContextUserID)
	userID, ok := userIDValue.(uuid.UUID)
	if !ok {
		ErrorResponse(c, http.StatusUnauthorized, "Invalid session")
		return
	}

	account, err := h.accountRepo.GetByID(userID)
	if err != nil {
		ErrorResponse(c, http.StatusNotFound, "Account not found")
		return
	}

	OK(c, http.StatusOK, account)
}

// storeSession persists the server-side session the auth middleware checks.
// When redis is down entirely the middleware runs on the JWT alone, so a
// missing store is fine; a failing store is not, because the middleware
// would then treat every request as logged out.
func (h *AuthHandler) storeSession(token string, account *models.Account) error {
	if h.redisClient == nil {
		return nil
	}
	session := cache.Session{
		Token:     token,
		UserID:    account.ID.String(),
		AccountID: account.AccountID,
		UserInfo:  account.DisplayName,
	}
	return h.redisClient.SetSession(session, h.jwtService.TokenTTL())
}
