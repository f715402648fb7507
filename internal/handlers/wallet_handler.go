package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vivaha/backend/internal/middleware"
	"github.com/vivaha/backend/internal/models"
	"github.com/vivaha/backend/internal/repository"
)

// WalletHandler serves the token wallet: members read their balance, the
// billing backoffice credits tokens when a plan purchase is confirmed.
type WalletHandler struct {
	walletRepo  *repository.WalletRepository
	accountRepo *repository.AccountRepository
}

func NewWalletHandler(walletRepo *repository.WalletRepository, accountRepo *repository.AccountRepository) *WalletHandler {
	return &WalletHandler{walletRepo: walletRepo, accountRepo: accountRepo}
}

// GetBalance returns the caller's token balance.
func (h *WalletHandler) GetBalance(c *gin.Context) {
	accountID := middleware.AccountID(c)

	balance, err := h.walletRepo.Balance(accountID)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "Failed to load balance")
		return
	}

	OK(c, http.StatusOK, models.TokenBalance{AccountID: accountID, Balance: balance})
}

// CreditTokens grants tokens to a member and returns the new balance.
func (h *WalletHandler) CreditTokens(c *gin.Context) {
	var req models.CreditTokensRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	if _, err := h.accountRepo.GetByAccountID(req.AccountID); err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			ErrorResponse(c, http.StatusNotFound, "Member not found")
			return
		}
		ErrorResponse(c, http.StatusInternalServerError, "Failed to load member")
		return
	}

	if err := h.walletRepo.Credit(req.AccountID, req.Amount); err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "Failed to credit tokens")
		return
	}

	balance, err := h.walletRepo.Balance(req.AccountID)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "Failed to load balance")
		return
	}

	OK(c, http.StatusOK, models.TokenBalance{AccountID: req.AccountID, Balance: balance})
}
