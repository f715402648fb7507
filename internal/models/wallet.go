package models

// TokenBalance is a member's spendable token count.
type TokenBalance struct {
	AccountID string `json:"accountId"`
	Balance   int    `json:"balance"`
}

// CreditTokensRequest grants tokens to a member, e.g. after a plan purchase
// is confirmed.
type CreditTokensRequest struct {
	AccountID string `json:"accountId" binding:"required"`
	Amount    int    `json:"amount" binding:"required,gt=0"`
}
