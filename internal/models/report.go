package models

import "time"

type ReportReason string

const (
	ReportReasonInappropriate ReportReason = "inappropriate"
	ReportReasonHarassment    ReportReason = "harassment"
	ReportReasonSpam          ReportReason = "spam"
	ReportReasonFakeProfile   ReportReason = "fake_profile"
	ReportReasonOther         ReportReason = "other"
)

func (r ReportReason) IsValid() bool {
	switch r {
	case ReportReasonInappropriate, ReportReasonHarassment, ReportReasonSpam,
		ReportReasonFakeProfile, ReportReasonOther:
		return true
	}
	return false
}

type ReportStatus string

const (
	ReportStatusPending     ReportStatus = "pending"
	ReportStatusReviewed    ReportStatus = "reviewed"
	ReportStatusActionTaken ReportStatus = "action_taken"
	ReportStatusDismissed   ReportStatus = "dismissed"
)

func (s ReportStatus) IsValid() bool {
	switch s {
	case ReportStatusPending, ReportStatusReviewed, ReportStatusActionTaken,
		ReportStatusDismissed:
		return true
	}
	return false
}

// ChatReport is a user-initiated complaint about a conversation. Reports are
// created pending, mutated only by admin review, never deleted.
type ChatReport struct {
	ID                int64        `json:"id" db:"id"`
	ConversationID    string       `json:"conversationId" db:"conversation_id"`
	ReporterAccountID string       `json:"reporterAccountId" db:"reporter_account_id"`
	ReportedAccountID string       `json:"reportedAccountId" db:"reported_account_id"`
	Reason            ReportReason `json:"reason" db:"reason"`
	Description       *string      `json:"description,omitempty" db:"description"`
	Status            ReportStatus `json:"status" db:"status"`
	AdminNotes        *string      `json:"adminNotes,omitempty" db:"admin_notes"`
	ReviewedBy        *string      `json:"reviewedBy,omitempty" db:"reviewed_by"`
	ReviewedAt        *time.Time   `json:"reviewedAt,omitempty" db:"reviewed_at"`
	CreatedAt         time.Time    `json:"createdAt" db:"created_at"`
}

type CreateReportRequest struct {
	Reason      ReportReason `json:"reason" binding:"required"`
	Description *string      `json:"description,omitempty"`
}

// UpdateReportRequest carries a partial admin review; nil fields are left
// unchanged.
type UpdateReportRequest struct {
	Status     *ReportStatus `json:"status,omitempty"`
	AdminNotes *string       `json:"adminNotes,omitempty"`
}

type ReportPage struct {
	Reports []ChatReport `json:"reports"`
	Total   int          `json:"total"`
}
