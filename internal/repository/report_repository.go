package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/vivaha/backend/internal/database"
	"github.com/vivaha/backend/internal/models"
)

var ErrReportNotFound = fmt.Errorf("report not found")

type ReportRepository struct {
	db *database.DB
}

func NewReportRepository(db *database.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// Create inserts a new report. Status always starts pending regardless of
// what the caller set.
func (r *ReportRepository) Create(report *models.ChatReport) error {
	report.Status = models.ReportStatusPending

	query := `
		INSERT INTO chat_reports (conversation_id, reporter_account_id, reported_account_id, reason, description, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING id, created_at
	`

	err := r.db.QueryRow(
		query,
		report.ConversationID,
		report.ReporterAccountID,
		report.ReportedAccountID,
		report.Reason,
		report.Description,
		report.Status,
	).Scan(&report.ID, &report.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}

	return nil
}

// GetByID retrieves a report by ID
func (r *ReportRepository) GetByID(id int64) (*models.ChatReport, error) {
	query := `
		SELECT id, conversation_id, reporter_account_id, reported_account_id, reason, description, status, admin_notes, reviewed_by, reviewed_at, created_at
		FROM chat_reports
		WHERE id = $1
	`

	report := &models.ChatReport{}
	err := r.db.QueryRow(query, id).Scan(
		&report.ID,
		&report.ConversationID,
		&report.ReporterAccountID,
		&report.ReportedAccountID,
		&report.Reason,
		&report.Description,
		&report.Status,
		&report.AdminNotes,
		&report.ReviewedBy,
		&report.ReviewedAt,
		&report.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrReportNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}

	return report, nil
}

// List returns one page of reports plus the total matching count. Status
// filters when set; page is 1-based.
func (r *ReportRepository) List(page, pageSize int, status *models.ReportStatus, reason *models.ReportReason) (*models.ReportPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	countQuery := `
		SELECT COUNT(*) FROM chat_reports
		WHERE ($1::text IS NULL OR status = $1)
		  AND ($2::text IS NULL OR reason = $2)
	`
	var total int
	if err := r.db.QueryRow(countQuery, status, reason).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count reports: %w", err)
	}

	query := `
		SELECT id, conversation_id, reporter_account_id, reported_account_id, reason, description, status, admin_notes, reviewed_by, reviewed_at, created_at
		FROM chat_reports
		WHERE ($1::text IS NULL OR status = $1)
		  AND ($2::text IS NULL OR reason = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`

	rows, err := r.db.Query(query, status, reason, pageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()

	reports := []models.ChatReport{}
	for rows.Next() {
		var report models.ChatReport
		err := rows.Scan(
			&report.ID,
			&report.ConversationID,
			&report.ReporterAccountID,
			&report.ReportedAccountID,
			&report.Reason,
			&report.Description,
			&report.Status,
			&report.AdminNotes,
			&report.ReviewedBy,
			&report.ReviewedAt,
			&report.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		reports = append(reports, report)
	}

	return &models.ReportPage{Reports: reports, Total: total}, nil
}

// Review applies a partial admin update: nil fields are left unchanged. A
// status change records the reviewer and review time.
func (r *ReportRepository) Review(id int64, req *models.UpdateReportRequest, reviewedBy string) (*models.ChatReport, error) {
	var reviewedAt *time.Time
	if req.Status != nil {
		now := time.Now()
		reviewedAt = &now
	}

	query := `
		UPDATE chat_reports
		SET status = COALESCE($2, status),
		    admin_notes = COALESCE($3, admin_notes),
		    reviewed_by = CASE WHEN $4::timestamp IS NULL THEN reviewed_by ELSE $5 END,
		    reviewed_at = COALESCE($4, reviewed_at)
		WHERE id = $1
	`

	result, err := r.db.Exec(query, id, req.Status, req.AdminNotes, reviewedAt, reviewedBy)
	if err != nil {
		return nil, fmt.Errorf("failed to update report: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return nil, ErrReportNotFound
	}

	return r.GetByID(id)
}
