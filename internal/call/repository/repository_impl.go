package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/sellside/closedesk/internal/call/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, call *domain.Call) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO calls (
			id, lead_id, closer_id, product_id, sale_value, outcome,
			approval_status, approved_by, approved_at, occurred_at, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		call.ID,
		call.LeadID,
		call.CloserID,
		call.ProductID,
		call.SaleValue,
		call.Outcome,
		call.ApprovalStatus,
		call.ApprovedBy,
		call.ApprovedAt,
		call.OccurredAt,
		call.CreatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Call, error) {
	var call domain.Call
	err := db.WithContext(ctx).Raw(
		`SELECT id, lead_id, closer_id, product_id, sale_value, outcome,
			approval_status, approved_by, approved_at, occurred_at, created_at
		 FROM calls WHERE id = ?`,
		id,
	).Scan(&call).Error
	if err != nil {
		return nil, err
	}
	if call.ID == 0 {
		return nil, nil
	}
	return &call, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListCallFilter) ([]*domain.Call, error) {
	var calls []*domain.Call
	stmt := db.WithContext(ctx).Model(&domain.Call{})

	if filter.Outcome != "" {
		stmt = stmt.Where("outcome = ?", filter.Outcome)
	}
	if filter.ApprovalStatus != "" {
		stmt = stmt.Where("approval_status = ?", filter.ApprovalStatus)
	}
	if filter.CloserID != "" {
		stmt = stmt.Where("closer_id = ?", filter.CloserID)
	}
	if filter.OccurredFrom != nil {
		stmt = stmt.Where("occurred_at >= ?", filter.OccurredFrom.UTC())
	}
	if filter.OccurredTo != nil {
		stmt = stmt.Where("occurred_at <= ?", filter.OccurredTo.UTC())
	}
	if filter.Cursor != nil {
		stmt = stmt.Where("(created_at < ?) OR (created_at = ? AND id < ?)",
			filter.Cursor.CreatedAt,
			filter.Cursor.CreatedAt,
			filter.Cursor.ID,
		)
	}

	stmt = stmt.Order("created_at desc, id desc")
	if filter.Limit > 0 {
		stmt = stmt.Limit(filter.Limit + 1)
	}

	if err := stmt.Find(&calls).Error; err != nil {
		return nil, err
	}
	return calls, nil
}

func (r *repo) TransitionStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, to domain.ApprovalStatus, approvedBy snowflake.ID, approvedAt time.Time) (bool, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE calls
		 SET approval_status = ?, approved_by = ?, approved_at = ?
		 WHERE id = ? AND approval_status = ? AND outcome = ?`,
		to,
		approvedBy,
		approvedAt.UTC(),
		id,
		domain.ApprovalStatusPending,
		domain.CallOutcomeSale,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
