package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/sellside/closedesk/internal/commission/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) InsertIdempotent(ctx context.Context, db *gorm.DB, record *domain.CommissionRecord) (bool, error) {
	result := db.WithContext(ctx).Exec(
		`INSERT INTO commission_records (
			id, call_id, role, beneficiary_id, sale_value, percentage,
			amount, status, product_line, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (call_id, role) DO NOTHING`,
		record.ID,
		record.CallID,
		record.Role,
		record.BeneficiaryID,
		record.SaleValue,
		record.Percentage,
		record.Amount,
		record.Status,
		record.ProductLine,
		record.CreatedAt,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repo) FindByCallAndRole(ctx context.Context, db *gorm.DB, callID snowflake.ID, role domain.Role) (*domain.CommissionRecord, error) {
	var record domain.CommissionRecord
	err := db.WithContext(ctx).Raw(
		`SELECT id, call_id, role, beneficiary_id, sale_value, percentage,
			amount, status, product_line, created_at
		 FROM commission_records WHERE call_id = ? AND role = ?`,
		callID,
		role,
	).Scan(&record).Error
	if err != nil {
		return nil, err
	}
	if record.ID == 0 {
		return nil, nil
	}
	return &record, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListCommissionFilter) ([]*domain.CommissionRecord, error) {
	var records []*domain.CommissionRecord
	stmt := db.WithContext(ctx).Model(&domain.CommissionRecord{})

	if filter.CallID != "" {
		stmt = stmt.Where("call_id = ?", filter.CallID)
	}
	if filter.BeneficiaryID != "" {
		stmt = stmt.Where("beneficiary_id = ?", filter.BeneficiaryID)
	}
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	if filter.CreatedFrom != nil {
		stmt = stmt.Where("created_at >= ?", filter.CreatedFrom.UTC())
	}
	if filter.CreatedTo != nil {
		stmt = stmt.Where("created_at <= ?", filter.CreatedTo.UTC())
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

	if err := stmt.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}
