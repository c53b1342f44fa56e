package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	// InsertIdempotent writes the record unless (call_id, role) already
	// exists. It reports whether a new row was inserted.
	InsertIdempotent(ctx context.Context, db *gorm.DB, record *CommissionRecord) (bool, error)
	FindByCallAndRole(ctx context.Context, db *gorm.DB, callID snowflake.ID, role Role) (*CommissionRecord, error)
	List(ctx context.Context, db *gorm.DB, filter ListCommissionFilter) ([]*CommissionRecord, error)
}
