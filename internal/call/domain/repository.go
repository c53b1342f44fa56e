package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, call *Call) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Call, error)
	List(ctx context.Context, db *gorm.DB, filter ListCallFilter) ([]*Call, error)

	// TransitionStatus flips approval_status with a compare-and-set guard
	// on the pending state. It reports whether this caller won the
	// transition; a false result means another transition already landed.
	TransitionStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, to ApprovalStatus, approvedBy snowflake.ID, approvedAt time.Time) (bool, error)
}
