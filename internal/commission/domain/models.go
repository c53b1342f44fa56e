package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// Role identifies which side of a sale a commission rewards.
type Role string

const (
	RoleOriginator Role = "originator"
	RoleCloser     Role = "closer"
)

// CommissionStatus is the payout lifecycle of a record. "paid" is set by
// an external payout process; this service only ever writes "pending".
type CommissionStatus string

const (
	CommissionStatusPending   CommissionStatus = "pending"
	CommissionStatusPaid      CommissionStatus = "paid"
	CommissionStatusCancelled CommissionStatus = "cancelled"
)

// CommissionRecord is a derived financial entitlement tied to one call
// and one role. The (call_id, role) pair is the idempotency key, enforced
// by a unique index independent of any referential constraint. The sale
// value is denormalized so the row stays auditable even if the call is
// later amended.
type CommissionRecord struct {
	ID            snowflake.ID     `gorm:"primaryKey" json:"id"`
	CallID        snowflake.ID     `gorm:"not null;index;uniqueIndex:ux_commission_records_call_role,priority:1" json:"call_id"`
	Role          Role             `gorm:"type:text;not null;uniqueIndex:ux_commission_records_call_role,priority:2" json:"role"`
	BeneficiaryID snowflake.ID     `gorm:"not null;index" json:"beneficiary_id"`
	SaleValue     decimal.Decimal  `gorm:"type:numeric(14,2);not null" json:"sale_value"`
	Percentage    decimal.Decimal  `gorm:"type:numeric(7,4);not null" json:"percentage"`
	Amount        decimal.Decimal  `gorm:"type:numeric(14,2);not null" json:"amount"`
	Status        CommissionStatus `gorm:"type:text;not null;index;default:pending" json:"status"`
	ProductLine   string           `gorm:"type:text;not null" json:"product_line"`
	CreatedAt     time.Time        `gorm:"not null;default:CURRENT_TIMESTAMP;index" json:"created_at"`
}

// TableName sets the database table name.
func (CommissionRecord) TableName() string { return "commission_records" }
