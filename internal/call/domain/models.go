package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// CallOutcome is the recorded result of a sales interaction.
type CallOutcome string

const (
	CallOutcomeInProgress CallOutcome = "in_progress"
	CallOutcomeSale       CallOutcome = "sale"
	CallOutcomeNoSale     CallOutcome = "no_sale"
)

// ApprovalStatus is the admin review state of a sale call. The status
// transitions exactly once, pending to approved or pending to rejected;
// both end states are terminal.
type ApprovalStatus string

const (
	ApprovalStatusPending  ApprovalStatus = "pending"
	ApprovalStatusApproved ApprovalStatus = "approved"
	ApprovalStatusRejected ApprovalStatus = "rejected"
)

// Call is a recorded sales interaction. LeadID, CloserID, and ProductID
// are weak references validated at the application layer.
type Call struct {
	ID             snowflake.ID    `gorm:"primaryKey" json:"id"`
	LeadID         *snowflake.ID   `gorm:"index" json:"lead_id,omitempty"`
	CloserID       snowflake.ID    `gorm:"not null;index" json:"closer_id"`
	ProductID      *snowflake.ID   `gorm:"index" json:"product_id,omitempty"`
	SaleValue      decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"sale_value"`
	Outcome        CallOutcome     `gorm:"type:text;not null;index" json:"outcome"`
	ApprovalStatus ApprovalStatus  `gorm:"type:text;not null;index;default:pending" json:"approval_status"`
	ApprovedBy     *snowflake.ID   `gorm:"index" json:"approved_by,omitempty"`
	ApprovedAt     *time.Time      `json:"approved_at,omitempty"`
	OccurredAt     time.Time       `gorm:"not null;index" json:"occurred_at"`
	CreatedAt      time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (Call) TableName() string { return "calls" }
