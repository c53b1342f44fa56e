package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	commissiondomain "github.com/sellside/closedesk/internal/commission/domain"
	"github.com/shopspring/decimal"
)

// CommissionRule binds a percentage rate to one (role, product line)
// pair. Only active rules participate in resolution.
type CommissionRule struct {
	ID          snowflake.ID          `gorm:"primaryKey" json:"id"`
	Role        commissiondomain.Role `gorm:"type:text;not null;index:ix_commission_rules_role_line,priority:1" json:"role"`
	ProductLine string                `gorm:"type:text;not null;index:ix_commission_rules_role_line,priority:2" json:"product_line"`
	Percentage  decimal.Decimal       `gorm:"type:numeric(7,4);not null" json:"percentage"`
	Active      bool                  `gorm:"not null;default:true" json:"active"`
	CreatedAt   time.Time             `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time             `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (CommissionRule) TableName() string { return "commission_rules" }

// CommissionRuleDefault is a versioned role-level fallback rate. It
// consolidates the rate constants that would otherwise be re-declared at
// every call site; resolution picks the highest version per role.
type CommissionRuleDefault struct {
	ID         snowflake.ID          `gorm:"primaryKey" json:"id"`
	Role       commissiondomain.Role `gorm:"type:text;not null;uniqueIndex:ux_commission_rule_defaults_role_version,priority:1" json:"role"`
	Percentage decimal.Decimal       `gorm:"type:numeric(7,4);not null" json:"percentage"`
	Version    int                   `gorm:"not null;uniqueIndex:ux_commission_rule_defaults_role_version,priority:2" json:"version"`
	CreatedAt  time.Time             `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (CommissionRuleDefault) TableName() string { return "commission_rule_defaults" }
