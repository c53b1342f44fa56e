package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	commissiondomain "github.com/sellside/closedesk/internal/commission/domain"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, rule *CommissionRule) error
	FindActive(ctx context.Context, db *gorm.DB, role commissiondomain.Role, productLine string) (*CommissionRule, error)
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*CommissionRule, error)
	SetActive(ctx context.Context, db *gorm.DB, id snowflake.ID, active bool) error
	List(ctx context.Context, db *gorm.DB, role commissiondomain.Role) ([]*CommissionRule, error)

	// FindLatestDefault returns the highest-version default for the role,
	// or nil when the role has no default.
	FindLatestDefault(ctx context.Context, db *gorm.DB, role commissiondomain.Role) (*CommissionRuleDefault, error)
	ListDefaults(ctx context.Context, db *gorm.DB) ([]*CommissionRuleDefault, error)
}
