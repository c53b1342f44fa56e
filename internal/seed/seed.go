package seed

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	commissiondomain "github.com/sellside/closedesk/internal/commission/domain"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// defaultRateVersion is the baseline fallback generation. Operators
// raise the rate by inserting a higher version, never by mutating rows.
const defaultRateVersion = 1

type defaultRate struct {
	role       commissiondomain.Role
	percentage decimal.Decimal
}

func baselineRates() []defaultRate {
	return []defaultRate{
		{role: commissiondomain.RoleOriginator, percentage: decimal.NewFromInt(1)},
		{role: commissiondomain.RoleCloser, percentage: decimal.NewFromInt(5)},
	}
}

// EnsureCommissionDefaults seeds the baseline role fallback rates so a
// fresh install resolves commissions without any configured rules.
func EnsureCommissionDefaults(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	for _, rate := range baselineRates() {
		err := db.WithContext(ctx).Exec(`
			INSERT INTO commission_rule_defaults (id, role, percentage, version)
			VALUES (?, ?, ?, ?)
			ON CONFLICT (role, version) DO NOTHING
		`,
			node.Generate(),
			rate.role,
			rate.percentage,
			defaultRateVersion,
		).Error
		if err != nil {
			return err
		}
	}

	return nil
}
