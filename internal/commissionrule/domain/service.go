package domain

import (
	"context"
	"errors"

	commissiondomain "github.com/sellside/closedesk/internal/commission/domain"
	"github.com/shopspring/decimal"
)

// Resolution reports the rate chosen for a (role, product line) pair and
// whether it came from a specific rule or a role-level default.
type Resolution struct {
	Percentage  decimal.Decimal
	ProductLine string
	FromDefault bool
}

type CreateRuleRequest struct {
	Role        string
	ProductLine string
	Percentage  string
}

type ListRuleRequest struct {
	Role string
}

type Service interface {
	// Resolve returns the active rule matching exactly (role, productLine),
	// falling back to the latest versioned role default when no rule
	// matches. It fails with ErrRuleNotFound only when neither exists.
	Resolve(ctx context.Context, role commissiondomain.Role, productLine string) (Resolution, error)

	Create(context.Context, CreateRuleRequest) (CommissionRule, error)
	Deactivate(ctx context.Context, id string) error
	List(context.Context, ListRuleRequest) ([]CommissionRule, error)
	ListDefaults(context.Context) ([]CommissionRuleDefault, error)
}

var (
	ErrRuleNotFound      = errors.New("rule_not_found")
	ErrInvalidPercentage = errors.New("invalid_percentage")
	ErrInvalidID         = errors.New("invalid_id")
	ErrNotFound          = errors.New("not_found")
)
