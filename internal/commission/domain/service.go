package domain

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/sellside/closedesk/pkg/db/pagination"
	"github.com/shopspring/decimal"
)

// WriteCommissionInput carries one ledger write. All identifiers are
// recorded as given; the writer never requires them to satisfy
// storage-level referential constraints.
type WriteCommissionInput struct {
	CallID        snowflake.ID
	Role          Role
	BeneficiaryID snowflake.ID
	SaleValue     decimal.Decimal
	Percentage    decimal.Decimal
	Amount        decimal.Decimal
	ProductLine   string
}

type ListCommissionRequest struct {
	PageToken     string
	PageSize      int32
	CallID        string
	BeneficiaryID string
	Status        string
	CreatedFrom   *time.Time
	CreatedTo     *time.Time
}

type ListCommissionFilter struct {
	CallID        string
	BeneficiaryID string
	Status        CommissionStatus
	CreatedFrom   *time.Time
	CreatedTo     *time.Time
	Cursor        *pagination.Cursor
	Limit         int
}

type ListCommissionResponse struct {
	pagination.PageInfo
	Commissions []CommissionRecord `json:"commissions"`
}

type Service interface {
	// Write persists one commission record idempotently on (call, role).
	// A write for an existing pair returns the existing record unchanged.
	Write(ctx context.Context, input WriteCommissionInput) (CommissionRecord, error)
	List(ctx context.Context, req ListCommissionRequest) (ListCommissionResponse, error)
}

var (
	ErrInvalidCall        = errors.New("invalid_call")
	ErrInvalidRole        = errors.New("invalid_role")
	ErrInvalidBeneficiary = errors.New("invalid_beneficiary")
	ErrInvalidAmount      = errors.New("invalid_amount")
	ErrInvalidStatus      = errors.New("invalid_status")
	ErrInvalidPageToken   = errors.New("invalid_page_token")
)

// NormalizeRole validates and canonicalizes a role value.
func NormalizeRole(raw string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case RoleOriginator:
		return RoleOriginator, nil
	case RoleCloser:
		return RoleCloser, nil
	default:
		return "", ErrInvalidRole
	}
}
