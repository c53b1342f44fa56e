package domain

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// ApprovalResult reports the outcome of an approval decision. Commission
// amounts are present only for the roles that were eligible on the call.
type ApprovalResult struct {
	Success              bool             `json:"success"`
	OriginatorCommission *decimal.Decimal `json:"originator_commission,omitempty"`
	CloserCommission     *decimal.Decimal `json:"closer_commission,omitempty"`
	Message              string           `json:"message"`
}

type ApproveRequest struct {
	CallID  string
	AdminID string
}

type RejectRequest struct {
	CallID  string
	AdminID string
}

// Service is the sole entry point for the approval transition. It
// composes rule resolution, commission computation, and the ledger write
// into one all-or-nothing unit.
type Service interface {
	Approve(context.Context, ApproveRequest) (ApprovalResult, error)
	Reject(context.Context, RejectRequest) (ApprovalResult, error)
}

var (
	// ErrCallNotFound means the call identifier resolves to nothing.
	ErrCallNotFound = errors.New("call_not_found")
	// ErrApproverNotFound means the admin identifier resolves to no
	// active admin identity.
	ErrApproverNotFound = errors.New("approver_not_found")
	// ErrInvalidState means the call is not an unreviewed sale: wrong
	// outcome, already approved, or already rejected. Terminal states
	// never transition again.
	ErrInvalidState = errors.New("invalid_state")
	// ErrInvalidID means a malformed identifier was supplied.
	ErrInvalidID = errors.New("invalid_id")
	// ErrPersistence wraps storage failures inside the transactional
	// write. The transaction is rolled back; no partial state survives.
	ErrPersistence = errors.New("persistence_error")
)
