package domain

import (
	"context"
	"errors"
	"time"

	"github.com/sellside/closedesk/pkg/db/pagination"
)

type LogCallRequest struct {
	LeadID     string
	CloserID   string
	ProductID  string
	SaleValue  string
	Outcome    string
	OccurredAt *time.Time
}

type GetCallRequest struct {
	ID string
}

type ListCallRequest struct {
	PageToken      string
	PageSize       int32
	Outcome        string
	ApprovalStatus string
	CloserID       string
	OccurredFrom   *time.Time
	OccurredTo     *time.Time
}

type ListCallFilter struct {
	Outcome        CallOutcome
	ApprovalStatus ApprovalStatus
	CloserID       string
	OccurredFrom   *time.Time
	OccurredTo     *time.Time
	Cursor         *pagination.Cursor
	Limit          int
}

type ListCallResponse struct {
	pagination.PageInfo
	Calls []Call `json:"calls"`
}

type Service interface {
	Log(context.Context, LogCallRequest) (Call, error)
	GetByID(context.Context, GetCallRequest) (Call, error)
	List(context.Context, ListCallRequest) (ListCallResponse, error)
}

var (
	ErrInvalidCloser    = errors.New("invalid_closer")
	ErrInvalidLead      = errors.New("invalid_lead")
	ErrInvalidProduct   = errors.New("invalid_product")
	ErrInvalidSaleValue = errors.New("invalid_sale_value")
	ErrInvalidOutcome   = errors.New("invalid_outcome")
	ErrInvalidStatus    = errors.New("invalid_status")
	ErrInvalidID        = errors.New("invalid_id")
	ErrInvalidPageToken = errors.New("invalid_page_token")
	ErrNotFound         = errors.New("not_found")
)
