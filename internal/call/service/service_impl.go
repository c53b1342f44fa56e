package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/sellside/closedesk/internal/call/domain"
	identitydomain "github.com/sellside/closedesk/internal/identity/domain"
	"github.com/sellside/closedesk/pkg/db/pagination"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	GenID        *snowflake.Node
	Repo         domain.Repository
	IdentityRepo identitydomain.Repository
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	genID        *snowflake.Node
	repo         domain.Repository
	identityRepo identitydomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("call.service"),
		genID:        p.GenID,
		repo:         p.Repo,
		identityRepo: p.IdentityRepo,
	}
}

func (s *Service) Log(ctx context.Context, req domain.LogCallRequest) (domain.Call, error) {
	closerID, err := snowflake.ParseString(strings.TrimSpace(req.CloserID))
	if err != nil || closerID == 0 {
		return domain.Call{}, domain.ErrInvalidCloser
	}

	closer, err := s.identityRepo.FindByID(ctx, s.db, closerID)
	if err != nil {
		return domain.Call{}, err
	}
	if closer == nil || closer.Kind != identitydomain.IdentityKindSales {
		return domain.Call{}, domain.ErrInvalidCloser
	}

	var leadID *snowflake.ID
	if trimmed := strings.TrimSpace(req.LeadID); trimmed != "" {
		parsed, err := snowflake.ParseString(trimmed)
		if err != nil || parsed == 0 {
			return domain.Call{}, domain.ErrInvalidLead
		}
		leadID = &parsed
	}

	var productID *snowflake.ID
	if trimmed := strings.TrimSpace(req.ProductID); trimmed != "" {
		parsed, err := snowflake.ParseString(trimmed)
		if err != nil || parsed == 0 {
			return domain.Call{}, domain.ErrInvalidProduct
		}
		productID = &parsed
	}

	outcome, err := normalizeOutcome(req.Outcome)
	if err != nil {
		return domain.Call{}, err
	}

	saleValue := decimal.Zero
	if trimmed := strings.TrimSpace(req.SaleValue); trimmed != "" {
		parsed, err := decimal.NewFromString(trimmed)
		if err != nil || parsed.IsNegative() {
			return domain.Call{}, domain.ErrInvalidSaleValue
		}
		saleValue = parsed
	}
	if outcome == domain.CallOutcomeSale && !saleValue.IsPositive() {
		return domain.Call{}, domain.ErrInvalidSaleValue
	}

	now := time.Now().UTC()
	occurredAt := now
	if req.OccurredAt != nil {
		occurredAt = req.OccurredAt.UTC()
	}

	call := domain.Call{
		ID:             s.genID.Generate(),
		LeadID:         leadID,
		CloserID:       closerID,
		ProductID:      productID,
		SaleValue:      saleValue,
		Outcome:        outcome,
		ApprovalStatus: domain.ApprovalStatusPending,
		OccurredAt:     occurredAt,
		CreatedAt:      now,
	}

	if err := s.repo.Insert(ctx, s.db, &call); err != nil {
		return domain.Call{}, err
	}
	return call, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetCallRequest) (domain.Call, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(req.ID))
	if err != nil || id == 0 {
		return domain.Call{}, domain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Call{}, err
	}
	if item == nil {
		return domain.Call{}, domain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) List(ctx context.Context, req domain.ListCallRequest) (domain.ListCallResponse, error) {
	filter := domain.ListCallFilter{
		OccurredFrom: req.OccurredFrom,
		OccurredTo:   req.OccurredTo,
	}

	if trimmed := strings.TrimSpace(req.Outcome); trimmed != "" {
		outcome, err := normalizeOutcome(trimmed)
		if err != nil {
			return domain.ListCallResponse{}, err
		}
		filter.Outcome = outcome
	}
	if trimmed := strings.TrimSpace(req.ApprovalStatus); trimmed != "" {
		status, err := normalizeStatus(trimmed)
		if err != nil {
			return domain.ListCallResponse{}, err
		}
		filter.ApprovalStatus = status
	}
	if trimmed := strings.TrimSpace(req.CloserID); trimmed != "" {
		parsed, err := snowflake.ParseString(trimmed)
		if err != nil || parsed == 0 {
			return domain.ListCallResponse{}, domain.ErrInvalidCloser
		}
		filter.CloserID = parsed.String()
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}
	filter.Limit = int(pageSize)

	if token := strings.TrimSpace(req.PageToken); token != "" {
		cursor, err := pagination.DecodeCursor(token)
		if err != nil {
			return domain.ListCallResponse{}, domain.ErrInvalidPageToken
		}
		filter.Cursor = cursor
	}

	items, err := s.repo.List(ctx, s.db, filter)
	if err != nil {
		return domain.ListCallResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(call *domain.Call) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        call.ID.String(),
			CreatedAt: call.CreatedAt.Format(time.RFC3339Nano),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > int(pageSize) {
		items = items[:pageSize]
	}

	calls := make([]domain.Call, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		calls = append(calls, *item)
	}

	resp := domain.ListCallResponse{Calls: calls}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

func normalizeOutcome(raw string) (domain.CallOutcome, error) {
	switch domain.CallOutcome(strings.ToLower(strings.TrimSpace(raw))) {
	case domain.CallOutcomeInProgress:
		return domain.CallOutcomeInProgress, nil
	case domain.CallOutcomeSale:
		return domain.CallOutcomeSale, nil
	case domain.CallOutcomeNoSale:
		return domain.CallOutcomeNoSale, nil
	default:
		return "", domain.ErrInvalidOutcome
	}
}

func normalizeStatus(raw string) (domain.ApprovalStatus, error) {
	switch domain.ApprovalStatus(strings.ToLower(strings.TrimSpace(raw))) {
	case domain.ApprovalStatusPending:
		return domain.ApprovalStatusPending, nil
	case domain.ApprovalStatusApproved:
		return domain.ApprovalStatusApproved, nil
	case domain.ApprovalStatusRejected:
		return domain.ApprovalStatusRejected, nil
	default:
		return "", domain.ErrInvalidStatus
	}
}
