package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/sellside/closedesk/internal/commission/domain"
	obsmetrics "github.com/sellside/closedesk/internal/observability/metrics"
	productdomain "github.com/sellside/closedesk/internal/product/domain"
	"github.com/sellside/closedesk/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Repo       domain.Repository
	ObsMetrics *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	repo       domain.Repository
	obsMetrics *obsmetrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("commission.service"),
		genID:      p.GenID,
		repo:       p.Repo,
		obsMetrics: p.ObsMetrics,
	}
}

func (s *Service) Write(ctx context.Context, input domain.WriteCommissionInput) (domain.CommissionRecord, error) {
	if input.CallID == 0 {
		return domain.CommissionRecord{}, domain.ErrInvalidCall
	}
	role, err := domain.NormalizeRole(string(input.Role))
	if err != nil {
		return domain.CommissionRecord{}, err
	}
	if input.BeneficiaryID == 0 {
		return domain.CommissionRecord{}, domain.ErrInvalidBeneficiary
	}
	if input.Amount.IsNegative() || input.Percentage.IsNegative() {
		return domain.CommissionRecord{}, domain.ErrInvalidAmount
	}

	record := domain.CommissionRecord{
		ID:            s.genID.Generate(),
		CallID:        input.CallID,
		Role:          role,
		BeneficiaryID: input.BeneficiaryID,
		SaleValue:     input.SaleValue,
		Percentage:    input.Percentage,
		Amount:        input.Amount,
		Status:        domain.CommissionStatusPending,
		ProductLine:   productdomain.NormalizeProductLine(input.ProductLine),
		CreatedAt:     time.Now().UTC(),
	}

	inserted, err := s.repo.InsertIdempotent(ctx, s.db, &record)
	if err != nil {
		return domain.CommissionRecord{}, fmt.Errorf("insert commission record: %w", err)
	}
	if !inserted {
		existing, err := s.repo.FindByCallAndRole(ctx, s.db, record.CallID, record.Role)
		if err != nil {
			return domain.CommissionRecord{}, fmt.Errorf("read existing commission record: %w", err)
		}
		if existing == nil {
			// Conflict row not visible on this handle: a concurrent writer
			// holds it uncommitted. Treat as a lost race.
			return domain.CommissionRecord{}, gorm.ErrDuplicatedKey
		}
		s.log.Info("commission record already exists",
			zap.String("call_id", record.CallID.String()),
			zap.String("role", string(record.Role)),
		)
		return *existing, nil
	}

	if s.obsMetrics != nil {
		s.obsMetrics.RecordCommissionRecord(ctx, string(record.Role))
	}
	return record, nil
}

func (s *Service) List(ctx context.Context, req domain.ListCommissionRequest) (domain.ListCommissionResponse, error) {
	filter := domain.ListCommissionFilter{
		CreatedFrom: req.CreatedFrom,
		CreatedTo:   req.CreatedTo,
	}

	if trimmed := strings.TrimSpace(req.CallID); trimmed != "" {
		parsed, err := snowflake.ParseString(trimmed)
		if err != nil || parsed == 0 {
			return domain.ListCommissionResponse{}, domain.ErrInvalidCall
		}
		filter.CallID = parsed.String()
	}
	if trimmed := strings.TrimSpace(req.BeneficiaryID); trimmed != "" {
		parsed, err := snowflake.ParseString(trimmed)
		if err != nil || parsed == 0 {
			return domain.ListCommissionResponse{}, domain.ErrInvalidBeneficiary
		}
		filter.BeneficiaryID = parsed.String()
	}
	if trimmed := strings.TrimSpace(req.Status); trimmed != "" {
		status, err := normalizeStatus(trimmed)
		if err != nil {
			return domain.ListCommissionResponse{}, err
		}
		filter.Status = status
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}
	filter.Limit = int(pageSize)

	if token := strings.TrimSpace(req.PageToken); token != "" {
		cursor, err := pagination.DecodeCursor(token)
		if err != nil {
			return domain.ListCommissionResponse{}, domain.ErrInvalidPageToken
		}
		filter.Cursor = cursor
	}

	items, err := s.repo.List(ctx, s.db, filter)
	if err != nil {
		return domain.ListCommissionResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(record *domain.CommissionRecord) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        record.ID.String(),
			CreatedAt: record.CreatedAt.Format(time.RFC3339Nano),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > int(pageSize) {
		items = items[:pageSize]
	}

	commissions := make([]domain.CommissionRecord, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		commissions = append(commissions, *item)
	}

	resp := domain.ListCommissionResponse{Commissions: commissions}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

func normalizeStatus(raw string) (domain.CommissionStatus, error) {
	switch domain.CommissionStatus(strings.ToLower(strings.TrimSpace(raw))) {
	case domain.CommissionStatusPending:
		return domain.CommissionStatusPending, nil
	case domain.CommissionStatusPaid:
		return domain.CommissionStatusPaid, nil
	case domain.CommissionStatusCancelled:
		return domain.CommissionStatusCancelled, nil
	default:
		return "", domain.ErrInvalidStatus
	}
}
