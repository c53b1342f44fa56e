package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	commissiondomain "github.com/sellside/closedesk/internal/commission/domain"
	"github.com/sellside/closedesk/internal/commissionrule/domain"
	obsmetrics "github.com/sellside/closedesk/internal/observability/metrics"
	productdomain "github.com/sellside/closedesk/internal/product/domain"
	"github.com/shopspring/decimal"
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
		log:        p.Log.Named("commissionrule.service"),
		genID:      p.GenID,
		repo:       p.Repo,
		obsMetrics: p.ObsMetrics,
	}
}

func (s *Service) Resolve(ctx context.Context, role commissiondomain.Role, productLine string) (domain.Resolution, error) {
	normalizedRole, err := commissiondomain.NormalizeRole(string(role))
	if err != nil {
		return domain.Resolution{}, err
	}
	line := productdomain.NormalizeProductLine(strings.ToLower(strings.TrimSpace(productLine)))

	rule, err := s.repo.FindActive(ctx, s.db, normalizedRole, line)
	if err != nil {
		return domain.Resolution{}, err
	}
	if rule != nil {
		return domain.Resolution{
			Percentage:  rule.Percentage,
			ProductLine: line,
		}, nil
	}

	def, err := s.repo.FindLatestDefault(ctx, s.db, normalizedRole)
	if err != nil {
		return domain.Resolution{}, err
	}
	if def == nil {
		return domain.Resolution{}, domain.ErrRuleNotFound
	}

	if s.obsMetrics != nil {
		s.obsMetrics.RecordRuleFallback(ctx, string(normalizedRole))
	}
	s.log.Debug("rule resolution fell back to role default",
		zap.String("role", string(normalizedRole)),
		zap.String("product_line", line),
		zap.Int("version", def.Version),
	)

	return domain.Resolution{
		Percentage:  def.Percentage,
		ProductLine: line,
		FromDefault: true,
	}, nil
}

func (s *Service) Create(ctx context.Context, req domain.CreateRuleRequest) (domain.CommissionRule, error) {
	role, err := commissiondomain.NormalizeRole(req.Role)
	if err != nil {
		return domain.CommissionRule{}, err
	}

	line := productdomain.NormalizeProductLine(strings.ToLower(strings.TrimSpace(req.ProductLine)))

	percentage, err := decimal.NewFromString(strings.TrimSpace(req.Percentage))
	if err != nil || percentage.IsNegative() || percentage.GreaterThan(decimal.NewFromInt(100)) {
		return domain.CommissionRule{}, domain.ErrInvalidPercentage
	}

	now := time.Now().UTC()
	rule := domain.CommissionRule{
		ID:          s.genID.Generate(),
		Role:        role,
		ProductLine: line,
		Percentage:  percentage,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Insert(ctx, s.db, &rule); err != nil {
		return domain.CommissionRule{}, err
	}
	return rule, nil
}

func (s *Service) Deactivate(ctx context.Context, id string) error {
	parsed, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || parsed == 0 {
		return domain.ErrInvalidID
	}

	rule, err := s.repo.FindByID(ctx, s.db, parsed)
	if err != nil {
		return err
	}
	if rule == nil {
		return domain.ErrNotFound
	}

	return s.repo.SetActive(ctx, s.db, parsed, false)
}

func (s *Service) List(ctx context.Context, req domain.ListRuleRequest) ([]domain.CommissionRule, error) {
	var role commissiondomain.Role
	if trimmed := strings.TrimSpace(req.Role); trimmed != "" {
		normalized, err := commissiondomain.NormalizeRole(trimmed)
		if err != nil {
			return nil, err
		}
		role = normalized
	}

	items, err := s.repo.List(ctx, s.db, role)
	if err != nil {
		return nil, err
	}

	rules := make([]domain.CommissionRule, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		rules = append(rules, *item)
	}
	return rules, nil
}

func (s *Service) ListDefaults(ctx context.Context) ([]domain.CommissionRuleDefault, error) {
	items, err := s.repo.ListDefaults(ctx, s.db)
	if err != nil {
		return nil, err
	}

	defaults := make([]domain.CommissionRuleDefault, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		defaults = append(defaults, *item)
	}
	return defaults, nil
}
