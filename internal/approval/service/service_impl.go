package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	approvaldomain "github.com/sellside/closedesk/internal/approval/domain"
	auditdomain "github.com/sellside/closedesk/internal/audit/domain"
	calldomain "github.com/sellside/closedesk/internal/call/domain"
	"github.com/sellside/closedesk/internal/clock"
	commissiondomain "github.com/sellside/closedesk/internal/commission/domain"
	ruledomain "github.com/sellside/closedesk/internal/commissionrule/domain"
	identitydomain "github.com/sellside/closedesk/internal/identity/domain"
	leaddomain "github.com/sellside/closedesk/internal/lead/domain"
	obsmetrics "github.com/sellside/closedesk/internal/observability/metrics"
	productdomain "github.com/sellside/closedesk/internal/product/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB             *gorm.DB
	Log            *zap.Logger
	GenID          *snowflake.Node
	Clock          clock.Clock
	CallRepo       calldomain.Repository
	LeadRepo       leaddomain.Repository
	ProductRepo    productdomain.Repository
	IdentityRepo   identitydomain.Repository
	CommissionRepo commissiondomain.Repository
	RuleSvc        ruledomain.Service
	AuditSvc       auditdomain.Service
	ObsMetrics     *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db             *gorm.DB
	log            *zap.Logger
	genID          *snowflake.Node
	clock          clock.Clock
	callRepo       calldomain.Repository
	leadRepo       leaddomain.Repository
	productRepo    productdomain.Repository
	identityRepo   identitydomain.Repository
	commissionRepo commissiondomain.Repository
	ruleSvc        ruledomain.Service
	auditSvc       auditdomain.Service
	obsMetrics     *obsmetrics.Metrics
}

func New(p Params) approvaldomain.Service {
	return &Service{
		db:             p.DB,
		log:            p.Log.Named("approval.service"),
		genID:          p.GenID,
		clock:          p.Clock,
		callRepo:       p.CallRepo,
		leadRepo:       p.LeadRepo,
		productRepo:    p.ProductRepo,
		identityRepo:   p.IdentityRepo,
		commissionRepo: p.CommissionRepo,
		ruleSvc:        p.RuleSvc,
		auditSvc:       p.AuditSvc,
		obsMetrics:     p.ObsMetrics,
	}
}

// commissionPlan is one eligible role with its resolved rate and the
// amount the transition will write for it.
type commissionPlan struct {
	role        commissiondomain.Role
	beneficiary snowflake.ID
	percentage  decimal.Decimal
	amount      decimal.Decimal
}

func (s *Service) Approve(ctx context.Context, req approvaldomain.ApproveRequest) (approvaldomain.ApprovalResult, error) {
	call, admin, err := s.loadTransition(ctx, req.CallID, req.AdminID)
	if err != nil {
		return approvaldomain.ApprovalResult{}, err
	}

	productLine, err := s.resolveProductLine(ctx, call)
	if err != nil {
		return approvaldomain.ApprovalResult{}, err
	}

	plans, err := s.planCommissions(ctx, call, productLine)
	if err != nil {
		return approvaldomain.ApprovalResult{}, err
	}

	now := s.clock.Now()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, plan := range plans {
			record := commissiondomain.CommissionRecord{
				ID:            s.genID.Generate(),
				CallID:        call.ID,
				Role:          plan.role,
				BeneficiaryID: plan.beneficiary,
				SaleValue:     call.SaleValue,
				Percentage:    plan.percentage,
				Amount:        plan.amount,
				Status:        commissiondomain.CommissionStatusPending,
				ProductLine:   productLine,
				CreatedAt:     now,
			}
			inserted, err := s.commissionRepo.InsertIdempotent(ctx, tx, &record)
			if err != nil {
				return fmt.Errorf("%w: insert commission for role %s: %v", approvaldomain.ErrPersistence, plan.role, err)
			}
			if !inserted {
				existing, err := s.commissionRepo.FindByCallAndRole(ctx, tx, call.ID, plan.role)
				if err != nil {
					return fmt.Errorf("%w: read existing commission for role %s: %v", approvaldomain.ErrPersistence, plan.role, err)
				}
				if existing == nil {
					// Conflict row held uncommitted by a concurrent
					// approval; that transaction owns the transition.
					return approvaldomain.ErrInvalidState
				}
				s.log.Info("commission record already present, reusing",
					zap.String("call_id", call.ID.String()),
					zap.String("role", string(plan.role)),
				)
			}
		}

		won, err := s.callRepo.TransitionStatus(ctx, tx, call.ID, calldomain.ApprovalStatusApproved, admin.ID, now)
		if err != nil {
			return fmt.Errorf("%w: update call status: %v", approvaldomain.ErrPersistence, err)
		}
		if !won {
			return approvaldomain.ErrInvalidState
		}
		return nil
	})
	if err != nil {
		return approvaldomain.ApprovalResult{}, err
	}

	if s.obsMetrics != nil {
		s.obsMetrics.RecordApproval(ctx, "approved")
		for _, plan := range plans {
			s.obsMetrics.RecordCommissionRecord(ctx, string(plan.role))
		}
	}
	s.audit(ctx, admin, "call.approved", call, plans)

	result := approvaldomain.ApprovalResult{
		Success: true,
		Message: fmt.Sprintf("call %s approved with %d commission(s)", call.ID, len(plans)),
	}
	for _, plan := range plans {
		amount := plan.amount
		switch plan.role {
		case commissiondomain.RoleOriginator:
			result.OriginatorCommission = &amount
		case commissiondomain.RoleCloser:
			result.CloserCommission = &amount
		}
	}
	return result, nil
}

func (s *Service) Reject(ctx context.Context, req approvaldomain.RejectRequest) (approvaldomain.ApprovalResult, error) {
	call, admin, err := s.loadTransition(ctx, req.CallID, req.AdminID)
	if err != nil {
		return approvaldomain.ApprovalResult{}, err
	}

	now := s.clock.Now()
	won, err := s.callRepo.TransitionStatus(ctx, s.db, call.ID, calldomain.ApprovalStatusRejected, admin.ID, now)
	if err != nil {
		return approvaldomain.ApprovalResult{}, fmt.Errorf("%w: update call status: %v", approvaldomain.ErrPersistence, err)
	}
	if !won {
		return approvaldomain.ApprovalResult{}, approvaldomain.ErrInvalidState
	}

	if s.obsMetrics != nil {
		s.obsMetrics.RecordApproval(ctx, "rejected")
	}
	s.audit(ctx, admin, "call.rejected", call, nil)

	return approvaldomain.ApprovalResult{
		Success: true,
		Message: fmt.Sprintf("call %s rejected", call.ID),
	}, nil
}

// loadTransition checks the shared Approve/Reject preconditions: the
// call exists, it is an unreviewed sale, and the admin identity exists.
func (s *Service) loadTransition(ctx context.Context, rawCallID, rawAdminID string) (*calldomain.Call, *identitydomain.Identity, error) {
	callID, err := snowflake.ParseString(strings.TrimSpace(rawCallID))
	if err != nil || callID == 0 {
		return nil, nil, approvaldomain.ErrInvalidID
	}
	adminID, err := snowflake.ParseString(strings.TrimSpace(rawAdminID))
	if err != nil || adminID == 0 {
		return nil, nil, approvaldomain.ErrInvalidID
	}

	call, err := s.callRepo.FindByID(ctx, s.db, callID)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: load call: %v", approvaldomain.ErrPersistence, err)
	}
	if call == nil {
		return nil, nil, approvaldomain.ErrCallNotFound
	}
	if call.Outcome != calldomain.CallOutcomeSale || call.ApprovalStatus != calldomain.ApprovalStatusPending {
		return nil, nil, approvaldomain.ErrInvalidState
	}

	admin, err := s.identityRepo.FindByID(ctx, s.db, adminID)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: load approver: %v", approvaldomain.ErrPersistence, err)
	}
	if admin == nil || admin.Kind != identitydomain.IdentityKindAdmin || !admin.Active {
		return nil, nil, approvaldomain.ErrApproverNotFound
	}

	return call, admin, nil
}

// resolveProductLine maps the call's product reference to a line tag.
// A missing or unmapped product resolves to the shared default tag.
func (s *Service) resolveProductLine(ctx context.Context, call *calldomain.Call) (string, error) {
	if call.ProductID == nil {
		return productdomain.ProductLineDefault, nil
	}
	product, err := s.productRepo.FindByID(ctx, s.db, *call.ProductID)
	if err != nil {
		return "", fmt.Errorf("%w: load product: %v", approvaldomain.ErrPersistence, err)
	}
	if product == nil {
		return productdomain.ProductLineDefault, nil
	}
	return productdomain.NormalizeProductLine(product.ProductLine), nil
}

// planCommissions determines eligible roles and resolves their rates.
// The closer role is always eligible; the originator role only when the
// call's lead carries an originator reference.
func (s *Service) planCommissions(ctx context.Context, call *calldomain.Call, productLine string) ([]commissionPlan, error) {
	plans := make([]commissionPlan, 0, 2)

	if call.LeadID != nil {
		lead, err := s.leadRepo.FindByID(ctx, s.db, *call.LeadID)
		if err != nil {
			return nil, fmt.Errorf("%w: load lead: %v", approvaldomain.ErrPersistence, err)
		}
		if lead != nil && lead.OriginatorID != nil {
			plans = append(plans, commissionPlan{
				role:        commissiondomain.RoleOriginator,
				beneficiary: *lead.OriginatorID,
			})
		}
	}

	plans = append(plans, commissionPlan{
		role:        commissiondomain.RoleCloser,
		beneficiary: call.CloserID,
	})

	for i := range plans {
		resolution, err := s.ruleSvc.Resolve(ctx, plans[i].role, productLine)
		if err != nil {
			return nil, err
		}
		plans[i].percentage = resolution.Percentage
		plans[i].amount = commissiondomain.ComputeAmount(call.SaleValue, resolution.Percentage)
	}

	return plans, nil
}

func (s *Service) audit(ctx context.Context, admin *identitydomain.Identity, action string, call *calldomain.Call, plans []commissionPlan) {
	if s.auditSvc == nil {
		return
	}
	actorID := admin.ID.String()
	targetID := call.ID.String()
	metadata := map[string]any{
		"sale_value": call.SaleValue.String(),
	}
	for _, plan := range plans {
		metadata[string(plan.role)+"_commission"] = plan.amount.String()
	}
	if err := s.auditSvc.AuditLog(ctx, "admin", &actorID, action, "call", &targetID, metadata); err != nil {
		s.log.Warn("failed to write approval audit log", zap.Error(err))
	}
}
