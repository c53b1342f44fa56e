package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	approvaldomain "github.com/sellside/closedesk/internal/approval/domain"
	auditdomain "github.com/sellside/closedesk/internal/audit/domain"
	auditrepository "github.com/sellside/closedesk/internal/audit/repository"
	auditservice "github.com/sellside/closedesk/internal/audit/service"
	calldomain "github.com/sellside/closedesk/internal/call/domain"
	callrepository "github.com/sellside/closedesk/internal/call/repository"
	"github.com/sellside/closedesk/internal/clock"
	commissiondomain "github.com/sellside/closedesk/internal/commission/domain"
	commissionrepository "github.com/sellside/closedesk/internal/commission/repository"
	ruledomain "github.com/sellside/closedesk/internal/commissionrule/domain"
	rulerepository "github.com/sellside/closedesk/internal/commissionrule/repository"
	ruleservice "github.com/sellside/closedesk/internal/commissionrule/service"
	identitydomain "github.com/sellside/closedesk/internal/identity/domain"
	identityrepository "github.com/sellside/closedesk/internal/identity/repository"
	leaddomain "github.com/sellside/closedesk/internal/lead/domain"
	leadrepository "github.com/sellside/closedesk/internal/lead/repository"
	productdomain "github.com/sellside/closedesk/internal/product/domain"
	productrepository "github.com/sellside/closedesk/internal/product/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	svc   approvaldomain.Service
	db    *gorm.DB
	node  *snowflake.Node
	clock *clock.FakeClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&identitydomain.Identity{},
		&leaddomain.Lead{},
		&productdomain.Product{},
		&calldomain.Call{},
		&commissiondomain.CommissionRecord{},
		&ruledomain.CommissionRule{},
		&ruledomain.CommissionRuleDefault{},
		&auditdomain.AuditLog{},
	))
	require.NoError(t, db.Exec(
		"CREATE UNIQUE INDEX IF NOT EXISTS ux_commission_records_call_role ON commission_records(call_id, role)",
	).Error)

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	log := zap.NewNop()
	fakeClock := clock.NewFakeClock(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))

	ruleSvc := ruleservice.New(ruleservice.Params{
		DB:    db,
		Log:   log,
		GenID: node,
		Repo:  rulerepository.Provide(),
	})
	auditSvc := auditservice.NewService(auditservice.Params{
		DB:    db,
		Log:   log,
		GenID: node,
		Repo:  auditrepository.Provide(),
	})

	svc := New(Params{
		DB:             db,
		Log:            log,
		GenID:          node,
		Clock:          fakeClock,
		CallRepo:       callrepository.Provide(),
		LeadRepo:       leadrepository.Provide(),
		ProductRepo:    productrepository.Provide(),
		IdentityRepo:   identityrepository.Provide(),
		CommissionRepo: commissionrepository.Provide(),
		RuleSvc:        ruleSvc,
		AuditSvc:       auditSvc,
	})

	return &fixture{svc: svc, db: db, node: node, clock: fakeClock}
}

func (f *fixture) seedIdentity(t *testing.T, kind identitydomain.IdentityKind) snowflake.ID {
	t.Helper()
	id := f.node.Generate()
	require.NoError(t, f.db.Create(&identitydomain.Identity{
		ID:        id,
		Kind:      kind,
		Name:      "Fixture " + string(kind),
		Email:     string(kind) + "@example.com",
		Active:    true,
		CreatedAt: time.Now().UTC(),
	}).Error)
	return id
}

func (f *fixture) seedDefault(t *testing.T, role commissiondomain.Role, percentage string, version int) {
	t.Helper()
	require.NoError(t, f.db.Create(&ruledomain.CommissionRuleDefault{
		ID:         f.node.Generate(),
		Role:       role,
		Percentage: decimal.RequireFromString(percentage),
		Version:    version,
		CreatedAt:  time.Now().UTC(),
	}).Error)
}

func (f *fixture) seedBaselineDefaults(t *testing.T) {
	t.Helper()
	f.seedDefault(t, commissiondomain.RoleOriginator, "1", 1)
	f.seedDefault(t, commissiondomain.RoleCloser, "5", 1)
}

func (f *fixture) seedLead(t *testing.T, originatorID *snowflake.ID) snowflake.ID {
	t.Helper()
	id := f.node.Generate()
	require.NoError(t, f.db.Create(&leaddomain.Lead{
		ID:           id,
		OriginatorID: originatorID,
		Name:         "Fixture Lead",
		CreatedAt:    time.Now().UTC(),
	}).Error)
	return id
}

func (f *fixture) seedCall(t *testing.T, call calldomain.Call) snowflake.ID {
	t.Helper()
	if call.ID == 0 {
		call.ID = f.node.Generate()
	}
	if call.Outcome == "" {
		call.Outcome = calldomain.CallOutcomeSale
	}
	if call.ApprovalStatus == "" {
		call.ApprovalStatus = calldomain.ApprovalStatusPending
	}
	if call.OccurredAt.IsZero() {
		call.OccurredAt = time.Now().UTC()
	}
	if call.CreatedAt.IsZero() {
		call.CreatedAt = time.Now().UTC()
	}
	require.NoError(t, f.db.Create(&call).Error)
	return call.ID
}

func (f *fixture) commissionsForCall(t *testing.T, callID snowflake.ID) []commissiondomain.CommissionRecord {
	t.Helper()
	var records []commissiondomain.CommissionRecord
	require.NoError(t, f.db.
		Where("call_id = ?", callID).
		Order("role asc").
		Find(&records).Error)
	return records
}

func (f *fixture) callByID(t *testing.T, id snowflake.ID) calldomain.Call {
	t.Helper()
	var call calldomain.Call
	require.NoError(t, f.db.First(&call, "id = ?", id).Error)
	return call
}

func TestApprove_BothRoles(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedBaselineDefaults(t)

	admin := f.seedIdentity(t, identitydomain.IdentityKindAdmin)
	closer := f.seedIdentity(t, identitydomain.IdentityKindSales)
	originator := f.seedIdentity(t, identitydomain.IdentityKindSales)
	leadID := f.seedLead(t, &originator)

	callID := f.seedCall(t, calldomain.Call{
		LeadID:    &leadID,
		CloserID:  closer,
		SaleValue: decimal.RequireFromString("3500"),
	})

	result, err := f.svc.Approve(ctx, approvaldomain.ApproveRequest{
		CallID:  callID.String(),
		AdminID: admin.String(),
	})
	require.NoError(t, err)
	assert.True(t, result.Success)
	require.NotNil(t, result.OriginatorCommission)
	require.NotNil(t, result.CloserCommission)
	assert.True(t, result.OriginatorCommission.Equal(decimal.RequireFromString("35")))
	assert.True(t, result.CloserCommission.Equal(decimal.RequireFromString("175")))

	records := f.commissionsForCall(t, callID)
	require.Len(t, records, 2)
	for _, record := range records {
		assert.Equal(t, commissiondomain.CommissionStatusPending, record.Status)
		assert.True(t, record.SaleValue.Equal(decimal.RequireFromString("3500")))
		assert.Equal(t, "general", record.ProductLine)
	}

	call := f.callByID(t, callID)
	assert.Equal(t, calldomain.ApprovalStatusApproved, call.ApprovalStatus)
	require.NotNil(t, call.ApprovedBy)
	assert.Equal(t, admin, *call.ApprovedBy)
	require.NotNil(t, call.ApprovedAt)
	assert.True(t, call.ApprovedAt.Equal(f.clock.Now()))

	var audits int64
	require.NoError(t, f.db.Model(&auditdomain.AuditLog{}).
		Where("action = ?", "call.approved").Count(&audits).Error)
	assert.Equal(t, int64(1), audits)
}

func TestApprove_CloserOnlyWithoutOriginator(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedBaselineDefaults(t)

	admin := f.seedIdentity(t, identitydomain.IdentityKindAdmin)
	closer := f.seedIdentity(t, identitydomain.IdentityKindSales)

	// Lead without an originator reference.
	leadID := f.seedLead(t, nil)

	callID := f.seedCall(t, calldomain.Call{
		LeadID:    &leadID,
		CloserID:  closer,
		SaleValue: decimal.RequireFromString("2000"),
	})

	result, err := f.svc.Approve(ctx, approvaldomain.ApproveRequest{
		CallID:  callID.String(),
		AdminID: admin.String(),
	})
	require.NoError(t, err)
	assert.Nil(t, result.OriginatorCommission)
	require.NotNil(t, result.CloserCommission)
	assert.True(t, result.CloserCommission.Equal(decimal.RequireFromString("100")))

	records := f.commissionsForCall(t, callID)
	require.Len(t, records, 1)
	assert.Equal(t, commissiondomain.RoleCloser, records[0].Role)
}

func TestApprove_IsTerminal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedBaselineDefaults(t)

	admin := f.seedIdentity(t, identitydomain.IdentityKindAdmin)
	closer := f.seedIdentity(t, identitydomain.IdentityKindSales)

	callID := f.seedCall(t, calldomain.Call{
		CloserID:  closer,
		SaleValue: decimal.RequireFromString("1000"),
	})

	_, err := f.svc.Approve(ctx, approvaldomain.ApproveRequest{
		CallID:  callID.String(),
		AdminID: admin.String(),
	})
	require.NoError(t, err)

	// A second approval finds the call already transitioned.
	_, err = f.svc.Approve(ctx, approvaldomain.ApproveRequest{
		CallID:  callID.String(),
		AdminID: admin.String(),
	})
	assert.ErrorIs(t, err, approvaldomain.ErrInvalidState)

	// And no extra commission rows appeared.
	records := f.commissionsForCall(t, callID)
	assert.Len(t, records, 1)
}

func TestApprove_SettledByAnotherReviewer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedBaselineDefaults(t)

	admin := f.seedIdentity(t, identitydomain.IdentityKindAdmin)
	closer := f.seedIdentity(t, identitydomain.IdentityKindSales)

	callID := f.seedCall(t, calldomain.Call{
		CloserID:  closer,
		SaleValue: decimal.RequireFromString("1000"),
	})

	// Another reviewer already settled the call.
	require.NoError(t, f.db.Exec(
		`UPDATE calls SET approval_status = ? WHERE id = ?`,
		calldomain.ApprovalStatusRejected, callID,
	).Error)

	_, err := f.svc.Approve(ctx, approvaldomain.ApproveRequest{
		CallID:  callID.String(),
		AdminID: admin.String(),
	})
	assert.ErrorIs(t, err, approvaldomain.ErrInvalidState)

	records := f.commissionsForCall(t, callID)
	assert.Empty(t, records)
}

func TestApprove_ReusesRecordFromInterruptedAttempt(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedBaselineDefaults(t)

	admin := f.seedIdentity(t, identitydomain.IdentityKindAdmin)
	closer := f.seedIdentity(t, identitydomain.IdentityKindSales)

	callID := f.seedCall(t, calldomain.Call{
		CloserID:  closer,
		SaleValue: decimal.RequireFromString("2000"),
	})

	// A prior attempt committed the commission row but the process died
	// before the status flipped. The retry must converge, not duplicate.
	require.NoError(t, f.db.Create(&commissiondomain.CommissionRecord{
		ID:            f.node.Generate(),
		CallID:        callID,
		Role:          commissiondomain.RoleCloser,
		BeneficiaryID: closer,
		SaleValue:     decimal.RequireFromString("2000"),
		Percentage:    decimal.RequireFromString("5"),
		Amount:        decimal.RequireFromString("100"),
		Status:        commissiondomain.CommissionStatusPending,
		ProductLine:   "general",
		CreatedAt:     time.Now().UTC(),
	}).Error)

	result, err := f.svc.Approve(ctx, approvaldomain.ApproveRequest{
		CallID:  callID.String(),
		AdminID: admin.String(),
	})
	require.NoError(t, err)
	assert.True(t, result.Success)

	records := f.commissionsForCall(t, callID)
	require.Len(t, records, 1)
	assert.Equal(t, calldomain.ApprovalStatusApproved, f.callByID(t, callID).ApprovalStatus)
}

func TestApprove_MissingRuleRollsBack(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	// No rules and no defaults seeded.

	admin := f.seedIdentity(t, identitydomain.IdentityKindAdmin)
	closer := f.seedIdentity(t, identitydomain.IdentityKindSales)

	callID := f.seedCall(t, calldomain.Call{
		CloserID:  closer,
		SaleValue: decimal.RequireFromString("1000"),
	})

	_, err := f.svc.Approve(ctx, approvaldomain.ApproveRequest{
		CallID:  callID.String(),
		AdminID: admin.String(),
	})
	assert.ErrorIs(t, err, ruledomain.ErrRuleNotFound)

	// Nothing was written and the call is still reviewable.
	assert.Empty(t, f.commissionsForCall(t, callID))
	assert.Equal(t, calldomain.ApprovalStatusPending, f.callByID(t, callID).ApprovalStatus)
}

func TestApprove_ProductLineRuleOverridesDefault(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedBaselineDefaults(t)

	admin := f.seedIdentity(t, identitydomain.IdentityKindAdmin)
	closer := f.seedIdentity(t, identitydomain.IdentityKindSales)

	productID := f.node.Generate()
	require.NoError(t, f.db.Create(&productdomain.Product{
		ID:          productID,
		Name:        "Premium Policy",
		ProductLine: "insurance",
		CreatedAt:   time.Now().UTC(),
	}).Error)

	now := time.Now().UTC()
	require.NoError(t, f.db.Create(&ruledomain.CommissionRule{
		ID:          f.node.Generate(),
		Role:        commissiondomain.RoleCloser,
		ProductLine: "insurance",
		Percentage:  decimal.RequireFromString("10"),
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}).Error)

	callID := f.seedCall(t, calldomain.Call{
		CloserID:  closer,
		ProductID: &productID,
		SaleValue: decimal.RequireFromString("2000"),
	})

	result, err := f.svc.Approve(ctx, approvaldomain.ApproveRequest{
		CallID:  callID.String(),
		AdminID: admin.String(),
	})
	require.NoError(t, err)
	require.NotNil(t, result.CloserCommission)
	assert.True(t, result.CloserCommission.Equal(decimal.RequireFromString("200")))

	records := f.commissionsForCall(t, callID)
	require.Len(t, records, 1)
	assert.Equal(t, "insurance", records[0].ProductLine)
}

func TestApprove_Preconditions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedBaselineDefaults(t)

	admin := f.seedIdentity(t, identitydomain.IdentityKindAdmin)
	closer := f.seedIdentity(t, identitydomain.IdentityKindSales)

	// Unknown call.
	_, err := f.svc.Approve(ctx, approvaldomain.ApproveRequest{
		CallID:  f.node.Generate().String(),
		AdminID: admin.String(),
	})
	assert.ErrorIs(t, err, approvaldomain.ErrCallNotFound)

	// Malformed identifiers.
	_, err = f.svc.Approve(ctx, approvaldomain.ApproveRequest{
		CallID:  "garbage",
		AdminID: admin.String(),
	})
	assert.ErrorIs(t, err, approvaldomain.ErrInvalidID)

	// Non-sale outcome is not reviewable.
	noSaleID := f.seedCall(t, calldomain.Call{
		CloserID: closer,
		Outcome:  calldomain.CallOutcomeNoSale,
	})
	_, err = f.svc.Approve(ctx, approvaldomain.ApproveRequest{
		CallID:  noSaleID.String(),
		AdminID: admin.String(),
	})
	assert.ErrorIs(t, err, approvaldomain.ErrInvalidState)

	// Approver must be an admin identity.
	callID := f.seedCall(t, calldomain.Call{
		CloserID:  closer,
		SaleValue: decimal.RequireFromString("1000"),
	})
	_, err = f.svc.Approve(ctx, approvaldomain.ApproveRequest{
		CallID:  callID.String(),
		AdminID: closer.String(),
	})
	assert.ErrorIs(t, err, approvaldomain.ErrApproverNotFound)

	_, err = f.svc.Approve(ctx, approvaldomain.ApproveRequest{
		CallID:  callID.String(),
		AdminID: f.node.Generate().String(),
	})
	assert.ErrorIs(t, err, approvaldomain.ErrApproverNotFound)
}

func TestReject_NoCommissions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedBaselineDefaults(t)

	admin := f.seedIdentity(t, identitydomain.IdentityKindAdmin)
	closer := f.seedIdentity(t, identitydomain.IdentityKindSales)
	originator := f.seedIdentity(t, identitydomain.IdentityKindSales)
	leadID := f.seedLead(t, &originator)

	callID := f.seedCall(t, calldomain.Call{
		LeadID:    &leadID,
		CloserID:  closer,
		SaleValue: decimal.RequireFromString("3500"),
	})

	result, err := f.svc.Reject(ctx, approvaldomain.RejectRequest{
		CallID:  callID.String(),
		AdminID: admin.String(),
	})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Nil(t, result.OriginatorCommission)
	assert.Nil(t, result.CloserCommission)

	assert.Empty(t, f.commissionsForCall(t, callID))

	call := f.callByID(t, callID)
	assert.Equal(t, calldomain.ApprovalStatusRejected, call.ApprovalStatus)

	// Rejection is terminal; a later approval fails.
	_, err = f.svc.Approve(ctx, approvaldomain.ApproveRequest{
		CallID:  callID.String(),
		AdminID: admin.String(),
	})
	assert.ErrorIs(t, err, approvaldomain.ErrInvalidState)
}
