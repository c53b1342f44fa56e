package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/sellside/closedesk/internal/commission/domain"
	"github.com/sellside/closedesk/internal/commission/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (domain.Service, *gorm.DB, *snowflake.Node) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.CommissionRecord{}))

	// SQLite requires the matching unique index for ON CONFLICT.
	require.NoError(t, db.Exec(
		"CREATE UNIQUE INDEX IF NOT EXISTS ux_commission_records_call_role ON commission_records(call_id, role)",
	).Error)

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.Provide(),
	})
	return svc, db, node
}

func TestWrite_Idempotent(t *testing.T) {
	svc, db, node := newTestService(t)
	ctx := context.Background()

	callID := node.Generate()
	beneficiary := node.Generate()

	input := domain.WriteCommissionInput{
		CallID:        callID,
		Role:          domain.RoleCloser,
		BeneficiaryID: beneficiary,
		SaleValue:     decimal.RequireFromString("2000"),
		Percentage:    decimal.RequireFromString("5"),
		Amount:        decimal.RequireFromString("100"),
		ProductLine:   "general",
	}

	first, err := svc.Write(ctx, input)
	require.NoError(t, err)
	assert.Equal(t, callID, first.CallID)
	assert.Equal(t, domain.CommissionStatusPending, first.Status)

	// A second write for the same (call, role) returns the stored row.
	input.Amount = decimal.RequireFromString("999")
	second, err := svc.Write(ctx, input)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.True(t, second.Amount.Equal(decimal.RequireFromString("100")))

	var count int64
	require.NoError(t, db.Model(&domain.CommissionRecord{}).
		Where("call_id = ?", callID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestWrite_DistinctRoles(t *testing.T) {
	svc, db, node := newTestService(t)
	ctx := context.Background()

	callID := node.Generate()

	for _, role := range []domain.Role{domain.RoleOriginator, domain.RoleCloser} {
		_, err := svc.Write(ctx, domain.WriteCommissionInput{
			CallID:        callID,
			Role:          role,
			BeneficiaryID: node.Generate(),
			SaleValue:     decimal.RequireFromString("3500"),
			Percentage:    decimal.RequireFromString("1"),
			Amount:        decimal.RequireFromString("35"),
		})
		require.NoError(t, err)
	}

	var count int64
	require.NoError(t, db.Model(&domain.CommissionRecord{}).
		Where("call_id = ?", callID).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestWrite_Validation(t *testing.T) {
	svc, _, node := newTestService(t)
	ctx := context.Background()

	_, err := svc.Write(ctx, domain.WriteCommissionInput{
		Role:          domain.RoleCloser,
		BeneficiaryID: node.Generate(),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidCall)

	_, err = svc.Write(ctx, domain.WriteCommissionInput{
		CallID:        node.Generate(),
		Role:          "manager",
		BeneficiaryID: node.Generate(),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidRole)

	_, err = svc.Write(ctx, domain.WriteCommissionInput{
		CallID: node.Generate(),
		Role:   domain.RoleCloser,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidBeneficiary)

	_, err = svc.Write(ctx, domain.WriteCommissionInput{
		CallID:        node.Generate(),
		Role:          domain.RoleCloser,
		BeneficiaryID: node.Generate(),
		Amount:        decimal.RequireFromString("-1"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
}

func TestList_Filters(t *testing.T) {
	svc, _, node := newTestService(t)
	ctx := context.Background()

	callID := node.Generate()
	beneficiary := node.Generate()
	other := node.Generate()

	_, err := svc.Write(ctx, domain.WriteCommissionInput{
		CallID:        callID,
		Role:          domain.RoleCloser,
		BeneficiaryID: beneficiary,
		SaleValue:     decimal.RequireFromString("2000"),
		Percentage:    decimal.RequireFromString("5"),
		Amount:        decimal.RequireFromString("100"),
	})
	require.NoError(t, err)

	_, err = svc.Write(ctx, domain.WriteCommissionInput{
		CallID:        node.Generate(),
		Role:          domain.RoleCloser,
		BeneficiaryID: other,
		SaleValue:     decimal.RequireFromString("1000"),
		Percentage:    decimal.RequireFromString("5"),
		Amount:        decimal.RequireFromString("50"),
	})
	require.NoError(t, err)

	resp, err := svc.List(ctx, domain.ListCommissionRequest{
		BeneficiaryID: beneficiary.String(),
	})
	require.NoError(t, err)
	require.Len(t, resp.Commissions, 1)
	assert.Equal(t, callID, resp.Commissions[0].CallID)

	resp, err = svc.List(ctx, domain.ListCommissionRequest{Status: "pending"})
	require.NoError(t, err)
	assert.Len(t, resp.Commissions, 2)

	_, err = svc.List(ctx, domain.ListCommissionRequest{Status: "settled"})
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)

	_, err = svc.List(ctx, domain.ListCommissionRequest{CallID: "not-a-number"})
	assert.ErrorIs(t, err, domain.ErrInvalidCall)
}
