package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/sellside/closedesk/internal/call/domain"
	"github.com/sellside/closedesk/internal/call/repository"
	identitydomain "github.com/sellside/closedesk/internal/identity/domain"
	identityrepository "github.com/sellside/closedesk/internal/identity/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (domain.Service, *gorm.DB, *snowflake.Node) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Call{}, &identitydomain.Identity{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{
		DB:           db,
		Log:          zap.NewNop(),
		GenID:        node,
		Repo:         repository.Provide(),
		IdentityRepo: identityrepository.Provide(),
	})
	return svc, db, node
}

func seedIdentity(t *testing.T, db *gorm.DB, node *snowflake.Node, kind identitydomain.IdentityKind) snowflake.ID {
	t.Helper()
	id := node.Generate()
	require.NoError(t, db.Create(&identitydomain.Identity{
		ID:        id,
		Kind:      kind,
		Name:      "Test " + string(kind),
		Email:     string(kind) + "@example.com",
		Active:    true,
		CreatedAt: time.Now().UTC(),
	}).Error)
	return id
}

func TestLog_SaleCall(t *testing.T) {
	svc, db, node := newTestService(t)
	ctx := context.Background()

	closerID := seedIdentity(t, db, node, identitydomain.IdentityKindSales)

	call, err := svc.Log(ctx, domain.LogCallRequest{
		CloserID:  closerID.String(),
		SaleValue: "3500",
		Outcome:   "sale",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.CallOutcomeSale, call.Outcome)
	assert.Equal(t, domain.ApprovalStatusPending, call.ApprovalStatus)
	assert.Nil(t, call.LeadID)
	assert.Nil(t, call.ProductID)

	fetched, err := svc.GetByID(ctx, domain.GetCallRequest{ID: call.ID.String()})
	require.NoError(t, err)
	assert.Equal(t, call.ID, fetched.ID)
	assert.True(t, fetched.SaleValue.Equal(call.SaleValue))
}

func TestLog_RejectsNonSalesCloser(t *testing.T) {
	svc, db, node := newTestService(t)
	ctx := context.Background()

	adminID := seedIdentity(t, db, node, identitydomain.IdentityKindAdmin)

	_, err := svc.Log(ctx, domain.LogCallRequest{
		CloserID:  adminID.String(),
		SaleValue: "100",
		Outcome:   "sale",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidCloser)

	_, err = svc.Log(ctx, domain.LogCallRequest{
		CloserID: node.Generate().String(),
		Outcome:  "no_sale",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidCloser)
}

func TestLog_SaleRequiresPositiveValue(t *testing.T) {
	svc, db, node := newTestService(t)
	ctx := context.Background()

	closerID := seedIdentity(t, db, node, identitydomain.IdentityKindSales)

	_, err := svc.Log(ctx, domain.LogCallRequest{
		CloserID: closerID.String(),
		Outcome:  "sale",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidSaleValue)

	_, err = svc.Log(ctx, domain.LogCallRequest{
		CloserID:  closerID.String(),
		SaleValue: "-10",
		Outcome:   "sale",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidSaleValue)

	// Non-sale outcomes accept a zero value.
	call, err := svc.Log(ctx, domain.LogCallRequest{
		CloserID: closerID.String(),
		Outcome:  "no_sale",
	})
	require.NoError(t, err)
	assert.True(t, call.SaleValue.IsZero())
}

func TestLog_InvalidOutcome(t *testing.T) {
	svc, db, node := newTestService(t)

	closerID := seedIdentity(t, db, node, identitydomain.IdentityKindSales)

	_, err := svc.Log(context.Background(), domain.LogCallRequest{
		CloserID: closerID.String(),
		Outcome:  "maybe",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidOutcome)
}

func TestList_FilterByStatusAndOutcome(t *testing.T) {
	svc, db, node := newTestService(t)
	ctx := context.Background()

	closerID := seedIdentity(t, db, node, identitydomain.IdentityKindSales)

	_, err := svc.Log(ctx, domain.LogCallRequest{
		CloserID:  closerID.String(),
		SaleValue: "1000",
		Outcome:   "sale",
	})
	require.NoError(t, err)
	_, err = svc.Log(ctx, domain.LogCallRequest{
		CloserID: closerID.String(),
		Outcome:  "no_sale",
	})
	require.NoError(t, err)

	resp, err := svc.List(ctx, domain.ListCallRequest{Outcome: "sale"})
	require.NoError(t, err)
	require.Len(t, resp.Calls, 1)
	assert.Equal(t, domain.CallOutcomeSale, resp.Calls[0].Outcome)

	resp, err = svc.List(ctx, domain.ListCallRequest{ApprovalStatus: "pending"})
	require.NoError(t, err)
	assert.Len(t, resp.Calls, 2)

	_, err = svc.List(ctx, domain.ListCallRequest{ApprovalStatus: "maybe"})
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}

func TestGetByID_NotFound(t *testing.T) {
	svc, _, node := newTestService(t)

	_, err := svc.GetByID(context.Background(), domain.GetCallRequest{ID: node.Generate().String()})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.GetByID(context.Background(), domain.GetCallRequest{ID: "garbage"})
	assert.ErrorIs(t, err, domain.ErrInvalidID)
}
