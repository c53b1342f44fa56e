package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	commissiondomain "github.com/sellside/closedesk/internal/commission/domain"
	"github.com/sellside/closedesk/internal/commissionrule/domain"
	"github.com/sellside/closedesk/internal/commissionrule/repository"
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
	require.NoError(t, db.AutoMigrate(&domain.CommissionRule{}, &domain.CommissionRuleDefault{}))

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

func seedDefault(t *testing.T, db *gorm.DB, node *snowflake.Node, role commissiondomain.Role, percentage string, version int) {
	t.Helper()
	require.NoError(t, db.Create(&domain.CommissionRuleDefault{
		ID:         node.Generate(),
		Role:       role,
		Percentage: decimal.RequireFromString(percentage),
		Version:    version,
		CreatedAt:  time.Now().UTC(),
	}).Error)
}

func TestResolve_ExactRuleWins(t *testing.T) {
	svc, db, node := newTestService(t)
	ctx := context.Background()

	seedDefault(t, db, node, commissiondomain.RoleCloser, "5", 1)

	_, err := svc.Create(ctx, domain.CreateRuleRequest{
		Role:        "closer",
		ProductLine: "insurance",
		Percentage:  "7.5",
	})
	require.NoError(t, err)

	res, err := svc.Resolve(ctx, commissiondomain.RoleCloser, "insurance")
	require.NoError(t, err)
	assert.False(t, res.FromDefault)
	assert.True(t, res.Percentage.Equal(decimal.RequireFromString("7.5")))
	assert.Equal(t, "insurance", res.ProductLine)
}

func TestResolve_FallsBackToLatestDefault(t *testing.T) {
	svc, db, node := newTestService(t)
	ctx := context.Background()

	seedDefault(t, db, node, commissiondomain.RoleOriginator, "1", 1)
	seedDefault(t, db, node, commissiondomain.RoleOriginator, "1.5", 2)

	res, err := svc.Resolve(ctx, commissiondomain.RoleOriginator, "insurance")
	require.NoError(t, err)
	assert.True(t, res.FromDefault)
	assert.True(t, res.Percentage.Equal(decimal.RequireFromString("1.5")))
}

func TestResolve_NoRuleNoDefault(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Resolve(context.Background(), commissiondomain.RoleCloser, "insurance")
	assert.ErrorIs(t, err, domain.ErrRuleNotFound)
}

func TestResolve_EmptyLineUsesGeneral(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.CreateRuleRequest{
		Role:        "closer",
		ProductLine: "",
		Percentage:  "4",
	})
	require.NoError(t, err)

	res, err := svc.Resolve(ctx, commissiondomain.RoleCloser, "")
	require.NoError(t, err)
	assert.Equal(t, "general", res.ProductLine)
	assert.True(t, res.Percentage.Equal(decimal.RequireFromString("4")))
}

func TestResolve_IgnoresInactiveRule(t *testing.T) {
	svc, db, node := newTestService(t)
	ctx := context.Background()

	seedDefault(t, db, node, commissiondomain.RoleCloser, "5", 1)

	rule, err := svc.Create(ctx, domain.CreateRuleRequest{
		Role:        "closer",
		ProductLine: "insurance",
		Percentage:  "9",
	})
	require.NoError(t, err)
	require.NoError(t, svc.Deactivate(ctx, rule.ID.String()))

	res, err := svc.Resolve(ctx, commissiondomain.RoleCloser, "insurance")
	require.NoError(t, err)
	assert.True(t, res.FromDefault)
	assert.True(t, res.Percentage.Equal(decimal.RequireFromString("5")))
}

func TestCreate_Validation(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.CreateRuleRequest{Role: "manager", Percentage: "5"})
	assert.ErrorIs(t, err, commissiondomain.ErrInvalidRole)

	_, err = svc.Create(ctx, domain.CreateRuleRequest{Role: "closer", Percentage: "101"})
	assert.ErrorIs(t, err, domain.ErrInvalidPercentage)

	_, err = svc.Create(ctx, domain.CreateRuleRequest{Role: "closer", Percentage: "-1"})
	assert.ErrorIs(t, err, domain.ErrInvalidPercentage)

	_, err = svc.Create(ctx, domain.CreateRuleRequest{Role: "closer", Percentage: "abc"})
	assert.ErrorIs(t, err, domain.ErrInvalidPercentage)
}

func TestDeactivate_NotFound(t *testing.T) {
	svc, _, node := newTestService(t)

	err := svc.Deactivate(context.Background(), node.Generate().String())
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = svc.Deactivate(context.Background(), "garbage")
	assert.ErrorIs(t, err, domain.ErrInvalidID)
}
