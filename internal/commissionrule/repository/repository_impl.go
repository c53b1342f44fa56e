package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	commissiondomain "github.com/sellside/closedesk/internal/commission/domain"
	"github.com/sellside/closedesk/internal/commissionrule/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, rule *domain.CommissionRule) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO commission_rules (id, role, product_line, percentage, active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rule.ID,
		rule.Role,
		rule.ProductLine,
		rule.Percentage,
		rule.Active,
		rule.CreatedAt,
		rule.UpdatedAt,
	).Error
}

func (r *repo) FindActive(ctx context.Context, db *gorm.DB, role commissiondomain.Role, productLine string) (*domain.CommissionRule, error) {
	var rule domain.CommissionRule
	err := db.WithContext(ctx).Raw(
		`SELECT id, role, product_line, percentage, active, created_at, updated_at
		 FROM commission_rules
		 WHERE role = ? AND product_line = ? AND active
		 ORDER BY updated_at DESC, id DESC
		 LIMIT 1`,
		role,
		productLine,
	).Scan(&rule).Error
	if err != nil {
		return nil, err
	}
	if rule.ID == 0 {
		return nil, nil
	}
	return &rule, nil
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.CommissionRule, error) {
	var rule domain.CommissionRule
	err := db.WithContext(ctx).Raw(
		`SELECT id, role, product_line, percentage, active, created_at, updated_at
		 FROM commission_rules WHERE id = ?`,
		id,
	).Scan(&rule).Error
	if err != nil {
		return nil, err
	}
	if rule.ID == 0 {
		return nil, nil
	}
	return &rule, nil
}

func (r *repo) SetActive(ctx context.Context, db *gorm.DB, id snowflake.ID, active bool) error {
	return db.WithContext(ctx).Exec(
		`UPDATE commission_rules SET active = ?, updated_at = ? WHERE id = ?`,
		active,
		time.Now().UTC(),
		id,
	).Error
}

func (r *repo) List(ctx context.Context, db *gorm.DB, role commissiondomain.Role) ([]*domain.CommissionRule, error) {
	var rules []*domain.CommissionRule
	stmt := db.WithContext(ctx).Model(&domain.CommissionRule{})
	if role != "" {
		stmt = stmt.Where("role = ?", role)
	}
	err := stmt.Order("role asc, product_line asc, updated_at desc").Find(&rules).Error
	if err != nil {
		return nil, err
	}
	return rules, nil
}

func (r *repo) FindLatestDefault(ctx context.Context, db *gorm.DB, role commissiondomain.Role) (*domain.CommissionRuleDefault, error) {
	var def domain.CommissionRuleDefault
	err := db.WithContext(ctx).Raw(
		`SELECT id, role, percentage, version, created_at
		 FROM commission_rule_defaults
		 WHERE role = ?
		 ORDER BY version DESC
		 LIMIT 1`,
		role,
	).Scan(&def).Error
	if err != nil {
		return nil, err
	}
	if def.ID == 0 {
		return nil, nil
	}
	return &def, nil
}

func (r *repo) ListDefaults(ctx context.Context, db *gorm.DB) ([]*domain.CommissionRuleDefault, error) {
	var defaults []*domain.CommissionRuleDefault
	err := db.WithContext(ctx).Model(&domain.CommissionRuleDefault{}).
		Order("role asc, version desc").
		Find(&defaults).Error
	if err != nil {
		return nil, err
	}
	return defaults, nil
}
