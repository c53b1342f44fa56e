package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/sellside/closedesk/internal/lead/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, lead *domain.Lead) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO leads (id, originator_id, name, created_at)
		 VALUES (?, ?, ?, ?)`,
		lead.ID,
		lead.OriginatorID,
		lead.Name,
		lead.CreatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Lead, error) {
	var lead domain.Lead
	err := db.WithContext(ctx).Raw(
		`SELECT id, originator_id, name, created_at FROM leads WHERE id = ?`,
		id,
	).Scan(&lead).Error
	if err != nil {
		return nil, err
	}
	if lead.ID == 0 {
		return nil, nil
	}
	return &lead, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB) ([]*domain.Lead, error) {
	var leads []*domain.Lead
	err := db.WithContext(ctx).Model(&domain.Lead{}).
		Order("created_at desc, id desc").
		Find(&leads).Error
	if err != nil {
		return nil, err
	}
	return leads, nil
}
