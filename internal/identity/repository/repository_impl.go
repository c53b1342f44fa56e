package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/sellside/closedesk/internal/identity/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, identity *domain.Identity) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO identities (id, kind, name, email, active, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		identity.ID,
		identity.Kind,
		identity.Name,
		identity.Email,
		identity.Active,
		identity.CreatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Identity, error) {
	var identity domain.Identity
	err := db.WithContext(ctx).Raw(
		`SELECT id, kind, name, email, active, created_at
		 FROM identities WHERE id = ?`,
		id,
	).Scan(&identity).Error
	if err != nil {
		return nil, err
	}
	if identity.ID == 0 {
		return nil, nil
	}
	return &identity, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, kind domain.IdentityKind) ([]*domain.Identity, error) {
	var identities []*domain.Identity
	stmt := db.WithContext(ctx).Model(&domain.Identity{})
	if kind != "" {
		stmt = stmt.Where("kind = ?", kind)
	}
	err := stmt.Order("created_at desc, id desc").Find(&identities).Error
	if err != nil {
		return nil, err
	}
	return identities, nil
}
