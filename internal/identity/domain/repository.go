package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, identity *Identity) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Identity, error)
	List(ctx context.Context, db *gorm.DB, kind IdentityKind) ([]*Identity, error)
}
