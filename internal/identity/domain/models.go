package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// IdentityKind separates approvers from sales roles.
type IdentityKind string

const (
	IdentityKindAdmin IdentityKind = "admin"
	IdentityKindSales IdentityKind = "sales"
)

// Identity is a person referenced by calls, leads, and commission records.
type Identity struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	Kind      IdentityKind `gorm:"type:text;not null;index" json:"kind"`
	Name      string       `gorm:"type:text;not null" json:"name"`
	Email     string       `gorm:"type:text;not null" json:"email"`
	Active    bool         `gorm:"not null;default:true" json:"active"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (Identity) TableName() string { return "identities" }
