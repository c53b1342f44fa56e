package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Lead is a prospective customer, optionally tied to the prospecting
// identity that originated it. OriginatorID is a weak reference: it is
// recorded as-is and validated at the application layer, never by a
// storage constraint.
type Lead struct {
	ID           snowflake.ID  `gorm:"primaryKey" json:"id"`
	OriginatorID *snowflake.ID `gorm:"index" json:"originator_id,omitempty"`
	Name         string        `gorm:"type:text;not null" json:"name"`
	CreatedAt    time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (Lead) TableName() string { return "leads" }
