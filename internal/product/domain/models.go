package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// ProductLineDefault is the fallback tag used when a call has no product
// reference or the product carries no line. Rule resolution and ledger
// tagging share this single constant.
const ProductLineDefault = "general"

// Product is a sellable offering grouped into a commission-bearing line.
type Product struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	Name        string       `gorm:"type:text;not null" json:"name"`
	ProductLine string       `gorm:"type:text;not null;index" json:"product_line"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (Product) TableName() string { return "products" }

// NormalizeProductLine maps an empty or missing line to the default tag.
func NormalizeProductLine(line string) string {
	if line == "" {
		return ProductLineDefault
	}
	return line
}
