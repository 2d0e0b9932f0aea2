package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Product struct {
	ID          string           `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string           `gorm:"type:varchar(255);not null" json:"name"`
	Description string           `gorm:"type:text" json:"description"`
	ImageURL    string           `gorm:"type:text" json:"image_url"`
	Price       decimal.Decimal  `gorm:"type:numeric(12,2);not null" json:"price"`
	IsActive    bool             `gorm:"not null;default:false" json:"is_active"`
	Variants    []ProductVariant `gorm:"foreignKey:ProductID" json:"variants,omitempty"`
	CreatedAt   time.Time        `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time        `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt   `gorm:"index" json:"-"`
}

// バリアント（3ml / 6ml など容量違い）ごとの価格。
// variant_key に対応する行が無い場合は Product.Price にフォールバックする。
type ProductVariant struct {
	ID         string          `gorm:"type:uuid;primaryKey" json:"id"`
	ProductID  string          `gorm:"type:uuid;not null;uniqueIndex:idx_product_variant" json:"product_id"`
	VariantKey string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_product_variant" json:"variant_key"`
	Price      decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	CreatedAt  time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time       `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
