package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderItem struct {
	ID                  string          `gorm:"type:uuid;primaryKey" json:"id"`
	OrderID             string          `gorm:"type:uuid;not null;index" json:"order_id"`
	ProductID           string          `gorm:"type:uuid;not null;index" json:"product_id"`
	VariantKey          string          `gorm:"type:varchar(50);not null" json:"variant_key"`
	ProductNameSnapshot string          `gorm:"type:varchar(255);not null" json:"product_name_snapshot"`
	UnitPriceSnapshot   decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"unit_price_snapshot"`
	Quantity            int64           `gorm:"not null" json:"quantity"`
	CreatedAt           time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
}
