package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending  OrderStatus = "PENDING"
	OrderStatusPaid     OrderStatus = "PAID"
	OrderStatusShipped  OrderStatus = "SHIPPED"
	OrderStatusCanceled OrderStatus = "CANCELED"
)

type Order struct {
	ID              string          `gorm:"type:uuid;primaryKey" json:"id"`
	SessionID       string          `gorm:"type:varchar(64);not null;index;uniqueIndex:idx_orders_session_idem" json:"-"`
	Status          OrderStatus     `gorm:"type:varchar(20);not null;index" json:"status"`
	Subtotal        decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"subtotal"`
	DiscountAmount  decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"discount_amount"`
	ShippingFee     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"shipping_fee"`
	TotalPrice      decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total_price"`
	CouponCode      string          `gorm:"type:varchar(50)" json:"coupon_code,omitempty"`
	CustomerName    string          `gorm:"type:varchar(255);not null" json:"customer_name"`
	CustomerEmail   string          `gorm:"type:varchar(255)" json:"customer_email"`
	CustomerPhone   string          `gorm:"type:varchar(50);not null" json:"customer_phone"`
	ShippingAddress string          `gorm:"type:text;not null" json:"shipping_address"`
	// 冪等キーはセッション単位で一意。別セッションが同じ値を使っても衝突しない。
	IdempotencyKey string    `gorm:"type:varchar(255);not null;uniqueIndex:idx_orders_session_idem" json:"-"`
	CreatedAt      time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
