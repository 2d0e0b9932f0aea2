package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type DiscountKind string

const (
	// 小計に対する割合（0〜100）
	DiscountPercentage DiscountKind = "percentage"
	// 固定額の値引き（小計を上限とする）
	DiscountFixed DiscountKind = "fixed"
)

// 適用する値引き。小計と合わせて pricing で金額に変換する。
type Discount struct {
	Kind  DiscountKind
	Value decimal.Decimal
}

// クーポンマスタ。
type Coupon struct {
	ID        string          `gorm:"type:uuid;primaryKey" json:"id"`
	Code      string          `gorm:"type:varchar(50);not null;uniqueIndex" json:"code"`
	Kind      DiscountKind    `gorm:"type:varchar(20);not null" json:"kind"`
	Value     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"value"`
	IsActive  bool            `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time       `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (c Coupon) Discount() Discount {
	return Discount{Kind: c.Kind, Value: c.Value}
}
