package usecase

import (
	"github.com/Niaj-FreshNet/khushbuwaala-sub001/internal/domain/model"
	"github.com/shopspring/decimal"
)

// 金額計算はすべて副作用なしの純関数。
// 丸めは表示時（DisplayAmount）だけで、計算の途中では丸めない。

var hundred = decimal.NewFromInt(100)

// Subtotal は unitPrice×quantity の合計。空なら0。
func Subtotal(items []model.LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.LineTotal())
	}
	return total
}

// DiscountAmount は値引き額を返す。
// percentage は小計への割合（0〜100にクランプ）、fixed は小計を上限とする。
func DiscountAmount(subtotal decimal.Decimal, d model.Discount) decimal.Decimal {
	if subtotal.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}

	switch d.Kind {
	case model.DiscountPercentage:
		v := d.Value
		if v.IsNegative() {
			return decimal.Zero
		}
		if v.GreaterThan(hundred) {
			v = hundred
		}
		return subtotal.Mul(v).Div(hundred)

	case model.DiscountFixed:
		if d.Value.IsNegative() {
			return decimal.Zero
		}
		if d.Value.GreaterThan(subtotal) {
			return subtotal
		}
		return d.Value

	default:
		return decimal.Zero
	}
}

// Total = max(0, subtotal − discount) + shipping。負にはならない。
func Total(items []model.LineItem, discount *model.Discount, shipping decimal.Decimal) decimal.Decimal {
	sub := Subtotal(items)
	if discount != nil {
		sub = sub.Sub(DiscountAmount(sub, *discount))
	}
	if sub.IsNegative() {
		sub = decimal.Zero
	}
	if shipping.IsNegative() {
		shipping = decimal.Zero
	}
	return sub.Add(shipping)
}

// DisplayAmount は表示用の丸め（小数2桁）。
func DisplayAmount(v decimal.Decimal) string {
	return v.StringFixed(2)
}
