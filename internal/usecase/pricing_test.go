package usecase_test

import (
	"testing"

	"github.com/Niaj-FreshNet/khushbuwaala-sub001/internal/domain/model"
	"github.com/Niaj-FreshNet/khushbuwaala-sub001/internal/usecase"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func lineItem(productID, variantKey string, qty int64, unitPrice string) model.LineItem {
	return model.LineItem{
		ProductID:  productID,
		VariantKey: variantKey,
		UnitPrice:  decimal.RequireFromString(unitPrice),
		Quantity:   qty,
	}
}

func TestSubtotal_EmptyIsZero(t *testing.T) {
	assert.Equal(t, "0", usecase.Subtotal(nil).String())
	assert.Equal(t, "0", usecase.Subtotal([]model.LineItem{}).String())
}

func TestSubtotal_SumsLineTotals(t *testing.T) {
	items := []model.LineItem{
		lineItem("P1", "3ml", 3, "500"),
		lineItem("P2", "6ml", 2, "900"),
	}
	assert.Equal(t, "3300", usecase.Subtotal(items).String())
}

func TestSubtotal_NoIntermediateRounding(t *testing.T) {
	// 0.1×3 のような値でも積み上げで誤差を出さない
	items := []model.LineItem{
		lineItem("P1", "3ml", 3, "0.1"),
		lineItem("P2", "6ml", 1, "0.05"),
	}
	sub := usecase.Subtotal(items)
	assert.True(t, sub.Equal(decimal.RequireFromString("0.35")), "got %s", sub)
}

func TestSubtotal_IncreasesWithQuantity(t *testing.T) {
	base := []model.LineItem{lineItem("P1", "3ml", 2, "500")}
	more := []model.LineItem{lineItem("P1", "3ml", 3, "500")}

	assert.True(t, usecase.Subtotal(base).GreaterThanOrEqual(decimal.Zero))
	assert.True(t, usecase.Subtotal(more).GreaterThan(usecase.Subtotal(base)))
}

func TestDiscountAmount_Percentage(t *testing.T) {
	sub := decimal.NewFromInt(1000)

	d := usecase.DiscountAmount(sub, model.Discount{Kind: model.DiscountPercentage, Value: decimal.NewFromInt(10)})
	assert.Equal(t, "100", d.String())

	// 100%超は100%にクランプ
	d = usecase.DiscountAmount(sub, model.Discount{Kind: model.DiscountPercentage, Value: decimal.NewFromInt(150)})
	assert.Equal(t, "1000", d.String())

	// 負はゼロ
	d = usecase.DiscountAmount(sub, model.Discount{Kind: model.DiscountPercentage, Value: decimal.NewFromInt(-10)})
	assert.Equal(t, "0", d.String())
}

func TestDiscountAmount_FixedCappedAtSubtotal(t *testing.T) {
	sub := decimal.NewFromInt(1000)

	d := usecase.DiscountAmount(sub, model.Discount{Kind: model.DiscountFixed, Value: decimal.NewFromInt(300)})
	assert.Equal(t, "300", d.String())

	d = usecase.DiscountAmount(sub, model.Discount{Kind: model.DiscountFixed, Value: decimal.NewFromInt(1200)})
	assert.Equal(t, "1000", d.String())
}

func TestTotal_PercentageDiscount(t *testing.T) {
	items := []model.LineItem{lineItem("P1", "3ml", 2, "500")}
	d := model.Discount{Kind: model.DiscountPercentage, Value: decimal.NewFromInt(10)}

	total := usecase.Total(items, &d, decimal.Zero)
	assert.Equal(t, "900", total.String())
}

func TestTotal_NeverNegative(t *testing.T) {
	items := []model.LineItem{lineItem("P1", "3ml", 2, "500")}
	d := model.Discount{Kind: model.DiscountFixed, Value: decimal.NewFromInt(1200)}

	total := usecase.Total(items, &d, decimal.Zero)
	assert.Equal(t, "0", total.String())
}

func TestTotal_AddsShippingAfterFloor(t *testing.T) {
	items := []model.LineItem{lineItem("P1", "3ml", 2, "500")}
	d := model.Discount{Kind: model.DiscountFixed, Value: decimal.NewFromInt(1200)}

	total := usecase.Total(items, &d, decimal.NewFromInt(60))
	assert.Equal(t, "60", total.String())
}

func TestTotal_NoDiscountEqualsSubtotalPlusShipping(t *testing.T) {
	items := []model.LineItem{
		lineItem("P1", "3ml", 1, "500"),
		lineItem("P2", "6ml", 1, "900"),
	}
	total := usecase.Total(items, nil, decimal.Zero)
	assert.True(t, total.Equal(usecase.Subtotal(items)))
}

func TestDisplayAmount_RoundsToTwoPlaces(t *testing.T) {
	assert.Equal(t, "1234.50", usecase.DisplayAmount(decimal.RequireFromString("1234.5")))
	assert.Equal(t, "0.33", usecase.DisplayAmount(decimal.RequireFromString("0.333")))
	assert.Equal(t, "100.00", usecase.DisplayAmount(decimal.NewFromInt(100)))
}
