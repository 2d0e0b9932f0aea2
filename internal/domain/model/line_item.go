package model

import "github.com/shopspring/decimal"

// カートの1行。
// (ProductID, VariantKey) がカート内の一意キーで、同じ組は数量加算に統合する。
// UnitPrice は選択時点の価格スナップショット。
type LineItem struct {
	ProductID  string          `json:"productId"`
	VariantKey string          `json:"variantKey"`
	Name       string          `json:"name"`
	ImageURL   string          `json:"imageUrl"`
	UnitPrice  decimal.Decimal `json:"unitPrice"`
	Quantity   int64           `json:"quantity"`
}

// 同じ行か（productId + variantKey）
func (li LineItem) SameKey(productID string, variantKey string) bool {
	return li.ProductID == productID && li.VariantKey == variantKey
}

// 行の小計（丸めない）
func (li LineItem) LineTotal() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(li.Quantity))
}

// 復元データの構造チェック。壊れた行は捨てて空カート扱いにする。
func (li LineItem) Valid() bool {
	if li.ProductID == "" || li.VariantKey == "" {
		return false
	}
	if li.Quantity < 1 {
		return false
	}
	return !li.UnitPrice.IsNegative()
}
