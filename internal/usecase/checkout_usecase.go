package usecase

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/Niaj-FreshNet/khushbuwaala-sub001/internal/domain/model"
	repo "github.com/Niaj-FreshNet/khushbuwaala-sub001/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CheckoutUsecase は「今すぐ購入」の一時状態と注文確定を受け持つ。
// override はカート本体とは完全に独立で、どちらの変更も相手に波及しない。
type CheckoutUsecase struct {
	mu        sync.Mutex
	overrides map[string]model.CheckoutOverride

	cart     *CartUsecase
	products *ProductUsecase
	orders   repo.OrderRepository
	coupons  repo.CouponRepository

	shippingFee decimal.Decimal
	log         *zap.Logger
}

func NewCheckoutUsecase(
	cart *CartUsecase,
	products *ProductUsecase,
	orders repo.OrderRepository,
	coupons repo.CouponRepository,
	shippingFee decimal.Decimal,
	log *zap.Logger,
) *CheckoutUsecase {
	return &CheckoutUsecase{
		overrides:   make(map[string]model.CheckoutOverride),
		cart:        cart,
		products:    products,
		orders:      orders,
		coupons:     coupons,
		shippingFee: shippingFee,
		log:         log,
	}
}

// SetOverride は「今すぐ購入」を有効にする。カートは読みも書きもしない。
// リロードで消える一時状態なので永続化しない。
func (u *CheckoutUsecase) SetOverride(ctx context.Context, sessionID string, productID string, variantKey string, qty int64) (model.LineItem, error) {
	item, err := u.products.ResolveLineItem(ctx, productID, variantKey, qty)
	if err != nil {
		return model.LineItem{}, err
	}

	u.mu.Lock()
	u.overrides[sessionID] = model.CheckoutOverride{Item: &item, Active: true}
	u.mu.Unlock()

	return item, nil
}

// ClearOverride は「カート全体で進む」を選んだとき、または購入完了時に呼ぶ。
func (u *CheckoutUsecase) ClearOverride(sessionID string) {
	u.mu.Lock()
	delete(u.overrides, sessionID)
	u.mu.Unlock()
}

// Override は現在の一時状態を返す（未設定なら inactive）。
func (u *CheckoutUsecase) Override(sessionID string) model.CheckoutOverride {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.overrides[sessionID]
}

// activeItems はチェックアウト対象の明細を返す。
// override が有効ならその1行だけを使い、カートは無視する。
func (u *CheckoutUsecase) activeItems(ctx context.Context, sessionID string) ([]model.LineItem, bool) {
	ov := u.Override(sessionID)
	if ov.Active && ov.Item != nil {
		return []model.LineItem{*ov.Item}, true
	}
	return u.cart.Items(ctx, sessionID), false
}

// resolveCoupon はコードから値引きを引く。コード無しは値引き無し。
func (u *CheckoutUsecase) resolveCoupon(ctx context.Context, code string) (*model.Discount, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, nil
	}

	c, err := u.coupons.FindActiveByCode(ctx, code)
	if err == repo.ErrNotFound {
		return nil, NewHTTPError(http.StatusBadRequest, "invalid coupon")
	}
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	d := c.Discount()
	return &d, nil
}

// 金額は表示用に2桁で丸めて返す（計算は丸めない）。
type QuoteOutput struct {
	Items          []model.LineItem `json:"items"`
	BuyNow         bool             `json:"buy_now"`
	Subtotal       string           `json:"subtotal"`
	DiscountAmount string           `json:"discount_amount"`
	ShippingFee    string           `json:"shipping_fee"`
	Total          string           `json:"total"`
}

// Quote はチェックアウト画面の見積もり。状態は変更しない。
func (u *CheckoutUsecase) Quote(ctx context.Context, sessionID string, couponCode string) (QuoteOutput, error) {
	items, buyNow := u.activeItems(ctx, sessionID)

	discount, err := u.resolveCoupon(ctx, couponCode)
	if err != nil {
		return QuoteOutput{}, err
	}

	sub := Subtotal(items)
	var discAmt decimal.Decimal
	if discount != nil {
		discAmt = DiscountAmount(sub, *discount)
	}

	return QuoteOutput{
		Items:          items,
		BuyNow:         buyNow,
		Subtotal:       DisplayAmount(sub),
		DiscountAmount: DisplayAmount(discAmt),
		ShippingFee:    DisplayAmount(u.shippingFee),
		Total:          DisplayAmount(Total(items, discount, u.shippingFee)),
	}, nil
}

type PlaceOrderInput struct {
	CustomerName    string
	CustomerEmail   string
	CustomerPhone   string
	ShippingAddress string
	CouponCode      string
	IdempotencyKey  string
}

type OrderItemOutput struct {
	ProductID  string `json:"product_id"`
	VariantKey string `json:"variant_key"`
	Name       string `json:"name"`
	Price      string `json:"price"`
	Quantity   int64  `json:"quantity"`
}

type OrderOutput struct {
	ID             string            `json:"id"`
	Status         string            `json:"status"`
	Subtotal       string            `json:"subtotal"`
	DiscountAmount string            `json:"discount_amount"`
	ShippingFee    string            `json:"shipping_fee"`
	TotalPrice     string            `json:"total_price"`
	CreatedAt      time.Time         `json:"created_at"`
	Items          []OrderItemOutput `json:"items"`
}

// PlaceOrder は注文を確定する。
// 成功時だけカート（または override）をクリアし、失敗時は状態を温存して
// そのままリトライできるようにする。
func (u *CheckoutUsecase) PlaceOrder(ctx context.Context, sessionID string, in PlaceOrderInput) (OrderOutput, error) {
	if strings.TrimSpace(in.CustomerName) == "" {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "name required")
	}
	if strings.TrimSpace(in.CustomerPhone) == "" {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "phone required")
	}
	if strings.TrimSpace(in.ShippingAddress) == "" {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "shipping address required")
	}
	key := strings.TrimSpace(in.IdempotencyKey)
	if key == "" || len(key) > 255 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid idempotency_key")
	}

	// 同じキーなら同じ結果（再送対策）
	existing, found, err := u.orders.FindByIdempotencyKey(ctx, sessionID, key)
	if err != nil {
		return OrderOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if found {
		return u.buildOrderOutput(ctx, existing)
	}

	items, buyNow := u.activeItems(ctx, sessionID)
	if len(items) == 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "cart empty")
	}

	discount, err := u.resolveCoupon(ctx, in.CouponCode)
	if err != nil {
		return OrderOutput{}, err
	}

	sub := Subtotal(items)
	var discAmt decimal.Decimal
	if discount != nil {
		discAmt = DiscountAmount(sub, *discount)
	}
	total := Total(items, discount, u.shippingFee)

	order := model.Order{
		SessionID:       sessionID,
		Status:          model.OrderStatusPending,
		Subtotal:        sub,
		DiscountAmount:  discAmt,
		ShippingFee:     u.shippingFee,
		TotalPrice:      total,
		CouponCode:      strings.TrimSpace(in.CouponCode),
		CustomerName:    strings.TrimSpace(in.CustomerName),
		CustomerEmail:   strings.TrimSpace(in.CustomerEmail),
		CustomerPhone:   strings.TrimSpace(in.CustomerPhone),
		ShippingAddress: strings.TrimSpace(in.ShippingAddress),
		IdempotencyKey:  key,
	}

	orderItems := make([]model.OrderItem, 0, len(items))
	for _, it := range items {
		orderItems = append(orderItems, model.OrderItem{
			ProductID:           it.ProductID,
			VariantKey:          it.VariantKey,
			ProductNameSnapshot: it.Name,
			UnitPriceSnapshot:   it.UnitPrice,
			Quantity:            it.Quantity,
		})
	}

	created, err := u.orders.Create(ctx, order, orderItems)
	if err != nil {
		// 失敗時はカートも override も触らない
		u.log.Error("order create failed", zap.String("session_id", sessionID), zap.Error(err))
		return OrderOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	// 成功したルートだけクリアする
	if buyNow {
		u.ClearOverride(sessionID)
	} else {
		u.cart.Clear(ctx, sessionID)
	}

	return u.buildOrderOutput(ctx, created)
}

func (u *CheckoutUsecase) buildOrderOutput(ctx context.Context, o model.Order) (OrderOutput, error) {
	items, err := u.orders.ListItemsByOrderID(ctx, o.ID)
	if err != nil {
		return OrderOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	outItems := make([]OrderItemOutput, 0, len(items))
	for _, it := range items {
		outItems = append(outItems, OrderItemOutput{
			ProductID:  it.ProductID,
			VariantKey: it.VariantKey,
			Name:       it.ProductNameSnapshot,
			Price:      DisplayAmount(it.UnitPriceSnapshot),
			Quantity:   it.Quantity,
		})
	}

	return OrderOutput{
		ID:             o.ID,
		Status:         string(o.Status),
		Subtotal:       DisplayAmount(o.Subtotal),
		DiscountAmount: DisplayAmount(o.DiscountAmount),
		ShippingFee:    DisplayAmount(o.ShippingFee),
		TotalPrice:     DisplayAmount(o.TotalPrice),
		CreatedAt:      o.CreatedAt,
		Items:          outItems,
	}, nil
}
