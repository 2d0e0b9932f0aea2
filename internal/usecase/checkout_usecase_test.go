package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/Niaj-FreshNet/khushbuwaala-sub001/internal/domain/model"
	repo "github.com/Niaj-FreshNet/khushbuwaala-sub001/internal/repository"
	"github.com/Niaj-FreshNet/khushbuwaala-sub001/internal/usecase"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

// =====================
// Mocks（衝突回避の命名）
// =====================

type CheckoutProductRepoMock struct{ mock.Mock }

func (m *CheckoutProductRepoMock) ListPublic(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	panic("not used in CheckoutUsecase tests")
}

func (m *CheckoutProductRepoMock) FindByID(ctx context.Context, id string) (model.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *CheckoutProductRepoMock) ListVariants(ctx context.Context, productID string) ([]model.ProductVariant, error) {
	panic("not used in CheckoutUsecase tests")
}

func (m *CheckoutProductRepoMock) Create(ctx context.Context, p model.Product) (model.Product, error) {
	panic("not used in CheckoutUsecase tests")
}

func (m *CheckoutProductRepoMock) Update(ctx context.Context, p model.Product) error {
	panic("not used in CheckoutUsecase tests")
}

func (m *CheckoutProductRepoMock) SoftDelete(ctx context.Context, id string) error {
	panic("not used in CheckoutUsecase tests")
}

type CheckoutOrderRepoMock struct{ mock.Mock }

func (m *CheckoutOrderRepoMock) Create(ctx context.Context, order model.Order, items []model.OrderItem) (model.Order, error) {
	args := m.Called(ctx, order, items)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *CheckoutOrderRepoMock) FindByID(ctx context.Context, orderID string) (model.Order, error) {
	args := m.Called(ctx, orderID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *CheckoutOrderRepoMock) FindByIdempotencyKey(ctx context.Context, sessionID string, key string) (model.Order, bool, error) {
	args := m.Called(ctx, sessionID, key)
	o, _ := args.Get(0).(model.Order)
	return o, args.Bool(1), args.Error(2)
}

func (m *CheckoutOrderRepoMock) ListItemsByOrderID(ctx context.Context, orderID string) ([]model.OrderItem, error) {
	args := m.Called(ctx, orderID)
	items, _ := args.Get(0).([]model.OrderItem)
	return items, args.Error(1)
}

type CheckoutCouponRepoMock struct{ mock.Mock }

func (m *CheckoutCouponRepoMock) FindActiveByCode(ctx context.Context, code string) (model.Coupon, error) {
	args := m.Called(ctx, code)
	c, _ := args.Get(0).(model.Coupon)
	return c, args.Error(1)
}

// =====================
// fixture
// =====================

type checkoutFixture struct {
	uc       *usecase.CheckoutUsecase
	cartUC   *usecase.CartUsecase
	products *CheckoutProductRepoMock
	orders   *CheckoutOrderRepoMock
	coupons  *CheckoutCouponRepoMock
}

func newCheckoutFixture(shipping decimal.Decimal) *checkoutFixture {
	products := new(CheckoutProductRepoMock)
	orders := new(CheckoutOrderRepoMock)
	coupons := new(CheckoutCouponRepoMock)

	cartUC := usecase.NewCartUsecase(newFakePersistence(), zap.NewNop())
	productUC := usecase.NewProductUsecase(products)
	uc := usecase.NewCheckoutUsecase(cartUC, productUC, orders, coupons, shipping, zap.NewNop())

	return &checkoutFixture{uc: uc, cartUC: cartUC, products: products, orders: orders, coupons: coupons}
}

func activeProduct(id string, basePrice int64, variants map[string]int64) model.Product {
	p := model.Product{
		ID:       id,
		Name:     "Perfume " + id,
		Price:    decimal.NewFromInt(basePrice),
		IsActive: true,
	}
	for key, v := range variants {
		p.Variants = append(p.Variants, model.ProductVariant{
			ProductID:  id,
			VariantKey: key,
			Price:      decimal.NewFromInt(v),
		})
	}
	return p
}

func placeOrderInput(key string) usecase.PlaceOrderInput {
	return usecase.PlaceOrderInput{
		CustomerName:    "Rahim",
		CustomerPhone:   "01700000000",
		ShippingAddress: "Dhaka",
		IdempotencyKey:  key,
	}
}

// =====================
// Override（今すぐ購入）の状態遷移
// =====================

func TestCheckoutUsecase_SetOverride_DoesNotTouchCart(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture(decimal.Zero)

	f.cartUC.AddItem(ctx, "s1", addInput("P1", "3ml", 1, 500))
	f.products.On("FindByID", mock.Anything, "P2").Return(activeProduct("P2", 0, map[string]int64{"6ml": 900}), nil)

	item, err := f.uc.SetOverride(ctx, "s1", "P2", "6ml", 1)
	assert.NoError(t, err)
	assert.Equal(t, "900", item.UnitPrice.String())

	// カート本体は無傷
	cartItems := f.cartUC.Items(ctx, "s1")
	assert.Len(t, cartItems, 1)
	assert.Equal(t, "P1", cartItems[0].ProductID)

	// チェックアウトはoverrideの1行だけを見る
	quote, err := f.uc.Quote(ctx, "s1", "")
	assert.NoError(t, err)
	assert.True(t, quote.BuyNow)
	assert.Len(t, quote.Items, 1)
	assert.Equal(t, "P2", quote.Items[0].ProductID)
	assert.Equal(t, "900.00", quote.Total)
}

func TestCheckoutUsecase_CartMutationsDoNotTouchOverride(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture(decimal.Zero)

	f.products.On("FindByID", mock.Anything, "P2").Return(activeProduct("P2", 0, map[string]int64{"6ml": 900}), nil)
	_, err := f.uc.SetOverride(ctx, "s1", "P2", "6ml", 1)
	assert.NoError(t, err)

	f.cartUC.AddItem(ctx, "s1", addInput("P1", "3ml", 1, 500))
	f.cartUC.RemoveItem(ctx, "s1", "P1", "3ml")
	f.cartUC.Clear(ctx, "s1")

	ov := f.uc.Override("s1")
	assert.True(t, ov.Active)
	assert.Equal(t, "P2", ov.Item.ProductID)
}

func TestCheckoutUsecase_ClearOverride(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture(decimal.Zero)

	// 初期状態はINACTIVE
	assert.False(t, f.uc.Override("s1").Active)

	f.products.On("FindByID", mock.Anything, "P2").Return(activeProduct("P2", 0, map[string]int64{"6ml": 900}), nil)
	_, err := f.uc.SetOverride(ctx, "s1", "P2", "6ml", 1)
	assert.NoError(t, err)
	assert.True(t, f.uc.Override("s1").Active)

	// 「カート全体で進む」＝明示クリア
	f.uc.ClearOverride("s1")
	ov := f.uc.Override("s1")
	assert.False(t, ov.Active)
	assert.Nil(t, ov.Item)
}

func TestCheckoutUsecase_SetOverride_InactiveProduct(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture(decimal.Zero)

	p := activeProduct("P2", 900, nil)
	p.IsActive = false
	f.products.On("FindByID", mock.Anything, "P2").Return(p, nil)

	_, err := f.uc.SetOverride(ctx, "s1", "P2", "6ml", 1)
	he, ok := usecase.AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, 400, he.Status)
}

// =====================
// Quote
// =====================

func TestCheckoutUsecase_Quote_PercentageCoupon(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture(decimal.Zero)

	f.cartUC.AddItem(ctx, "s1", addInput("P1", "3ml", 2, 500))
	f.coupons.On("FindActiveByCode", mock.Anything, "EID10").Return(model.Coupon{
		Code: "EID10", Kind: model.DiscountPercentage, Value: decimal.NewFromInt(10),
	}, nil)

	quote, err := f.uc.Quote(ctx, "s1", "EID10")
	assert.NoError(t, err)
	assert.Equal(t, "1000.00", quote.Subtotal)
	assert.Equal(t, "100.00", quote.DiscountAmount)
	assert.Equal(t, "900.00", quote.Total)
}

func TestCheckoutUsecase_Quote_FixedCouponFloorsAtZero(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture(decimal.Zero)

	f.cartUC.AddItem(ctx, "s1", addInput("P1", "3ml", 2, 500))
	f.coupons.On("FindActiveByCode", mock.Anything, "MEGA").Return(model.Coupon{
		Code: "MEGA", Kind: model.DiscountFixed, Value: decimal.NewFromInt(1200),
	}, nil)

	quote, err := f.uc.Quote(ctx, "s1", "MEGA")
	assert.NoError(t, err)
	assert.Equal(t, "0.00", quote.Total)
}

func TestCheckoutUsecase_Quote_UnknownCoupon(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture(decimal.Zero)

	f.cartUC.AddItem(ctx, "s1", addInput("P1", "3ml", 1, 500))
	f.coupons.On("FindActiveByCode", mock.Anything, "NOPE").Return(model.Coupon{}, repo.ErrNotFound)

	_, err := f.uc.Quote(ctx, "s1", "NOPE")
	he, ok := usecase.AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, 400, he.Status)
	assert.Equal(t, "invalid coupon", he.Message)
}

// =====================
// PlaceOrder
// =====================

func TestCheckoutUsecase_PlaceOrder_FullCart_ClearsCartOnSuccess(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture(decimal.NewFromInt(60))

	f.cartUC.AddItem(ctx, "s1", addInput("P1", "3ml", 2, 500))

	f.orders.On("FindByIdempotencyKey", mock.Anything, "s1", "key-1").Return(model.Order{}, false, nil)
	f.orders.On("Create", mock.Anything, mock.Anything, mock.Anything).Return(model.Order{
		ID:          "o1",
		Status:      model.OrderStatusPending,
		Subtotal:    decimal.NewFromInt(1000),
		ShippingFee: decimal.NewFromInt(60),
		TotalPrice:  decimal.NewFromInt(1060),
	}, nil)
	f.orders.On("ListItemsByOrderID", mock.Anything, "o1").Return([]model.OrderItem{
		{OrderID: "o1", ProductID: "P1", VariantKey: "3ml", Quantity: 2, UnitPriceSnapshot: decimal.NewFromInt(500)},
	}, nil)

	out, err := f.uc.PlaceOrder(ctx, "s1", placeOrderInput("key-1"))
	assert.NoError(t, err)
	assert.Equal(t, "o1", out.ID)
	assert.Equal(t, "1060.00", out.TotalPrice)
	assert.Len(t, out.Items, 1)

	// 成功時だけカートが空になる
	assert.Empty(t, f.cartUC.Items(ctx, "s1"))
}

func TestCheckoutUsecase_PlaceOrder_BuyNow_LeavesCartIntact(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture(decimal.Zero)

	f.cartUC.AddItem(ctx, "s1", addInput("P1", "3ml", 1, 500))
	f.products.On("FindByID", mock.Anything, "P2").Return(activeProduct("P2", 0, map[string]int64{"6ml": 900}), nil)
	_, err := f.uc.SetOverride(ctx, "s1", "P2", "6ml", 1)
	assert.NoError(t, err)

	f.orders.On("FindByIdempotencyKey", mock.Anything, "s1", "key-2").Return(model.Order{}, false, nil)
	var createdItems []model.OrderItem
	f.orders.On("Create", mock.Anything, mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		createdItems, _ = args.Get(2).([]model.OrderItem)
	}).Return(model.Order{
		ID: "o2", Status: model.OrderStatusPending, TotalPrice: decimal.NewFromInt(900),
	}, nil)
	f.orders.On("ListItemsByOrderID", mock.Anything, "o2").Return([]model.OrderItem{}, nil)

	_, err = f.uc.PlaceOrder(ctx, "s1", placeOrderInput("key-2"))
	assert.NoError(t, err)

	// overrideは消えるがカートは残る
	assert.False(t, f.uc.Override("s1").Active)
	assert.Len(t, f.cartUC.Items(ctx, "s1"), 1)

	// 注文に渡ったのはoverrideの1行だけ
	assert.Len(t, createdItems, 1)
	assert.Equal(t, "P2", createdItems[0].ProductID)
}

func TestCheckoutUsecase_PlaceOrder_FailureKeepsStateForRetry(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture(decimal.Zero)

	f.cartUC.AddItem(ctx, "s1", addInput("P1", "3ml", 2, 500))

	f.orders.On("FindByIdempotencyKey", mock.Anything, "s1", "key-3").Return(model.Order{}, false, nil)
	f.orders.On("Create", mock.Anything, mock.Anything, mock.Anything).Return(model.Order{}, errors.New("db down"))

	_, err := f.uc.PlaceOrder(ctx, "s1", placeOrderInput("key-3"))
	he, ok := usecase.AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, 500, he.Status)

	// リトライできるようにカートは温存
	assert.Len(t, f.cartUC.Items(ctx, "s1"), 1)
	assert.Equal(t, int64(2), f.cartUC.Items(ctx, "s1")[0].Quantity)
}

func TestCheckoutUsecase_PlaceOrder_EmptyCart(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture(decimal.Zero)

	f.orders.On("FindByIdempotencyKey", mock.Anything, "s1", "key-4").Return(model.Order{}, false, nil)

	_, err := f.uc.PlaceOrder(ctx, "s1", placeOrderInput("key-4"))
	he, ok := usecase.AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, 400, he.Status)
	assert.Equal(t, "cart empty", he.Message)
}

func TestCheckoutUsecase_PlaceOrder_IdempotentReplay(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture(decimal.Zero)

	f.cartUC.AddItem(ctx, "s1", addInput("P1", "3ml", 1, 500))

	f.orders.On("FindByIdempotencyKey", mock.Anything, "s1", "key-5").Return(model.Order{
		ID: "o5", Status: model.OrderStatusPending, TotalPrice: decimal.NewFromInt(500),
	}, true, nil)
	f.orders.On("ListItemsByOrderID", mock.Anything, "o5").Return([]model.OrderItem{}, nil)

	out, err := f.uc.PlaceOrder(ctx, "s1", placeOrderInput("key-5"))
	assert.NoError(t, err)
	assert.Equal(t, "o5", out.ID)

	// 再送では注文を作り直さず、カートも触らない
	f.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	assert.Len(t, f.cartUC.Items(ctx, "s1"), 1)
}

func TestCheckoutUsecase_PlaceOrder_SameKeyDifferentSessions(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture(decimal.Zero)

	f.cartUC.AddItem(ctx, "s1", addInput("P1", "3ml", 1, 500))
	f.cartUC.AddItem(ctx, "s2", addInput("P2", "6ml", 1, 900))

	// 冪等キーはセッション単位。別セッションの同じキーは新規注文になる
	f.orders.On("FindByIdempotencyKey", mock.Anything, "s1", "key-7").Return(model.Order{}, false, nil)
	f.orders.On("FindByIdempotencyKey", mock.Anything, "s2", "key-7").Return(model.Order{}, false, nil)
	f.orders.On("Create", mock.Anything, mock.Anything, mock.Anything).Return(model.Order{ID: "o7", Status: model.OrderStatusPending}, nil).Once()
	f.orders.On("Create", mock.Anything, mock.Anything, mock.Anything).Return(model.Order{ID: "o8", Status: model.OrderStatusPending}, nil).Once()
	f.orders.On("ListItemsByOrderID", mock.Anything, "o7").Return([]model.OrderItem{}, nil)
	f.orders.On("ListItemsByOrderID", mock.Anything, "o8").Return([]model.OrderItem{}, nil)

	out1, err := f.uc.PlaceOrder(ctx, "s1", placeOrderInput("key-7"))
	assert.NoError(t, err)
	out2, err := f.uc.PlaceOrder(ctx, "s2", placeOrderInput("key-7"))
	assert.NoError(t, err)

	assert.NotEqual(t, out1.ID, out2.ID)
	f.orders.AssertNumberOfCalls(t, "Create", 2)
}

func TestCheckoutUsecase_PlaceOrder_MissingCustomerFields(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture(decimal.Zero)

	in := placeOrderInput("key-6")
	in.CustomerName = ""

	_, err := f.uc.PlaceOrder(ctx, "s1", in)
	he, ok := usecase.AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, 400, he.Status)
}
