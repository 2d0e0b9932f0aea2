package handler

import (
	"net/http"

	"github.com/Niaj-FreshNet/khushbuwaala-sub001/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /checkoutのHTTP。「今すぐ購入」と注文確定。
type CheckoutHandler struct {
	uc *usecase.CheckoutUsecase
}

// DI
func NewCheckoutHandler(uc *usecase.CheckoutUsecase) *CheckoutHandler {
	return &CheckoutHandler{uc: uc}
}

type BuyNowRequest struct {
	ProductID  string `json:"product_id"`
	VariantKey string `json:"variant_key"`
	Quantity   int64  `json:"quantity"`
}

type PlaceOrderRequest struct {
	CustomerName    string `json:"customer_name"`
	CustomerEmail   string `json:"customer_email"`
	CustomerPhone   string `json:"customer_phone"`
	ShippingAddress string `json:"shipping_address"`
	CouponCode      string `json:"coupon_code"`
	IdempotencyKey  string `json:"idempotency_key"`
}

func (h *CheckoutHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/checkout")

	g.POST("/buy-now", h.buyNow)
	// 「カート全体で進む」を選んだときに明示的に呼ぶ
	g.DELETE("/buy-now", h.clearBuyNow)
	g.GET("/quote", h.quote)
	g.POST("/orders", h.placeOrder)
}

func (h *CheckoutHandler) buyNow(c echo.Context) error {
	sid, ok := getSessionID(c)
	if !ok {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "no session"})
	}

	var req BuyNowRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	item, err := h.uc.SetOverride(c.Request().Context(), sid, req.ProductID, req.VariantKey, req.Quantity)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, item)
}

func (h *CheckoutHandler) clearBuyNow(c echo.Context) error {
	sid, ok := getSessionID(c)
	if !ok {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "no session"})
	}

	h.uc.ClearOverride(sid)
	return c.NoContent(http.StatusNoContent)
}

func (h *CheckoutHandler) quote(c echo.Context) error {
	sid, ok := getSessionID(c)
	if !ok {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "no session"})
	}

	out, err := h.uc.Quote(c.Request().Context(), sid, c.QueryParam("coupon"))
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *CheckoutHandler) placeOrder(c echo.Context) error {
	sid, ok := getSessionID(c)
	if !ok {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "no session"})
	}

	var req PlaceOrderRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.PlaceOrder(c.Request().Context(), sid, usecase.PlaceOrderInput{
		CustomerName:    req.CustomerName,
		CustomerEmail:   req.CustomerEmail,
		CustomerPhone:   req.CustomerPhone,
		ShippingAddress: req.ShippingAddress,
		CouponCode:      req.CouponCode,
		IdempotencyKey:  req.IdempotencyKey,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, out)
}
