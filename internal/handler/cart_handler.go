package handler

import (
	"net/http"

	"github.com/Niaj-FreshNet/khushbuwaala-sub001/internal/domain/model"
	"github.com/Niaj-FreshNet/khushbuwaala-sub001/internal/middleware"
	"github.com/Niaj-FreshNet/khushbuwaala-sub001/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /cartのHTTP
type CartHandler struct {
	cartUC    *usecase.CartUsecase
	productUC *usecase.ProductUsecase
}

// DI
func NewCartHandler(cartUC *usecase.CartUsecase, productUC *usecase.ProductUsecase) *CartHandler {
	return &CartHandler{cartUC: cartUC, productUC: productUC}
}

type AddCartRequest struct {
	ProductID  string `json:"product_id"`
	VariantKey string `json:"variant_key"`
	Quantity   int64  `json:"quantity"`
}

type UpdateCartItemRequest struct {
	Quantity int64 `json:"quantity"`
}

type CartResponse struct {
	Items    []model.LineItem `json:"items"`
	Subtotal string           `json:"subtotal"`
}

// /cart, /cart/items/... を登録
func (h *CartHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/cart")

	g.GET("", h.getCart)
	g.POST("", h.addToCart)
	g.PATCH("/items/:product_id/:variant_key", h.patchItem)
	g.DELETE("/items/:product_id/:variant_key", h.deleteItem)
	g.DELETE("", h.clear)
}

func (h *CartHandler) getCart(c echo.Context) error {
	sid, ok := getSessionID(c)
	if !ok {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "no session"})
	}

	items := h.cartUC.Items(c.Request().Context(), sid)
	return c.JSON(http.StatusOK, cartResponse(items))
}

func (h *CartHandler) addToCart(c echo.Context) error {
	sid, ok := getSessionID(c)
	if !ok {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "no session"})
	}

	var req AddCartRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	// 価格スナップショットと表示用フィールドはカタログ側で確定する
	item, err := h.productUC.ResolveLineItem(c.Request().Context(), req.ProductID, req.VariantKey, req.Quantity)
	if err != nil {
		return writeError(c, err)
	}

	items := h.cartUC.AddItem(c.Request().Context(), sid, usecase.AddItemInput{
		ProductID:  item.ProductID,
		VariantKey: item.VariantKey,
		Quantity:   item.Quantity,
		UnitPrice:  item.UnitPrice,
		Name:       item.Name,
		ImageURL:   item.ImageURL,
	})

	return c.JSON(http.StatusOK, cartResponse(items))
}

func (h *CartHandler) patchItem(c echo.Context) error {
	sid, ok := getSessionID(c)
	if !ok {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "no session"})
	}

	var req UpdateCartItemRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	items := h.cartUC.UpdateQuantity(
		c.Request().Context(), sid,
		c.Param("product_id"), c.Param("variant_key"),
		req.Quantity,
	)

	return c.JSON(http.StatusOK, cartResponse(items))
}

func (h *CartHandler) deleteItem(c echo.Context) error {
	sid, ok := getSessionID(c)
	if !ok {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "no session"})
	}

	items := h.cartUC.RemoveItem(
		c.Request().Context(), sid,
		c.Param("product_id"), c.Param("variant_key"),
	)

	return c.JSON(http.StatusOK, cartResponse(items))
}

func (h *CartHandler) clear(c echo.Context) error {
	sid, ok := getSessionID(c)
	if !ok {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "no session"})
	}

	h.cartUC.Clear(c.Request().Context(), sid)
	return c.JSON(http.StatusOK, cartResponse([]model.LineItem{}))
}

func cartResponse(items []model.LineItem) CartResponse {
	return CartResponse{
		Items:    items,
		Subtotal: usecase.DisplayAmount(usecase.Subtotal(items)),
	}
}

// セッションIDをcontextから取り出す
func getSessionID(c echo.Context) (string, bool) {
	sid, ok := c.Get(middleware.CtxSessionIDKey).(string)
	if !ok || sid == "" {
		return "", false
	}
	return sid, true
}
