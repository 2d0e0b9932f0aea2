package handler

import (
	"net/http"

	"github.com/Niaj-FreshNet/khushbuwaala-sub001/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// /admin/products のHTTP（管理画面向けの薄いCRUD）
type AdminProductHandler struct {
	uc *usecase.ProductUsecase
}

// DI
func NewAdminProductHandler(uc *usecase.ProductUsecase) *AdminProductHandler {
	return &AdminProductHandler{uc: uc}
}

type AdminProductRequest struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	ImageURL    string            `json:"image_url"`
	Price       decimal.Decimal   `json:"price"`
	IsActive    bool              `json:"is_active"`
	Variants    map[string]string `json:"variants"` // variant_key -> price
}

func (h *AdminProductHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/admin/products")

	g.POST("", h.create)
	g.PUT("/:id", h.update)
	g.DELETE("/:id", h.delete)
}

func (h *AdminProductHandler) create(c echo.Context) error {
	var req AdminProductRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	variants, err := parseVariantPrices(req.Variants)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid variant price"})
	}

	out, err := h.uc.AdminCreateProduct(c.Request().Context(), usecase.AdminCreateProductInput{
		Name:        req.Name,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		Price:       req.Price,
		IsActive:    req.IsActive,
		Variants:    variants,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, out)
}

func (h *AdminProductHandler) update(c echo.Context) error {
	var req AdminProductRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	err := h.uc.AdminUpdateProduct(c.Request().Context(), c.Param("id"), usecase.AdminUpdateProductInput{
		Name:        req.Name,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		Price:       req.Price,
		IsActive:    req.IsActive,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *AdminProductHandler) delete(c echo.Context) error {
	if err := h.uc.AdminDeleteProduct(c.Request().Context(), c.Param("id")); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func parseVariantPrices(in map[string]string) (map[string]decimal.Decimal, error) {
	if len(in) == 0 {
		return nil, nil
	}
	out := make(map[string]decimal.Decimal, len(in))
	for key, raw := range in {
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, err
		}
		out[key] = d
	}
	return out, nil
}
