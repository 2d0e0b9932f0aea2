package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/Niaj-FreshNet/khushbuwaala-sub001/internal/domain/model"
	repo "github.com/Niaj-FreshNet/khushbuwaala-sub001/internal/repository"

	"github.com/shopspring/decimal"
)

type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

type ProductUsecase struct {
	productRepo repo.ProductRepository
}

// DI
func NewProductUsecase(productRepo repo.ProductRepository) *ProductUsecase {
	return &ProductUsecase{productRepo: productRepo}
}

// GET /productsの入力DTO
type ListProductsInput struct {
	Page     int
	Limit    int
	Q        string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	Sort     string
}

type ProductListOutput struct {
	Items []model.Product `json:"items"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

func (u *ProductUsecase) ListPublicProducts(ctx context.Context, in ListProductsInput) (ProductListOutput, error) {
	if in.Page < 1 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if in.Limit < 1 || in.Limit > 100 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	if len(in.Q) > 100 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "q too long")
	}
	if in.MinPrice != nil && in.MinPrice.IsNegative() {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "min_price must be >= 0")
	}
	if in.MaxPrice != nil && in.MaxPrice.IsNegative() {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "max_price must be >= 0")
	}
	if in.MinPrice != nil && in.MaxPrice != nil && in.MinPrice.GreaterThan(*in.MaxPrice) {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "min_price must be <= max_price")
	}
	switch in.Sort {
	case "", "new", "price_asc", "price_desc":
	default:
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid sort")
	}

	items, total, err := u.productRepo.ListPublic(ctx, repo.ProductListQuery{
		Page:     in.Page,
		Limit:    in.Limit,
		Q:        strings.TrimSpace(in.Q),
		MinPrice: in.MinPrice,
		MaxPrice: in.MaxPrice,
		Sort:     in.Sort,
	})
	if err != nil {
		return ProductListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return ProductListOutput{
		Items: items,
		Total: total,
		Page:  in.Page,
		Limit: in.Limit,
	}, nil
}

func (u *ProductUsecase) GetProductDetail(ctx context.Context, productID string) (model.Product, error) {
	if productID == "" {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	p, err := u.productRepo.FindByID(ctx, productID)
	if err == repo.ErrNotFound {
		return model.Product{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if !p.IsActive {
		return model.Product{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	return p, nil
}

// ResolveUnitPrice は単価を解決する。
// バリアント価格 → 基本価格の順で、どちらも無ければエラー。
func ResolveUnitPrice(p model.Product, variantKey string) (decimal.Decimal, error) {
	for _, v := range p.Variants {
		if v.VariantKey == variantKey {
			return v.Price, nil
		}
	}
	if p.Price.IsPositive() {
		return p.Price, nil
	}
	return decimal.Decimal{}, errors.New("no price for variant")
}

// ResolveLineItem は商品とバリアントから、カートに入れる1行を組み立てる。
// 価格スナップショットと表示用フィールドはここで確定する。
func (u *ProductUsecase) ResolveLineItem(ctx context.Context, productID string, variantKey string, qty int64) (model.LineItem, error) {
	if productID == "" || variantKey == "" {
		return model.LineItem{}, NewHTTPError(http.StatusBadRequest, "invalid")
	}

	p, err := u.productRepo.FindByID(ctx, productID)
	if err == repo.ErrNotFound {
		return model.LineItem{}, NewHTTPError(http.StatusBadRequest, "invalid")
	}
	if err != nil {
		return model.LineItem{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !p.IsActive {
		return model.LineItem{}, NewHTTPError(http.StatusBadRequest, "invalid")
	}

	price, err := ResolveUnitPrice(p, variantKey)
	if err != nil {
		return model.LineItem{}, NewHTTPError(http.StatusBadRequest, "no price for variant")
	}

	if qty < 1 {
		qty = 1
	}

	return model.LineItem{
		ProductID:  p.ID,
		VariantKey: variantKey,
		Name:       p.Name,
		ImageURL:   p.ImageURL,
		UnitPrice:  price,
		Quantity:   qty,
	}, nil
}

type AdminCreateProductInput struct {
	Name        string
	Description string
	ImageURL    string
	Price       decimal.Decimal
	IsActive    bool
	Variants    map[string]decimal.Decimal
}

func (u *ProductUsecase) AdminCreateProduct(ctx context.Context, in AdminCreateProductInput) (model.Product, error) {
	if strings.TrimSpace(in.Name) == "" {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "name required")
	}
	if in.Price.IsNegative() {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "price must be >= 0")
	}
	for key, price := range in.Variants {
		if strings.TrimSpace(key) == "" || price.IsNegative() {
			return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid variant")
		}
	}

	p := model.Product{
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		ImageURL:    in.ImageURL,
		Price:       in.Price,
		IsActive:    in.IsActive,
	}
	for key, price := range in.Variants {
		p.Variants = append(p.Variants, model.ProductVariant{
			VariantKey: key,
			Price:      price,
		})
	}

	created, err := u.productRepo.Create(ctx, p)
	if err != nil {
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return created, nil
}

type AdminUpdateProductInput struct {
	Name        string
	Description string
	ImageURL    string
	Price       decimal.Decimal
	IsActive    bool
}

func (u *ProductUsecase) AdminUpdateProduct(ctx context.Context, productID string, in AdminUpdateProductInput) error {
	if productID == "" {
		return NewHTTPError(http.StatusBadRequest, "invalid product id")
	}
	if strings.TrimSpace(in.Name) == "" {
		return NewHTTPError(http.StatusBadRequest, "name required")
	}
	if in.Price.IsNegative() {
		return NewHTTPError(http.StatusBadRequest, "price must be >= 0")
	}

	err := u.productRepo.Update(ctx, model.Product{
		ID:          productID,
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		ImageURL:    in.ImageURL,
		Price:       in.Price,
		IsActive:    in.IsActive,
	})
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

func (u *ProductUsecase) AdminDeleteProduct(ctx context.Context, productID string) error {
	if productID == "" {
		return NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	err := u.productRepo.SoftDelete(ctx, productID)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}
