package repository

import (
	"context"

	"github.com/Niaj-FreshNet/khushbuwaala-sub001/internal/domain/model"
)

// 注文の永続化。Create は注文と明細を1トランザクションで保存する。
type OrderRepository interface {
	Create(ctx context.Context, order model.Order, items []model.OrderItem) (model.Order, error)
	FindByID(ctx context.Context, orderID string) (model.Order, error)
	FindByIdempotencyKey(ctx context.Context, sessionID string, key string) (model.Order, bool, error)
	ListItemsByOrderID(ctx context.Context, orderID string) ([]model.OrderItem, error)
}
