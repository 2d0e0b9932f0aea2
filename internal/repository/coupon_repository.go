package repository

import (
	"context"

	"github.com/Niaj-FreshNet/khushbuwaala-sub001/internal/domain/model"
)

type CouponRepository interface {
	// 有効なクーポンをコードで引く。無ければ ErrNotFound。
	FindActiveByCode(ctx context.Context, code string) (model.Coupon, error)
}
