package repository

import (
	"context"

	"github.com/Niaj-FreshNet/khushbuwaala-sub001/internal/domain/model"
)

// カート明細の耐久化。
// Save は常にスナップショット全体を書く（差分ではない）。後勝ちで安全。
// Load は key が無い・壊れている場合でもエラーにせず空を返す。
type CartPersistence interface {
	Save(ctx context.Context, sessionID string, items []model.LineItem) error
	Load(ctx context.Context, sessionID string) ([]model.LineItem, error)
}
