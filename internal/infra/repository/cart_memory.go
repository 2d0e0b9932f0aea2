package repository

import (
	"context"
	"sync"

	"github.com/Niaj-FreshNet/khushbuwaala-sub001/internal/domain/model"
)

// メモリ上にカートを保持する簡易版ストレージ。
// ローカル開発と、テストでの差し替え用。
// Redis 実装と同じ直列化を通すので、往復テストはここで書ける。
type CartMemoryRepository struct {
	mu    sync.RWMutex
	store map[string][]byte
}

func NewCartMemoryRepository() *CartMemoryRepository {
	return &CartMemoryRepository{store: make(map[string][]byte)}
}

func (r *CartMemoryRepository) Save(ctx context.Context, sessionID string, items []model.LineItem) error {
	data, err := encodeCart(items)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.store[sessionID] = data
	return nil
}

func (r *CartMemoryRepository) Load(ctx context.Context, sessionID string) ([]model.LineItem, error) {
	r.mu.RLock()
	data, ok := r.store[sessionID]
	r.mu.RUnlock()

	if !ok {
		return []model.LineItem{}, nil
	}
	return decodeCart(data), nil
}

// Corrupt はテスト用に保存データを直接差し替える。
func (r *CartMemoryRepository) Corrupt(sessionID string, raw []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.store[sessionID] = raw
}
