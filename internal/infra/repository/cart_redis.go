package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Niaj-FreshNet/khushbuwaala-sub001/internal/domain/model"
	"github.com/go-redis/redis/v8"
)

// セッションごとのカートを Redis に保存する。
// キーはこのストア専用で、他のコンポーネントは書き込まない。
type CartRedisRepository struct {
	client *redis.Client
	ttl    time.Duration
}

const cartKeyPrefix = "cart:"

// NewCartRedisRepository は接続文字列（"redis://..." または "host:port"）を受け取る。
func NewCartRedisRepository(redisURL string, ttl time.Duration) (*CartRedisRepository, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		// "redis://..." 形式でない場合は Addr として使う
		opts = &redis.Options{
			Addr:         redisURL,
			MinIdleConns: 1,
			DialTimeout:  10 * time.Second,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 5 * time.Second,
		}
	}

	return &CartRedisRepository{
		client: redis.NewClient(opts),
		ttl:    ttl,
	}, nil
}

// 接続確認
func (r *CartRedisRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Save はスナップショット全体を書く。
func (r *CartRedisRepository) Save(ctx context.Context, sessionID string, items []model.LineItem) error {
	data, err := encodeCart(items)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, cartKeyPrefix+sessionID, data, r.ttl).Err()
}

// Load はキーが無い・壊れている場合も空で返す。
func (r *CartRedisRepository) Load(ctx context.Context, sessionID string) ([]model.LineItem, error) {
	data, err := r.client.Get(ctx, cartKeyPrefix+sessionID).Bytes()
	if errors.Is(err, redis.Nil) {
		return []model.LineItem{}, nil
	}
	if err != nil {
		return nil, err
	}
	return decodeCart(data), nil
}
