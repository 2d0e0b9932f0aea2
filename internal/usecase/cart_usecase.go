package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/Niaj-FreshNet/khushbuwaala-sub001/internal/domain/model"
	repo "github.com/Niaj-FreshNet/khushbuwaala-sub001/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CartUsecase はセッションごとのカートの唯一の持ち主。
// 変更はすべてここを通り、変更のたびにスナップショット全体を永続化キューに渡す。
// 永続化はベストエフォート（失敗してもメモリ上の状態がセッションの正）。
type CartUsecase struct {
	mu      sync.Mutex
	carts   map[string]*sessionCart
	persist repo.CartPersistence
	log     *zap.Logger
}

// アイドルセッションの退避。匿名セッションは際限なく増えるので、
// 最終アクセスから cartIdleTTL を超えたものは map とゴルーチンごと落とす。
const (
	cartIdleTTL   = 30 * time.Minute
	cartSweepTick = 5 * time.Minute
)

// セッション1つ分のカート。
// saves は容量1のチャネルで、古いスナップショットは最新に置き換える。
// 書き込みは専用の1本のゴルーチンが順番に流すので、後勝ちが構造的に保証される。
type sessionCart struct {
	items      []model.LineItem
	saves      chan []model.LineItem
	lastAccess time.Time
}

func NewCartUsecase(persist repo.CartPersistence, log *zap.Logger) *CartUsecase {
	u := &CartUsecase{
		carts:   make(map[string]*sessionCart),
		persist: persist,
		log:     log,
	}
	go u.sweepLoop()
	return u
}

type AddItemInput struct {
	ProductID  string
	VariantKey string
	Quantity   int64
	UnitPrice  decimal.Decimal
	Name       string
	ImageURL   string
}

// AddItem は同一 (productId, variantKey) があれば数量加算、無ければ末尾に追加。
// quantity < 1 は 1 に切り上げる（エラーにしない）。
func (u *CartUsecase) AddItem(ctx context.Context, sessionID string, in AddItemInput) []model.LineItem {
	u.mu.Lock()
	defer u.mu.Unlock()

	sc := u.session(ctx, sessionID)

	qty := in.Quantity
	if qty < 1 {
		qty = 1
	}

	merged := false
	for i := range sc.items {
		if sc.items[i].SameKey(in.ProductID, in.VariantKey) {
			sc.items[i].Quantity += qty
			merged = true
			break
		}
	}
	if !merged {
		sc.items = append(sc.items, model.LineItem{
			ProductID:  in.ProductID,
			VariantKey: in.VariantKey,
			Name:       in.Name,
			ImageURL:   in.ImageURL,
			UnitPrice:  in.UnitPrice,
			Quantity:   qty,
		})
	}

	u.enqueueSave(sc)
	return snapshotItems(sc.items)
}

// UpdateQuantity は数量を変更する。1未満は1にクランプ。
// 行が見つからなくても何もしない（削除は RemoveItem の仕事）。
func (u *CartUsecase) UpdateQuantity(ctx context.Context, sessionID string, productID string, variantKey string, newQty int64) []model.LineItem {
	u.mu.Lock()
	defer u.mu.Unlock()

	sc := u.session(ctx, sessionID)

	if newQty < 1 {
		newQty = 1
	}

	for i := range sc.items {
		if sc.items[i].SameKey(productID, variantKey) {
			sc.items[i].Quantity = newQty
			break
		}
	}

	u.enqueueSave(sc)
	return snapshotItems(sc.items)
}

// RemoveItem は行を削除する。無ければ何もしない（冪等）。
func (u *CartUsecase) RemoveItem(ctx context.Context, sessionID string, productID string, variantKey string) []model.LineItem {
	u.mu.Lock()
	defer u.mu.Unlock()

	sc := u.session(ctx, sessionID)

	for i := range sc.items {
		if sc.items[i].SameKey(productID, variantKey) {
			sc.items = append(sc.items[:i], sc.items[i+1:]...)
			break
		}
	}

	u.enqueueSave(sc)
	return snapshotItems(sc.items)
}

// Clear はカートを空にする。注文確定後に呼ぶ。
func (u *CartUsecase) Clear(ctx context.Context, sessionID string) {
	u.mu.Lock()
	defer u.mu.Unlock()

	sc := u.session(ctx, sessionID)
	sc.items = []model.LineItem{}

	u.enqueueSave(sc)
}

// Items は現在のカートのスナップショットを返す。
func (u *CartUsecase) Items(ctx context.Context, sessionID string) []model.LineItem {
	u.mu.Lock()
	defer u.mu.Unlock()

	sc := u.session(ctx, sessionID)
	return snapshotItems(sc.items)
}

// session はセッションのカートを返す。初回はストレージから復元してから返すので、
// 復元前の AddItem が古い保存で上書きされるレースは起きない。
// 復元の失敗・壊れたデータは空カート扱い（起動を止めない）。
func (u *CartUsecase) session(ctx context.Context, sessionID string) *sessionCart {
	if sc, ok := u.carts[sessionID]; ok {
		sc.lastAccess = time.Now()
		return sc
	}

	items, err := u.persist.Load(ctx, sessionID)
	if err != nil {
		u.log.Warn("cart restore failed; starting empty",
			zap.String("session_id", sessionID), zap.Error(err))
		items = []model.LineItem{}
	}

	sc := &sessionCart{
		items:      items,
		saves:      make(chan []model.LineItem, 1),
		lastAccess: time.Now(),
	}
	u.carts[sessionID] = sc

	go u.saveLoop(sessionID, sc.saves)

	return sc
}

// EvictIdle は now 時点で最終アクセスから cartIdleTTL を超えたセッションを落とす。
// saves を閉じると saveLoop は残りを書き切ってから終了する。
// 退避後に戻ってきた訪問者は session() が永続化から復元するので、カートは失われない。
func (u *CartUsecase) EvictIdle(now time.Time) int {
	u.mu.Lock()
	defer u.mu.Unlock()

	evicted := 0
	for id, sc := range u.carts {
		if now.Sub(sc.lastAccess) <= cartIdleTTL {
			continue
		}
		close(sc.saves)
		delete(u.carts, id)
		evicted++
	}
	return evicted
}

func (u *CartUsecase) sweepLoop() {
	t := time.NewTicker(cartSweepTick)
	defer t.Stop()
	for now := range t.C {
		if n := u.EvictIdle(now); n > 0 {
			u.log.Info("evicted idle carts", zap.Int("count", n))
		}
	}
}

// enqueueSave は最新スナップショットを書き込みキューへ。呼び出し元が u.mu を持つ。
// キューが埋まっていたら古い方を捨てる（各スナップショットは全量なので捨てて安全）。
func (u *CartUsecase) enqueueSave(sc *sessionCart) {
	snap := snapshotItems(sc.items)
	for {
		select {
		case sc.saves <- snap:
			return
		default:
			select {
			case <-sc.saves:
			default:
			}
		}
	}
}

// saveLoop はセッション専属の書き込みゴルーチン。
// 失敗はログだけ残して続行する（耐久性は落ちても機能は生きる）。
func (u *CartUsecase) saveLoop(sessionID string, saves <-chan []model.LineItem) {
	for snap := range saves {
		if err := u.persist.Save(context.Background(), sessionID, snap); err != nil {
			u.log.Warn("cart save failed; in-memory cart stays authoritative",
				zap.String("session_id", sessionID), zap.Error(err))
		}
	}
}

func snapshotItems(items []model.LineItem) []model.LineItem {
	out := make([]model.LineItem, len(items))
	copy(out, items)
	return out
}
