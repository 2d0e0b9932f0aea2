package repository

import (
	"encoding/json"

	"github.com/Niaj-FreshNet/khushbuwaala-sub001/internal/domain/model"
)

// 保存形式のバージョン。v1 = {"version":1,"items":[...]}
const cartFormatVersion = 1

type cartEnvelope struct {
	Version int              `json:"version"`
	Items   []model.LineItem `json:"items"`
}

// encodeCart はスナップショット全体をバージョン付きで直列化する。
func encodeCart(items []model.LineItem) ([]byte, error) {
	if items == nil {
		items = []model.LineItem{}
	}
	return json.Marshal(cartEnvelope{Version: cartFormatVersion, Items: items})
}

// decodeCart は保存データを復元する。
// 旧形式（バージョン無しの素の配列）も受け付ける。
// 壊れたデータ・未知のバージョン・必須フィールド欠けは空カートに落とし、
// 起動を止めない。
func decodeCart(data []byte) []model.LineItem {
	if len(data) == 0 {
		return []model.LineItem{}
	}

	var env cartEnvelope
	if err := json.Unmarshal(data, &env); err == nil && env.Version != 0 {
		if env.Version != cartFormatVersion {
			return []model.LineItem{}
		}
		return validItems(env.Items)
	}

	// 旧形式（素の配列）
	var legacy []model.LineItem
	if err := json.Unmarshal(data, &legacy); err != nil {
		return []model.LineItem{}
	}
	return validItems(legacy)
}

// 1行でも構造が壊れていたら保存全体を信用せず空を返す。
func validItems(items []model.LineItem) []model.LineItem {
	out := make([]model.LineItem, 0, len(items))
	for _, it := range items {
		if !it.Valid() {
			return []model.LineItem{}
		}
		out = append(out, it)
	}
	return out
}
