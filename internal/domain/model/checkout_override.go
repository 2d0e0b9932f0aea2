package model

// 「今すぐ購入」の一時状態。
// Active のときチェックアウトは Item だけを使い、カート本体は読まない。
// セッション内でのみ保持し、永続化はしない（リロードで消えてよい）。
type CheckoutOverride struct {
	Item   *LineItem
	Active bool
}
