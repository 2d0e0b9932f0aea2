package config

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
)

// Configはアプリ全体の設定
type Config struct {
	Port string // サーバーポート（8080）

	SessionSecret string // セッションcookieの署名シークレット

	RedisURL string // カート保存先。空ならメモリ実装にフォールバック

	ShippingFee decimal.Decimal // 送料（定額）

	GoEnv string // dev/prod
}

// Loadは環境変数
func Load() (Config, error) {
	cfg := Config{
		Port:          os.Getenv("PORT"),
		SessionSecret: os.Getenv("SESSION_SECRET"),
		RedisURL:      os.Getenv("REDIS_URL"),
		GoEnv:         os.Getenv("GO_ENV"),
	}

	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.GoEnv == "" {
		cfg.GoEnv = "dev"
	}

	//必須チェック
	if cfg.SessionSecret == "" {
		return Config{}, fmt.Errorf("SESSION_SECRET is required")
	}

	fee := os.Getenv("SHIPPING_FEE")
	if fee == "" {
		fee = "0"
	}
	d, err := decimal.NewFromString(fee)
	if err != nil || d.IsNegative() {
		return Config{}, fmt.Errorf("SHIPPING_FEE must be a non-negative number")
	}
	cfg.ShippingFee = d

	return cfg, nil
}
