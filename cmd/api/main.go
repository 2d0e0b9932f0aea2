package main

import (
	"context"
	"time"

	"github.com/Niaj-FreshNet/khushbuwaala-sub001/internal/config"
	"github.com/Niaj-FreshNet/khushbuwaala-sub001/internal/domain/model"
	"github.com/Niaj-FreshNet/khushbuwaala-sub001/internal/handler"
	"github.com/Niaj-FreshNet/khushbuwaala-sub001/internal/infra/db"
	infraRepo "github.com/Niaj-FreshNet/khushbuwaala-sub001/internal/infra/repository"
	repo "github.com/Niaj-FreshNet/khushbuwaala-sub001/internal/repository"
	"github.com/Niaj-FreshNet/khushbuwaala-sub001/internal/server"
	"github.com/Niaj-FreshNet/khushbuwaala-sub001/internal/usecase"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const cartTTL = 30 * 24 * time.Hour

func main() {
	// .env無しは許容（本番は環境変数で渡す）
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := newLogger(cfg.GoEnv)
	defer logger.Sync()

	//DB接続
	gormDB, err := db.Connect()
	if err != nil {
		logger.Fatal("db connect failed", zap.Error(err))
	}
	if err := gormDB.AutoMigrate(
		&model.Product{},
		&model.ProductVariant{},
		&model.Order{},
		&model.OrderItem{},
		&model.Coupon{},
	); err != nil {
		logger.Fatal("migrate failed", zap.Error(err))
	}

	//Repository（GORM実装）生成
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	orderRepo := infraRepo.NewOrderGormRepository(gormDB)
	couponRepo := infraRepo.NewCouponGormRepository(gormDB)

	//カート保存先（Redisが使えなければメモリで続行）
	cartPersist := newCartPersistence(cfg, logger)

	//Usecase生成
	productUC := usecase.NewProductUsecase(productRepo)
	cartUC := usecase.NewCartUsecase(cartPersist, logger)
	checkoutUC := usecase.NewCheckoutUsecase(cartUC, productUC, orderRepo, couponRepo, cfg.ShippingFee, logger)

	//Handler生成
	productH := handler.NewProductHandler(productUC)
	cartH := handler.NewCartHandler(cartUC, productUC)
	checkoutH := handler.NewCheckoutHandler(checkoutUC)
	adminProductH := handler.NewAdminProductHandler(productUC)

	//Server起動
	e := server.New(cfg, productH, cartH, checkoutH, adminProductH)

	addr := cfg.Port
	if addr[0] != ':' {
		addr = ":" + addr
	}

	logger.Info("listening", zap.String("addr", addr))
	if err := server.Start(e, addr); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func newLogger(goEnv string) *zap.Logger {
	if goEnv == "prod" {
		logger, err := zap.NewProduction()
		if err != nil {
			panic(err)
		}
		return logger
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	return logger
}

// Redisに繋がらないときはメモリ実装にフォールバックする。
// 耐久性は落ちるが、カート機能自体は動き続ける。
func newCartPersistence(cfg config.Config, logger *zap.Logger) repo.CartPersistence {
	if cfg.RedisURL == "" {
		logger.Warn("REDIS_URL not set; cart persistence is in-memory only")
		return infraRepo.NewCartMemoryRepository()
	}

	redisStore, err := infraRepo.NewCartRedisRepository(cfg.RedisURL, cartTTL)
	if err != nil {
		logger.Warn("redis setup failed; falling back to in-memory cart store", zap.Error(err))
		return infraRepo.NewCartMemoryRepository()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := redisStore.Ping(ctx); err != nil {
		logger.Warn("redis unreachable; falling back to in-memory cart store", zap.Error(err))
		return infraRepo.NewCartMemoryRepository()
	}

	return redisStore
}
