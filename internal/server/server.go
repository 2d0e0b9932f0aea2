package server

import (
	"github.com/Niaj-FreshNet/khushbuwaala-sub001/internal/config"
	"github.com/Niaj-FreshNet/khushbuwaala-sub001/internal/handler"
	"github.com/Niaj-FreshNet/khushbuwaala-sub001/internal/middleware"

	"github.com/labstack/echo/v4"
)

// New は全ルートを登録したechoを返す。
func New(
	cfg config.Config,
	productH *handler.ProductHandler,
	cartH *handler.CartHandler,
	checkoutH *handler.CheckoutHandler,
	adminProductH *handler.AdminProductHandler,
) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	// カートのキーになるセッションIDを全ルートで持つ
	e.Use(middleware.Session(cfg))

	productH.RegisterRoutes(e)
	cartH.RegisterRoutes(e)
	checkoutH.RegisterRoutes(e)
	adminProductH.RegisterRoutes(e)

	return e
}

func Start(e *echo.Echo, addr string) error {
	return e.Start(addr)
}
