package main

import (
	"log"

	"github.com/RoyceAzure/lab/storefront/internal/api/handler"
	"github.com/RoyceAzure/lab/storefront/internal/api/middleware"
	"github.com/RoyceAzure/lab/storefront/internal/api/router"
	"github.com/RoyceAzure/lab/storefront/internal/appcontext"
	"github.com/RoyceAzure/lab/storefront/internal/config"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository/db"
	"github.com/shopspring/decimal"
)

// @title storefront order
// @version 1.0
// @description 下單與訂單查詢

// @BasePath  /

// @securityDefinitions.apikey  ApiKeyAuth
// @in header
// @name Authorization
func main() {
	decimal.MarshalJSONWithoutQuotes = true

	app, err := appcontext.NewApplicationContext(config.GetConfig(), db.OrderSchema)
	if err != nil {
		log.Fatal(err)
	}
	if err := app.SetUpOrder(); err != nil {
		app.Logger.Fatal().Err(err).Msg("setup order service")
	}

	auth := middleware.NewAuth(app.TokenMaker)
	orderHandler := handler.NewOrderHandler(app.OrderService, app.Orchestrator, auth, app.Cf.LegacyPlacementResponse, app.Logger)
	r := router.SetupOrderRouter(orderHandler, auth, app.PlaceOrderRate, app.Logger)

	if err := app.Serve(r); err != nil {
		app.Logger.Fatal().Err(err).Msg("order service stopped")
	}
}
