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

// @title storefront cart
// @version 1.0
// @description 購物車

// @BasePath  /

// @securityDefinitions.apikey  ApiKeyAuth
// @in header
// @name Authorization
func main() {
	decimal.MarshalJSONWithoutQuotes = true

	app, err := appcontext.NewApplicationContext(config.GetConfig(), db.CartSchema)
	if err != nil {
		log.Fatal(err)
	}
	if err := app.SetUpCart(); err != nil {
		app.Logger.Fatal().Err(err).Msg("setup cart service")
	}

	auth := middleware.NewAuth(app.TokenMaker)
	cartHandler := handler.NewCartHandler(app.CartService, auth)
	r := router.SetupCartRouter(cartHandler, auth, app.Logger)

	if err := app.Serve(r); err != nil {
		app.Logger.Fatal().Err(err).Msg("cart service stopped")
	}
}
