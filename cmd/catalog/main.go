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

// @title storefront catalog
// @version 1.0
// @description 商品讀取與庫存異動

// @BasePath  /

// @securityDefinitions.apikey  ApiKeyAuth
// @in header
// @name Authorization
func main() {
	decimal.MarshalJSONWithoutQuotes = true

	app, err := appcontext.NewApplicationContext(config.GetConfig(), db.CatalogSchema)
	if err != nil {
		log.Fatal(err)
	}
	if err := app.SetUpCatalog(); err != nil {
		app.Logger.Fatal().Err(err).Msg("setup catalog service")
	}

	catalogHandler := handler.NewCatalogHandler(app.CatalogService)
	r := router.SetupCatalogRouter(catalogHandler, middleware.NewAuth(app.TokenMaker), app.Logger)

	if err := app.Serve(r); err != nil {
		app.Logger.Fatal().Err(err).Msg("catalog service stopped")
	}
}
