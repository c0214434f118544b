package router

import (
	"net/http"
	"time"

	"github.com/RoyceAzure/lab/storefront/docs"
	"github.com/RoyceAzure/lab/storefront/internal/api/handler"
	m "github.com/RoyceAzure/lab/storefront/internal/api/middleware"
	"github.com/RoyceAzure/lab/storefront/internal/api/response"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	httpSwagger "github.com/swaggo/http-swagger"
)

const requestTimeout = 60 * time.Second

func newBaseRouter(docInstance string, auth *m.Auth, logger *zerolog.Logger) *chi.Mux {
	r := chi.NewRouter()

	// 全局中間件
	r.Use(m.RequestIdMiddleware)
	r.Use(middleware.RealIP)
	r.Use(m.LoggerMiddleware(logger))
	r.Use(m.RecoverMiddleware(logger))
	r.Use(auth.PayloadMiddleware)
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Swagger 文檔
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/swagger/", http.StatusMovedPermanently)
	})
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.InstanceName(docInstance)))
	return r
}

func logRoutes(r chi.Routes, logger *zerolog.Logger) {
	err := chi.Walk(r, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		logger.Debug().Str("method", method).Str("route", route).Msg("route registered")
		return nil
	})
	if err != nil {
		logger.Warn().Err(err).Msg("failed to walk routes")
	}
}

// SetupCatalogRouter 商品讀取與庫存異動; 庫存路由只給內部服務 (service token) 呼叫
func SetupCatalogRouter(h *handler.CatalogHandler, auth *m.Auth, logger *zerolog.Logger) *chi.Mux {
	r := newBaseRouter(docs.CatalogInstance, auth, logger)

	r.Route("/products/{id}", func(r chi.Router) {
		r.Get("/", h.GetProduct)
		r.With(auth.RequireService).Post("/stock/decrement", h.DecrementStock)
		r.With(auth.RequireService).Post("/stock/restock", h.RestockStock)
	})

	logRoutes(r, logger)
	return r
}

func SetupCartRouter(h *handler.CartHandler, auth *m.Auth, logger *zerolog.Logger) *chi.Mux {
	r := newBaseRouter(docs.CartInstance, auth, logger)

	r.Route("/cart", func(r chi.Router) {
		r.With(auth.RequireCustomer("customerId")).Post("/add-to-cart/{productId}/{customerId}", h.AddToCart)
		// {id} 在 increment/decrement 是購物車項目, 其餘是顧客
		r.With(auth.RequireAuth).Post("/{id}/increment", h.Increment)
		r.With(auth.RequireAuth).Post("/{id}/decrement", h.Decrement)
		r.With(auth.RequireService).Post("/{id}/clear", h.ClearConsumedLines)
		r.With(auth.RequireCustomer("id")).Get("/{id}", h.GetCart)
	})

	logRoutes(r, logger)
	return r
}

func SetupOrderRouter(h *handler.OrderHandler, auth *m.Auth, limiter m.Limiter, logger *zerolog.Logger) *chi.Mux {
	r := newBaseRouter(docs.OrderInstance, auth, logger)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireCustomer("customerId"))
		if limiter != nil {
			r.Use(m.RateLimitMiddleware(limiter, "customerId", logger))
		}
		r.Post("/place-order/{customerId}", h.PlaceOrder)
	})

	r.Route("/orders", func(r chi.Router) {
		r.With(auth.RequireAdmin).Get("/", h.GetAllOrders)
		r.With(auth.RequireAuth).Get("/order/{orderId}", h.GetOrder)
		r.With(auth.RequireAdmin).Put("/order/{orderId}", h.UpdateOrderStatus)
		r.With(auth.RequireCustomer("customerId")).Get("/{customerId}", h.GetCustomerOrders)
	})

	r.With(auth.RequireAdmin).Get("/checkouts/{paymentId}", h.GetCheckout)

	logRoutes(r, logger)
	return r
}
