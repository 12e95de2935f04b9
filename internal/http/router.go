package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type Handlers struct {
	Auth    *AuthHandler
	Profile *ProfileHandler
	Catalog *CatalogHandler
	Cart    *CartHandler
	Order   *OrderHandler
}

func NewRouter(h Handlers, verifier TokenVerifier, requestTimeout time.Duration) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(middleware.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/register", h.Auth.Register)
	r.Post("/login", h.Auth.Login)

	r.Get("/products", h.Catalog.ListProducts)
	r.Get("/products/popular", h.Catalog.ListPopularProducts)
	r.Get("/products/{id}/reviews", h.Catalog.ListReviews)

	r.Group(func(r chi.Router) {
		r.Use(Authenticator(verifier))

		r.Post("/logout", h.Auth.Logout)
		r.Get("/profile", h.Profile.GetProfile)
		r.Put("/profile", h.Profile.UpdateProfile)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", h.Cart.GetCart)
			r.Post("/", h.Cart.AddItem)
			r.Delete("/", h.Cart.ClearCart)
			r.Put("/{product_id}", h.Cart.UpdateQuantity)
			r.Delete("/{product_id}", h.Cart.RemoveItem)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", h.Order.PlaceOrder)
			r.Get("/", h.Order.ListOrders)
		})
	})

	return r
}
