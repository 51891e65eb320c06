package server

import (
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"uglgen/internal/config"
	"uglgen/internal/middleware"
)

func NewRouter(cfg config.Config, gen Generator, logger zerolog.Logger) *chi.Mux {
	r := chi.NewRouter()

	// access log wraps recovery so panics are logged as 500s
	r.Use(middleware.OrderContext(logger))
	r.Use(middleware.AccessLog(logger))
	r.Use(middleware.RecoverPanics(logger))
	r.Use(middleware.LimitBytes(int64(cfg.MaxBodyKB) * 1024))

	r.Get("/health", Health(gen))
	r.Post("/orders", CreateOrder(gen, logger))
	r.Post("/orders/ugl", CreateOrderFile(gen, cfg.OutputCharset, logger))

	return r
}
