package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/openbank/openbank-api/internal/api"
	apiMiddleware "github.com/openbank/openbank-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes
// and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	authHandler := api.NewAuthHandler(app.userService)
	accountHandler := api.NewAccountHandler(app.ledgerService, app.rates)
	cardHandler := api.NewCardHandler(app.cardService)
	transactionHandler := api.NewTransactionHandler(app.transactionService)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)

	r.Route("/api", func(r chi.Router) {
		// Authentication endpoints (public)
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			// Account endpoints
			r.Post("/accounts", accountHandler.Create)
			r.Get("/accounts", accountHandler.List)
			r.Post("/accounts/transfer", accountHandler.Transfer)
			r.Post("/accounts/convert", accountHandler.Convert)
			r.Get("/accounts/rates", accountHandler.Rates)
			r.Get("/accounts/find", accountHandler.Find)

			// Card endpoints
			r.Post("/cards", cardHandler.Create)
			r.Get("/cards", cardHandler.Get)
			r.Post("/cards/credit", cardHandler.Credit)
			r.Post("/cards/debit", cardHandler.Debit)

			// Transaction history
			r.Get("/transactions", transactionHandler.List)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
