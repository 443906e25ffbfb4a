package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"centsible-server/src/category"
	"centsible-server/src/handlers"
	"centsible-server/src/ingest"
	"centsible-server/src/middleware"
)

func NewRouter(pool *pgxpool.Pool, pipe *ingest.Pipeline, resolver *category.Resolver, readOnly bool) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.CORSMiddleware)
	r.Use(middleware.ReadOnlyMiddleware(readOnly))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/login", handlers.Login(pool))
		r.Post("/register", handlers.Register(pool))

		// Protected routes
		r.With(middleware.JWTAuthMiddleware).Group(func(r chi.Router) {
			// Ingestion
			r.Post("/ingest", handlers.IngestStatement(pool, pipe))
			r.Get("/files", handlers.GetStatementFiles(pool))
			r.Get("/files/{file_id}", handlers.GetStatementFileByID(pool))

			// Transactions
			r.Get("/transactions", handlers.GetTransactions(pool))
			r.Post("/transactions/transfers/detect", handlers.DetectTransfers(pipe))
			r.Post("/transactions/{transaction_id}/categorize", handlers.CategorizeTransaction(resolver))
			r.Put("/transactions/{transaction_id}/category", handlers.SetTransactionCategory(resolver))
			r.Put("/transactions/{transaction_id}/vendor", handlers.CorrectVendor(pool))
			r.Post("/transactions/categorize/bulk", handlers.CategorizeBulk(resolver))
			r.Post("/transactions/vendor/bulk", handlers.ResolveVendorsBulk(pipe))

			// Vendor mappings
			r.Post("/vendor-mappings", handlers.CreateVendorMapping(pool))
			r.Get("/vendor-mappings", handlers.GetVendorMappings(pool))
			r.Delete("/vendor-mappings/{mapping_id}", handlers.DeleteVendorMapping(pool))

			// Categories
			r.Get("/categories", handlers.GetCategories(pool))
			r.Post("/categories", handlers.CreateCategory(pool))
			r.Delete("/categories/{category_id}", handlers.DeleteCategory(pool))
		})
	})

	return r
}
