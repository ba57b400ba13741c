package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/lmoralesdev/caja-backend/internal/config"
	"github.com/lmoralesdev/caja-backend/internal/database"
	"github.com/lmoralesdev/caja-backend/internal/migrations"
	"github.com/lmoralesdev/caja-backend/internal/modules/cashbox"
	"github.com/lmoralesdev/caja-backend/internal/modules/closing"
	"github.com/lmoralesdev/caja-backend/internal/modules/inventory"
	"github.com/lmoralesdev/caja-backend/internal/modules/sale"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using environment")
	}
	cfg := config.Load()

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if err := migrations.Run(db); err != nil {
		log.Fatal(err)
	}
	fmt.Println("Successfully connected to the database!")

	// ── Router ──────────────────────────────────────────────
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.RequestID)

	// ── Inventory ───────────────────────────────────────────
	inventoryRepo := inventory.NewPostgresRepository(db)
	inventoryService := inventory.NewService(inventoryRepo)
	inventory.NewHandler(inventoryService).RegisterRoutes(router)

	// ── Sales ───────────────────────────────────────────────
	saleRepo := sale.NewPostgresRepository(db)
	saleService := sale.NewService(saleRepo, inventoryRepo)
	sale.NewHandler(saleService).RegisterRoutes(router)

	// ── Cash ledger ─────────────────────────────────────────
	cashRepo := cashbox.NewPostgresRepository(db)
	cashService := cashbox.NewService(cashRepo)
	cashbox.NewHandler(cashService).RegisterRoutes(router)

	// ── Reconciliation ──────────────────────────────────────
	closingRepo := closing.NewPostgresRepository(db)
	closingService := closing.NewService(closingRepo)
	closing.NewHandler(closingService).RegisterRoutes(router)

	// ── Start Server ────────────────────────────────────────
	fmt.Printf("Caja API server starting on :%s\n", cfg.HTTPPort)
	log.Fatal(http.ListenAndServe(":"+cfg.HTTPPort, router))
}
