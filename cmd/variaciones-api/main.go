package main

import (
	"github.com/dileroc6/analisis-variaciones-felinos/internal/api"
	"github.com/dileroc6/analisis-variaciones-felinos/internal/api/handler"
	"github.com/dileroc6/analisis-variaciones-felinos/internal/config"
	"github.com/dileroc6/analisis-variaciones-felinos/internal/store"
	"github.com/dileroc6/analisis-variaciones-felinos/pkg/router"
)

// @title Variaciones SEO API
// @version 1.0
// @description API to trigger and inspect SEO variation pipeline runs.
// @host localhost:8080
// @BasePath /api/v1
func main() {
	cfg, err := config.Load(config.DefaultConfigPath)
	if err != nil {
		panic(err)
	}

	// Init run ledger
	if err := store.InitRunLedger(cfg.RunLedger); err != nil {
		panic(err)
	}

	// Create router
	r := router.New()

	// Register API routes
	api.RegisterRoutes(r, handler.New(cfg))

	// Start server
	r.Start(":8080")
}
