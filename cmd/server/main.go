package main

import (
	"log"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/spf13/afero"

	"github.com/example/boutique/internal/assets"
	"github.com/example/boutique/internal/catalog"
	"github.com/example/boutique/internal/config"
	"github.com/example/boutique/internal/coordinator"
	"github.com/example/boutique/internal/database"
	"github.com/example/boutique/internal/options"
	"github.com/example/boutique/internal/routes"
)

func main() {
	cfg := config.Load()
	db := database.Connect(cfg.DatabaseURL)

	if err := os.MkdirAll(cfg.AssetRoot, 0o755); err != nil {
		log.Fatalf("failed to create asset root: %v", err)
	}

	store := catalog.NewStore(db, cfg.StoreTimeout)
	blobFS := afero.NewBasePathFs(afero.NewOsFs(), cfg.AssetRoot)
	blobs := assets.NewDiskStore(blobFS, cfg.AssetBaseURL)
	coord := coordinator.New(store, blobs)
	registry := options.NewRegistry(store)

	app := fiber.New(fiber.Config{
		AppName: "Boutique Backend",
	})

	app.Use(recover.New())
	app.Use(logger.New())

	app.Static(assets.URLMarker, cfg.AssetRoot)

	routes.Register(app, db, cfg, store, coord, registry)

	log.Printf("Starting server on :%s", cfg.AppPort)
	if err := app.Listen(":" + cfg.AppPort); err != nil {
		log.Fatalf("fiber.Listen error: %v", err)
	}
}
