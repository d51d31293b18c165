package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/boutique/internal/catalog"
	"github.com/example/boutique/internal/config"
	"github.com/example/boutique/internal/coordinator"
	"github.com/example/boutique/internal/handlers"
	"github.com/example/boutique/internal/middleware"
	"github.com/example/boutique/internal/options"
)

// Register wires all HTTP routes. Reads are public; mutations sit behind
// the bearer-token middleware.
func Register(app *fiber.App, db *gorm.DB, cfg *config.Config, store *catalog.Store, coord *coordinator.Coordinator, registry *options.Registry) {
	productHandler := handlers.NewProductHandler(store, coord)
	carouselHandler := handlers.NewCarouselHandler(store, coord)
	optionsHandler := handlers.NewOptionsHandler(db, registry)

	api := app.Group("/api")
	auth := middleware.AuthMiddleware(cfg)

	products := api.Group("/products")
	products.Get("/", productHandler.ListProducts)
	products.Get("/:id", productHandler.GetProduct)
	products.Post("/", auth, productHandler.CreateProduct)
	products.Put("/:id", auth, productHandler.UpdateProduct)
	products.Delete("/:id", auth, productHandler.DeleteProduct)
	products.Post("/:id/duplicate", auth, productHandler.DuplicateProduct)
	products.Post("/:id/highlight", auth, productHandler.ToggleHighlight)

	api.Get("/highlights", productHandler.ListHighlights)

	carousel := api.Group("/carousel")
	carousel.Get("/", carouselHandler.ListSlides)
	carousel.Post("/", auth, carouselHandler.CreateSlide)
	carousel.Put("/:id", auth, carouselHandler.UpdateSlide)
	carousel.Put("/:id/image", auth, carouselHandler.SetSlideImage)
	carousel.Delete("/:id", auth, carouselHandler.DeleteSlide)

	api.Get("/options", optionsHandler.GetOptions)
	api.Post("/options/refresh", auth, optionsHandler.RefreshOptions)

	sizes := api.Group("/sizes")
	sizes.Get("/", optionsHandler.ListSizes)
	sizes.Post("/", auth, optionsHandler.CreateSize)
	sizes.Put("/:id", auth, optionsHandler.UpdateSize)
	sizes.Delete("/:id", auth, optionsHandler.DeleteSize)

	stores := api.Group("/stores")
	stores.Get("/", optionsHandler.ListStores)
	stores.Post("/", auth, optionsHandler.CreateStore)
	stores.Put("/:id", auth, optionsHandler.UpdateStore)
	stores.Delete("/:id", auth, optionsHandler.DeleteStore)

	classifications := api.Group("/classifications")
	classifications.Get("/", optionsHandler.ListClassifications)
	classifications.Post("/", auth, optionsHandler.CreateClassification)
	classifications.Put("/:id", auth, optionsHandler.UpdateClassification)
	classifications.Delete("/:id", auth, optionsHandler.DeleteClassification)

	genders := api.Group("/genders")
	genders.Get("/", optionsHandler.ListGenders)
	genders.Post("/", auth, optionsHandler.CreateGender)
	genders.Put("/:id", auth, optionsHandler.UpdateGender)
	genders.Delete("/:id", auth, optionsHandler.DeleteGender)
}
