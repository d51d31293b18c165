package handlers

import (
	"fmt"
	"io"
	"mime/multipart"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/example/boutique/internal/catalog"
	"github.com/example/boutique/internal/coordinator"
	"github.com/example/boutique/internal/filter"
	"github.com/example/boutique/internal/middleware"
	"github.com/example/boutique/internal/models"
	"github.com/example/boutique/internal/utils"
)

// ProductHandler serves catalog reads and admin product operations.
type ProductHandler struct {
	store *catalog.Store
	coord *coordinator.Coordinator
}

// NewProductHandler constructs ProductHandler.
func NewProductHandler(store *catalog.Store, coord *coordinator.Coordinator) *ProductHandler {
	return &ProductHandler{store: store, coord: coord}
}

// ListProducts returns the catalog filtered, sorted and paginated.
func (h *ProductHandler) ListProducts(c *fiber.Ctx) error {
	products, err := h.store.Products(c.UserContext())
	if err != nil {
		return mapError(err)
	}

	q := filter.Query{
		Classification: c.Query("classification"),
		Gender:         c.Query("gender"),
		Store:          c.Query("store"),
		Size:           c.Query("size"),
		Text:           c.Query("q"),
	}
	if v := c.Query("max_price"); v != "" {
		if ceiling, err := strconv.ParseFloat(v, 64); err == nil {
			q.PriceCeiling = ceiling
		}
	}

	sortKey := filter.SortKey(c.Query("sort", string(filter.SortDefault)))
	result := filter.Sort(filter.Apply(products, q), sortKey)

	pg := utils.ParsePagination(c)
	lo, hi := pg.Slice(len(result))

	return c.JSON(fiber.Map{
		"success": true,
		"data":    result[lo:hi],
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    len(result),
		},
	})
}

// GetProduct loads a single product.
func (h *ProductHandler) GetProduct(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	product, err := h.store.Product(c.UserContext(), id)
	if err != nil {
		return mapError(err)
	}

	return c.JSON(fiber.Map{"success": true, "data": product})
}

// CreateProduct handles the multipart admin form: fields plus an optional
// primary image and up to three extra images.
func (h *ProductHandler) CreateProduct(c *fiber.Ctx) error {
	form := parseProductForm(c)

	primary, extras, err := parseProductUploads(c)
	if err != nil {
		return err
	}

	product, err := h.coord.CreateProduct(c.UserContext(), middleware.GetSession(c), form, primary, extras)
	if err != nil {
		return mapError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": product})
}

// UpdateProduct applies the same form to an existing record.
func (h *ProductHandler) UpdateProduct(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	form := parseProductForm(c)

	primary, extras, err := parseProductUploads(c)
	if err != nil {
		return err
	}

	product, err := h.coord.UpdateProduct(c.UserContext(), middleware.GetSession(c), id, form, primary, extras)
	if err != nil {
		return mapError(err)
	}

	return c.JSON(fiber.Map{"success": true, "data": product})
}

// DeleteProduct removes a product together with its assets and highlight
// membership.
func (h *ProductHandler) DeleteProduct(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	if err := h.coord.DeleteProduct(c.UserContext(), middleware.GetSession(c), id); err != nil {
		return mapError(err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// DuplicateProduct clones a product and its assets.
func (h *ProductHandler) DuplicateProduct(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	res, err := h.coord.DuplicateProduct(c.UserContext(), middleware.GetSession(c), id)
	if err != nil {
		return mapError(err)
	}

	message := "product duplicated"
	if res.SharedAssets > 0 {
		message = fmt.Sprintf("product duplicated, %d image(s) still shared with the original until re-uploaded", res.SharedAssets)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":       true,
		"data":          res.Product,
		"message":       message,
		"shared_assets": res.SharedAssets,
	})
}

// ToggleHighlight flips a product's membership in the highlight set.
func (h *ProductHandler) ToggleHighlight(c *fiber.Ctx) error {
	set, err := h.coord.ToggleHighlight(c.UserContext(), middleware.GetSession(c), c.Params("id"))
	if err != nil {
		return mapError(err)
	}

	return c.JSON(fiber.Map{"success": true, "data": set})
}

// ListHighlights returns the highlighted products in curation order.
func (h *ProductHandler) ListHighlights(c *fiber.Ctx) error {
	ctx := c.UserContext()

	set, err := h.store.HighlightSet(ctx)
	if err != nil {
		return mapError(err)
	}

	products, err := h.store.Products(ctx)
	if err != nil {
		return mapError(err)
	}

	byID := make(map[string]models.Product, len(products))
	for _, p := range products {
		byID[p.ID.String()] = p
	}

	ordered := make([]models.Product, 0, len(set.ProductIDs))
	for _, id := range set.ProductIDs {
		if p, ok := byID[id]; ok {
			ordered = append(ordered, p)
		}
	}

	return c.JSON(fiber.Map{"success": true, "data": fiber.Map{
		"productIds": set.ProductIDs,
		"products":   ordered,
		"version":    set.Version,
	}})
}

func parseProductForm(c *fiber.Ctx) coordinator.ProductForm {
	form := coordinator.ProductForm{
		Name:           c.FormValue("name"),
		Store:          c.FormValue("store"),
		Code:           c.FormValue("code"),
		LabelCode:      c.FormValue("labelCode"),
		Description:    c.FormValue("description"),
		Classification: c.FormValue("classification"),
		Gender:         c.FormValue("gender"),
	}

	form.Price, _ = strconv.ParseFloat(c.FormValue("price"), 64)
	form.DiscountPrice, _ = strconv.ParseFloat(c.FormValue("discountPrice"), 64)
	form.Quantity, _ = strconv.Atoi(c.FormValue("quantity"))

	if mf, err := c.MultipartForm(); err == nil {
		form.Sizes = mf.Value["sizes"]
	}

	return form
}

func parseProductUploads(c *fiber.Ctx) (*coordinator.Upload, []coordinator.Upload, error) {
	var primary *coordinator.Upload
	if fh, err := c.FormFile("image"); err == nil && fh != nil {
		up, err := readUpload(fh)
		if err != nil {
			return nil, nil, fiber.NewError(fiber.StatusBadRequest, "unreadable image upload")
		}
		primary = up
	}

	var extras []coordinator.Upload
	if mf, err := c.MultipartForm(); err == nil {
		for _, fh := range mf.File["extraImages"] {
			up, err := readUpload(fh)
			if err != nil {
				return nil, nil, fiber.NewError(fiber.StatusBadRequest, "unreadable extra image upload")
			}
			extras = append(extras, *up)
		}
	}

	return primary, extras, nil
}

func readUpload(fh *multipart.FileHeader) (*coordinator.Upload, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}

	return &coordinator.Upload{Filename: fh.Filename, Data: data}, nil
}
