// Package coordinator sequences the multi-step operations that touch both
// the document store and the blob store. The two stores share no
// transaction; consistency comes from strict ordering (asset writes before
// document writes, document deletes after cleanup attempts) and from
// tolerating best-effort cleanup failures.
package coordinator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/example/boutique/internal/assets"
	"github.com/example/boutique/internal/catalog"
	"github.com/example/boutique/internal/models"
)

const (
	// HighlightCapacity bounds the curated highlight set.
	HighlightCapacity = 6

	// MaxExtraImages bounds a product's supporting images.
	MaxExtraImages = 3

	toggleRetries = 3
)

// CatalogStore is the document-store surface the coordinator needs.
// *catalog.Store satisfies it.
type CatalogStore interface {
	CreateProduct(ctx context.Context, p *models.Product) error
	Product(ctx context.Context, id uuid.UUID) (*models.Product, error)
	UpdateProduct(ctx context.Context, p *models.Product) error
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	HighlightSet(ctx context.Context) (*models.HighlightSet, error)
	SaveHighlightSet(ctx context.Context, set *models.HighlightSet) error
	SaveHighlightSetChecked(ctx context.Context, set *models.HighlightSet) error
	CarouselSlide(ctx context.Context, id uuid.UUID) (*models.CarouselSlide, error)
	SaveCarouselSlide(ctx context.Context, slide *models.CarouselSlide) error
	DeleteCarouselSlide(ctx context.Context, id uuid.UUID) error
}

// Coordinator orchestrates cross-store catalog operations.
type Coordinator struct {
	catalog CatalogStore
	assets  assets.Store
	logf    func(format string, args ...interface{})
	now     func() time.Time
}

// New constructs a Coordinator.
func New(cat CatalogStore, ast assets.Store) *Coordinator {
	return &Coordinator{
		catalog: cat,
		assets:  ast,
		logf:    log.Printf,
		now:     time.Now,
	}
}

// Upload is one file received from the admin form.
type Upload struct {
	Filename string
	Data     []byte
}

// ProductForm carries the editable product fields.
type ProductForm struct {
	Name           string
	Store          string
	Code           string
	LabelCode      string
	Description    string
	Classification string
	Gender         string
	Price          float64
	DiscountPrice  float64
	Quantity       int
	Sizes          []string
}

func (f ProductForm) validate() error {
	var missing []string
	if strings.TrimSpace(f.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(f.Code) == "" {
		missing = append(missing, "code")
	}
	if strings.TrimSpace(f.Description) == "" {
		missing = append(missing, "description")
	}
	if f.Price <= 0 {
		missing = append(missing, "price")
	}
	if f.Quantity <= 0 {
		missing = append(missing, "quantity")
	}
	if strings.TrimSpace(f.Store) == "" {
		missing = append(missing, "store")
	}
	if strings.TrimSpace(f.Classification) == "" {
		missing = append(missing, "classification")
	}
	if len(missing) > 0 {
		return &ValidationError{Fields: missing}
	}
	return nil
}

// apply writes the form onto the record and recomputes the derived fields.
// InventoryValue is always price times quantity, never edited directly.
func (f ProductForm) apply(p *models.Product) {
	p.Name = f.Name
	p.Store = f.Store
	p.Code = f.Code
	p.Description = f.Description
	p.Classification = f.Classification
	p.Gender = f.Gender
	p.Price = f.Price
	p.DiscountPrice = f.DiscountPrice
	p.Quantity = f.Quantity
	p.InventoryValue = f.Price * float64(f.Quantity)

	p.LabelCode = f.LabelCode
	if p.LabelCode == "" {
		p.LabelCode = strings.ToLower(f.Classification) + f.Code
	}

	p.Sizes = dedupe(f.Sizes)
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// CreateProduct validates the form, uploads the supplied images and writes
// the record. Asset writes strictly precede the document write, so a failed
// upload never produces a record with a broken image reference. Assets
// already written when a later upload fails are left behind (logged, not
// rolled back).
func (c *Coordinator) CreateProduct(ctx context.Context, sess Session, form ProductForm, primary *Upload, extras []Upload) (*models.Product, error) {
	if !sess.Admin {
		return nil, ErrForbidden
	}
	if err := form.validate(); err != nil {
		return nil, err
	}
	if len(extras) > MaxExtraImages {
		return nil, ErrTooManyExtraImages
	}

	product := &models.Product{}
	form.apply(product)

	if primary != nil {
		ref, err := c.assets.Store(ctx, primary.Data, assets.FolderProducts, primary.Filename)
		if err != nil {
			return nil, &UploadError{Field: "image", Err: err}
		}
		product.Image = ref.URL
	}

	if len(extras) > 0 {
		urls, err := c.uploadExtras(ctx, extras)
		if err != nil {
			c.logf("create product: aborted after partial uploads, orphaned assets possible: %v", err)
			return nil, err
		}
		product.ExtraImages = urls
	}

	if err := c.catalog.CreateProduct(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// uploadExtras writes all supporting images concurrently. Any failure
// aborts the batch.
func (c *Coordinator) uploadExtras(ctx context.Context, extras []Upload) ([]string, error) {
	urls := make([]string, len(extras))
	g, gctx := errgroup.WithContext(ctx)
	for i, up := range extras {
		i, up := i, up
		g.Go(func() error {
			ref, err := c.assets.Store(gctx, up.Data, assets.FolderProductExtras, up.Filename)
			if err != nil {
				return &UploadError{Field: "extraImages", Err: err}
			}
			urls[i] = ref.URL
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return urls, nil
}

// UpdateProduct applies the create rules to an existing record. A newly
// uploaded image replaces the old one only after the new asset is written
// and the document updated; the stale asset is then deleted best-effort.
func (c *Coordinator) UpdateProduct(ctx context.Context, sess Session, id uuid.UUID, form ProductForm, primary *Upload, extras []Upload) (*models.Product, error) {
	if !sess.Admin {
		return nil, ErrForbidden
	}
	if err := form.validate(); err != nil {
		return nil, err
	}
	if len(extras) > MaxExtraImages {
		return nil, ErrTooManyExtraImages
	}

	product, err := c.catalog.Product(ctx, id)
	if err != nil {
		return nil, err
	}

	oldImage := product.Image
	oldExtras := append([]string(nil), product.ExtraImages...)
	form.apply(product)

	if primary != nil {
		ref, err := c.assets.Store(ctx, primary.Data, assets.FolderProducts, primary.Filename)
		if err != nil {
			return nil, &UploadError{Field: "image", Err: err}
		}
		product.Image = ref.URL
	}

	replacedExtras := len(extras) > 0
	if replacedExtras {
		urls, err := c.uploadExtras(ctx, extras)
		if err != nil {
			c.logf("update product %s: aborted after partial uploads, orphaned assets possible: %v", id, err)
			return nil, err
		}
		product.ExtraImages = urls
	}

	if err := c.catalog.UpdateProduct(ctx, product); err != nil {
		return nil, err
	}

	// Stale assets go last, after the record points at the new ones.
	if primary != nil && oldImage != "" && oldImage != product.Image {
		c.deleteByURL(ctx, oldImage)
	}
	if replacedExtras {
		for _, u := range oldExtras {
			c.deleteByURL(ctx, u)
		}
	}

	return product, nil
}

// DeleteProduct removes a product and everything it owns: its highlight
// membership, its assets and finally the record itself. Cleanup failures are
// logged and tolerated so the record delete always gets its turn; the call
// is safe to re-invoke after a partial run.
func (c *Coordinator) DeleteProduct(ctx context.Context, sess Session, id uuid.UUID) error {
	if !sess.Admin {
		return ErrForbidden
	}

	product, err := c.catalog.Product(ctx, id)
	if err != nil {
		return err
	}

	if set, err := c.catalog.HighlightSet(ctx); err != nil {
		c.logf("delete product %s: highlight read failed: %v", id, err)
	} else if set.Remove(id.String()) {
		if err := c.catalog.SaveHighlightSet(ctx, set); err != nil {
			c.logf("delete product %s: highlight prune failed: %v", id, err)
		}
	}

	var urls []string
	if product.Image != "" {
		urls = append(urls, product.Image)
	}
	urls = append(urls, product.ExtraImages...)

	g, gctx := errgroup.WithContext(ctx)
	for _, u := range urls {
		u := u
		g.Go(func() error {
			c.deleteByURL(gctx, u)
			return nil
		})
	}
	_ = g.Wait()

	return c.catalog.DeleteProduct(ctx, id)
}

// DuplicateResult is the outcome of a duplication. SharedAssets counts the
// copies that failed and fell back to the original URL; the duplicate then
// transiently shares those assets with its source.
type DuplicateResult struct {
	Product      *models.Product
	SharedAssets int
}

// DuplicateProduct clones a record together with its assets. Each asset is
// copied independently; a failed copy falls back to the original URL rather
// than aborting the duplication.
func (c *Coordinator) DuplicateProduct(ctx context.Context, sess Session, id uuid.UUID) (*DuplicateResult, error) {
	if !sess.Admin {
		return nil, ErrForbidden
	}

	original, err := c.catalog.Product(ctx, id)
	if err != nil {
		return nil, err
	}

	dup := *original
	dup.BaseModel = models.BaseModel{} // store assigns a fresh id

	suffix := c.now().UnixMilli()
	dup.Code = fmt.Sprintf("%s_copy_%d", original.Code, suffix)
	label := original.LabelCode
	if label == "" {
		label = "item"
	}
	dup.LabelCode = fmt.Sprintf("%s_copy_%d", label, suffix)

	shared := 0
	var ok bool
	dup.Image, ok = c.copyByURL(ctx, original.Image)
	if !ok {
		shared++
	}

	if n := len(original.ExtraImages); n > 0 {
		copied := make([]string, n)
		fellBack := make([]bool, n)
		g, gctx := errgroup.WithContext(ctx)
		for i, u := range original.ExtraImages {
			i, u := i, u
			g.Go(func() error {
				var ok bool
				copied[i], ok = c.copyByURL(gctx, u)
				fellBack[i] = !ok
				return nil
			})
		}
		_ = g.Wait()
		for _, fb := range fellBack {
			if fb {
				shared++
			}
		}
		dup.ExtraImages = copied
	} else {
		dup.ExtraImages = nil
	}

	if err := c.catalog.CreateProduct(ctx, &dup); err != nil {
		return nil, err
	}
	if shared > 0 {
		c.logf("duplicate product %s: %d asset copies fell back to the shared originals", id, shared)
	}

	return &DuplicateResult{Product: &dup, SharedAssets: shared}, nil
}

// copyByURL clones the asset behind rawURL and returns the copy's URL. On
// any failure it returns the original URL so the field never ends up empty;
// the second return reports whether an independent copy was made.
func (c *Coordinator) copyByURL(ctx context.Context, rawURL string) (string, bool) {
	if rawURL == "" {
		return "", true
	}
	ref, err := c.assets.RefFromURL(rawURL)
	if err != nil {
		c.logf("asset copy: %v", err)
		return rawURL, false
	}
	cp, err := c.assets.Copy(ctx, ref)
	if err != nil {
		c.logf("asset copy: %v", err)
		return rawURL, false
	}
	return cp.URL, true
}

// ToggleHighlight adds the product to the highlight set, or removes it when
// already present. The whole set is persisted on every toggle; a concurrent
// toggle is retried from a fresh read.
func (c *Coordinator) ToggleHighlight(ctx context.Context, sess Session, productID string) (*models.HighlightSet, error) {
	if !sess.Admin {
		return nil, ErrForbidden
	}

	for attempt := 0; attempt < toggleRetries; attempt++ {
		set, err := c.catalog.HighlightSet(ctx)
		if err != nil {
			return nil, err
		}

		if !set.Remove(productID) {
			if len(set.ProductIDs) >= HighlightCapacity {
				return nil, ErrHighlightCapacity
			}
			set.ProductIDs = append(set.ProductIDs, productID)
		}

		err = c.catalog.SaveHighlightSetChecked(ctx, set)
		if err == nil {
			return set, nil
		}
		if !errors.Is(err, catalog.ErrVersionConflict) {
			return nil, err
		}
	}
	return nil, catalog.ErrVersionConflict
}

// SlideForm carries the editable carousel slide text fields.
type SlideForm struct {
	Title    string
	Subtitle string
	CTAText  string
	CTALink  string
}

// UpdateSlide overwrites a slide's text fields.
func (c *Coordinator) UpdateSlide(ctx context.Context, sess Session, id uuid.UUID, form SlideForm) (*models.CarouselSlide, error) {
	if !sess.Admin {
		return nil, ErrForbidden
	}

	slide, err := c.catalog.CarouselSlide(ctx, id)
	if err != nil {
		return nil, err
	}

	slide.Title = form.Title
	slide.Subtitle = form.Subtitle
	slide.CTAText = form.CTAText
	slide.CTALink = form.CTALink

	if err := c.catalog.SaveCarouselSlide(ctx, slide); err != nil {
		return nil, err
	}
	return slide, nil
}

// SetSlideImage uploads a new slide image, points the slide at it and then
// deletes the previous asset best-effort. Same ordering as a product image
// update: write, repoint, only then release.
func (c *Coordinator) SetSlideImage(ctx context.Context, sess Session, id uuid.UUID, upload Upload) (*models.CarouselSlide, error) {
	if !sess.Admin {
		return nil, ErrForbidden
	}

	slide, err := c.catalog.CarouselSlide(ctx, id)
	if err != nil {
		return nil, err
	}

	ref, err := c.assets.Store(ctx, upload.Data, assets.FolderCarousel, upload.Filename)
	if err != nil {
		return nil, &UploadError{Field: "image", Err: err}
	}

	old := slide.Image
	slide.Image = ref.URL
	if err := c.catalog.SaveCarouselSlide(ctx, slide); err != nil {
		return nil, err
	}

	if old != "" {
		c.deleteByURL(ctx, old)
	}
	return slide, nil
}

// DeleteSlide removes a slide and its image asset. Same ordering and
// tolerance as a product delete: asset cleanup first, best-effort, then the
// record.
func (c *Coordinator) DeleteSlide(ctx context.Context, sess Session, id uuid.UUID) error {
	if !sess.Admin {
		return ErrForbidden
	}

	slide, err := c.catalog.CarouselSlide(ctx, id)
	if err != nil {
		return err
	}
	if slide.Image != "" {
		c.deleteByURL(ctx, slide.Image)
	}
	return c.catalog.DeleteCarouselSlide(ctx, id)
}

// deleteByURL releases the asset behind a public URL. Failures, including
// URLs that do not parse back to a storage path, are logged and swallowed:
// freeing storage never blocks a record operation.
func (c *Coordinator) deleteByURL(ctx context.Context, rawURL string) {
	ref, err := c.assets.RefFromURL(rawURL)
	if err != nil {
		c.logf("asset cleanup: %v", err)
		return
	}
	if err := c.assets.Delete(ctx, ref); err != nil {
		c.logf("asset cleanup: %v", err)
	}
}
