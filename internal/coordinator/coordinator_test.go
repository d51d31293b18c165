package coordinator

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/boutique/internal/assets"
	"github.com/example/boutique/internal/catalog"
	"github.com/example/boutique/internal/models"
)

// fakeCatalog is an in-memory CatalogStore.
type fakeCatalog struct {
	mu       sync.Mutex
	products map[uuid.UUID]models.Product
	slides   map[uuid.UUID]models.CarouselSlide
	set      models.HighlightSet

	createErr        error
	updateErr        error
	highlightReadErr error
	highlightSaveErr error
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		products: make(map[uuid.UUID]models.Product),
		slides:   make(map[uuid.UUID]models.CarouselSlide),
		set:      models.HighlightSet{ID: models.HighlightSetID},
	}
}

func (f *fakeCatalog) CreateProduct(_ context.Context, p *models.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	f.products[p.ID] = *p
	return nil
}

func (f *fakeCatalog) Product(_ context.Context, id uuid.UUID) (*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[id]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	cp := p
	return &cp, nil
}

func (f *fakeCatalog) UpdateProduct(_ context.Context, p *models.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	if _, ok := f.products[p.ID]; !ok {
		return catalog.ErrNotFound
	}
	f.products[p.ID] = *p
	return nil
}

func (f *fakeCatalog) DeleteProduct(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.products[id]; !ok {
		return catalog.ErrNotFound
	}
	delete(f.products, id)
	return nil
}

func (f *fakeCatalog) HighlightSet(_ context.Context) (*models.HighlightSet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.highlightReadErr != nil {
		return nil, f.highlightReadErr
	}
	cp := f.set
	cp.ProductIDs = append([]string(nil), f.set.ProductIDs...)
	return &cp, nil
}

func (f *fakeCatalog) SaveHighlightSet(_ context.Context, set *models.HighlightSet) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.highlightSaveErr != nil {
		return f.highlightSaveErr
	}
	f.set.ProductIDs = append([]string(nil), set.ProductIDs...)
	f.set.Version++
	set.Version = f.set.Version
	return nil
}

func (f *fakeCatalog) SaveHighlightSetChecked(_ context.Context, set *models.HighlightSet) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.highlightSaveErr != nil {
		return f.highlightSaveErr
	}
	if set.Version != f.set.Version {
		return catalog.ErrVersionConflict
	}
	f.set.ProductIDs = append([]string(nil), set.ProductIDs...)
	f.set.Version++
	set.Version = f.set.Version
	return nil
}

func (f *fakeCatalog) CarouselSlide(_ context.Context, id uuid.UUID) (*models.CarouselSlide, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.slides[id]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	cp := s
	return &cp, nil
}

func (f *fakeCatalog) SaveCarouselSlide(_ context.Context, slide *models.CarouselSlide) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if slide.ID == uuid.Nil {
		slide.ID = uuid.New()
	}
	f.slides[slide.ID] = *slide
	return nil
}

func (f *fakeCatalog) DeleteCarouselSlide(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.slides[id]; !ok {
		return catalog.ErrNotFound
	}
	delete(f.slides, id)
	return nil
}

// flakyAssets wraps a real store with injectable failures.
type flakyAssets struct {
	inner      assets.Store
	failStore  bool
	failCopy   bool
	failDelete bool
}

func (f *flakyAssets) Store(ctx context.Context, data []byte, folder, filename string) (assets.Ref, error) {
	if f.failStore {
		return assets.Ref{}, &assets.WriteError{Path: folder, Err: errors.New("quota exceeded")}
	}
	return f.inner.Store(ctx, data, folder, filename)
}

func (f *flakyAssets) Copy(ctx context.Context, ref assets.Ref) (assets.Ref, error) {
	if f.failCopy {
		return assets.Ref{}, &assets.ReadError{Path: ref.Path, Err: errors.New("source gone")}
	}
	return f.inner.Copy(ctx, ref)
}

func (f *flakyAssets) Delete(ctx context.Context, ref assets.Ref) error {
	if f.failDelete {
		return &assets.DeleteError{Path: ref.Path, Err: errors.New("backend down")}
	}
	return f.inner.Delete(ctx, ref)
}

func (f *flakyAssets) RefFromURL(publicURL string) (assets.Ref, error) {
	return f.inner.RefFromURL(publicURL)
}

type env struct {
	coord   *Coordinator
	catalog *fakeCatalog
	disk    *assets.DiskStore
	flaky   *flakyAssets
}

func newEnv(t *testing.T) *env {
	t.Helper()
	disk := assets.NewDiskStore(afero.NewMemMapFs(), "https://shop.example.com")
	flaky := &flakyAssets{inner: disk}
	cat := newFakeCatalog()

	coord := New(cat, flaky)
	coord.logf = t.Logf
	ts := time.UnixMilli(1700000000000)
	coord.now = func() time.Time {
		ts = ts.Add(time.Millisecond)
		return ts
	}
	return &env{coord: coord, catalog: cat, disk: disk, flaky: flaky}
}

var admin = Session{Subject: "admin@shop", Admin: true}

func watchForm() ProductForm {
	return ProductForm{
		Name:           "Watch",
		Code:           "W1",
		Description:    "d",
		Price:          1000,
		Quantity:       2,
		Store:          "Acme",
		Classification: "Luxury",
	}
}

func TestCreateProductDerivedFields(t *testing.T) {
	e := newEnv(t)

	p, err := e.coord.CreateProduct(context.Background(), admin, watchForm(), nil, nil)
	require.NoError(t, err)

	assert.Equal(t, "luxuryW1", p.LabelCode)
	assert.Equal(t, float64(2000), p.InventoryValue)
	assert.Equal(t, "", p.Image)
	assert.NotEqual(t, uuid.Nil, p.ID)
}

func TestCreateProductValidationListsAllFields(t *testing.T) {
	e := newEnv(t)

	_, err := e.coord.CreateProduct(context.Background(), admin, ProductForm{Name: "Watch"}, nil, nil)

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, []string{"code", "description", "price", "quantity", "store", "classification"}, vErr.Fields)
	assert.Empty(t, e.catalog.products)
}

func TestCreateProductRequiresAdmin(t *testing.T) {
	e := newEnv(t)

	_, err := e.coord.CreateProduct(context.Background(), Session{}, watchForm(), nil, nil)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestCreateProductWithImages(t *testing.T) {
	e := newEnv(t)

	primary := &Upload{Filename: "front.jpg", Data: []byte("a")}
	extras := []Upload{
		{Filename: "side.jpg", Data: []byte("b")},
		{Filename: "back.jpg", Data: []byte("c")},
	}

	p, err := e.coord.CreateProduct(context.Background(), admin, watchForm(), primary, extras)
	require.NoError(t, err)

	assert.Contains(t, p.Image, "/media/products/")
	require.Len(t, p.ExtraImages, 2)
	assert.Contains(t, p.ExtraImages[0], "/media/products/extra/")
	assert.Contains(t, p.ExtraImages[0], "side.jpg")
	assert.Contains(t, p.ExtraImages[1], "back.jpg")

	ref, err := e.disk.RefFromURL(p.Image)
	require.NoError(t, err)
	ok, err := e.disk.Exists(ref.Path)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCreateProductTooManyExtras(t *testing.T) {
	e := newEnv(t)

	extras := make([]Upload, 4)
	for i := range extras {
		extras[i] = Upload{Filename: "x.jpg", Data: []byte("x")}
	}

	_, err := e.coord.CreateProduct(context.Background(), admin, watchForm(), nil, extras)
	assert.ErrorIs(t, err, ErrTooManyExtraImages)
}

func TestCreateProductUploadFailureWritesNoRecord(t *testing.T) {
	e := newEnv(t)
	e.flaky.failStore = true

	_, err := e.coord.CreateProduct(context.Background(), admin, watchForm(),
		&Upload{Filename: "front.jpg", Data: []byte("a")}, nil)

	var upErr *UploadError
	require.ErrorAs(t, err, &upErr)
	assert.Empty(t, e.catalog.products)
}

func TestUpdateProductReplacesPrimaryImage(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	p, err := e.coord.CreateProduct(ctx, admin, watchForm(),
		&Upload{Filename: "old.jpg", Data: []byte("a")}, nil)
	require.NoError(t, err)
	oldURL := p.Image
	oldRef, err := e.disk.RefFromURL(oldURL)
	require.NoError(t, err)

	form := watchForm()
	form.Price = 1200
	updated, err := e.coord.UpdateProduct(ctx, admin, p.ID, form,
		&Upload{Filename: "new.jpg", Data: []byte("b")}, nil)
	require.NoError(t, err)

	assert.NotEqual(t, oldURL, updated.Image)
	assert.Equal(t, float64(2400), updated.InventoryValue)

	// The stale asset is gone, the new one is served.
	ok, err := e.disk.Exists(oldRef.Path)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUpdateProductToleratesStaleDeleteFailure(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	p, err := e.coord.CreateProduct(ctx, admin, watchForm(),
		&Upload{Filename: "old.jpg", Data: []byte("a")}, nil)
	require.NoError(t, err)

	e.flaky.failDelete = true
	updated, err := e.coord.UpdateProduct(ctx, admin, p.ID, watchForm(),
		&Upload{Filename: "new.jpg", Data: []byte("b")}, nil)
	require.NoError(t, err)
	assert.Contains(t, updated.Image, "new.jpg")
}

func TestUpdateProductNotFound(t *testing.T) {
	e := newEnv(t)

	_, err := e.coord.UpdateProduct(context.Background(), admin, uuid.New(), watchForm(), nil, nil)
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestDeleteProductCascades(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	p, err := e.coord.CreateProduct(ctx, admin, watchForm(),
		&Upload{Filename: "front.jpg", Data: []byte("a")},
		[]Upload{{Filename: "side.jpg", Data: []byte("b")}})
	require.NoError(t, err)

	_, err = e.coord.ToggleHighlight(ctx, admin, p.ID.String())
	require.NoError(t, err)

	primaryRef, err := e.disk.RefFromURL(p.Image)
	require.NoError(t, err)
	extraRef, err := e.disk.RefFromURL(p.ExtraImages[0])
	require.NoError(t, err)

	require.NoError(t, e.coord.DeleteProduct(ctx, admin, p.ID))

	_, err = e.catalog.Product(ctx, p.ID)
	assert.ErrorIs(t, err, catalog.ErrNotFound)
	assert.NotContains(t, e.catalog.set.ProductIDs, p.ID.String())

	ok, _ := e.disk.Exists(primaryRef.Path)
	assert.False(t, ok)
	ok, _ = e.disk.Exists(extraRef.Path)
	assert.False(t, ok)
}

func TestDeleteProductBestEffortCleanup(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	p, err := e.coord.CreateProduct(ctx, admin, watchForm(),
		&Upload{Filename: "front.jpg", Data: []byte("a")}, nil)
	require.NoError(t, err)

	// Asset backend down and highlight store unreadable: the record still goes.
	e.flaky.failDelete = true
	e.catalog.highlightReadErr = &catalog.StoreError{Op: "get highlight set", Err: errors.New("backend down")}

	require.NoError(t, e.coord.DeleteProduct(ctx, admin, p.ID))
	assert.Empty(t, e.catalog.products)
}

func TestDeleteProductToleratesForeignImageURL(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	p, err := e.coord.CreateProduct(ctx, admin, watchForm(), nil, nil)
	require.NoError(t, err)

	// Simulate a record pointing at an asset this store never issued.
	stored := e.catalog.products[p.ID]
	stored.Image = "https://cdn.other.example/files/front.jpg"
	e.catalog.products[p.ID] = stored

	require.NoError(t, e.coord.DeleteProduct(ctx, admin, p.ID))
	assert.Empty(t, e.catalog.products)
}

func TestDuplicateProduct(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	p, err := e.coord.CreateProduct(ctx, admin, watchForm(),
		&Upload{Filename: "front.jpg", Data: []byte("a")},
		[]Upload{{Filename: "side.jpg", Data: []byte("b")}})
	require.NoError(t, err)

	res, err := e.coord.DuplicateProduct(ctx, admin, p.ID)
	require.NoError(t, err)
	dup := res.Product

	assert.NotEqual(t, p.ID, dup.ID)
	assert.NotEqual(t, p.Code, dup.Code)
	assert.NotEqual(t, p.LabelCode, dup.LabelCode)
	assert.True(t, strings.HasPrefix(dup.Code, "W1_copy_"))
	assert.True(t, strings.HasPrefix(dup.LabelCode, "luxuryW1_copy_"))

	assert.Zero(t, res.SharedAssets)
	assert.NotEqual(t, p.Image, dup.Image)
	require.Len(t, dup.ExtraImages, 1)
	assert.NotEqual(t, p.ExtraImages[0], dup.ExtraImages[0])

	// Original assets untouched.
	ref, err := e.disk.RefFromURL(p.Image)
	require.NoError(t, err)
	ok, _ := e.disk.Exists(ref.Path)
	assert.True(t, ok)
}

func TestDuplicateProductFallsBackOnCopyFailure(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	p, err := e.coord.CreateProduct(ctx, admin, watchForm(),
		&Upload{Filename: "front.jpg", Data: []byte("a")}, nil)
	require.NoError(t, err)

	e.flaky.failCopy = true
	res, err := e.coord.DuplicateProduct(ctx, admin, p.ID)
	require.NoError(t, err)

	// The duplicate shares the asset with the original instead of losing it.
	assert.Equal(t, p.Image, res.Product.Image)
	assert.Equal(t, 1, res.SharedAssets)
	assert.NotEmpty(t, res.Product.Image)
}

func TestToggleHighlight(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	set, err := e.coord.ToggleHighlight(ctx, admin, "p1")
	require.NoError(t, err)
	assert.Equal(t, []string{"p1"}, []string(set.ProductIDs))

	set, err = e.coord.ToggleHighlight(ctx, admin, "p1")
	require.NoError(t, err)
	assert.Empty(t, set.ProductIDs)
}

func TestToggleHighlightCapacity(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	ids := []string{"p1", "p2", "p3", "p4", "p5", "p6"}
	for _, id := range ids {
		_, err := e.coord.ToggleHighlight(ctx, admin, id)
		require.NoError(t, err)
	}

	_, err := e.coord.ToggleHighlight(ctx, admin, "p7")
	assert.ErrorIs(t, err, ErrHighlightCapacity)
	assert.Equal(t, ids, []string(e.catalog.set.ProductIDs))

	// A present id still toggles off at capacity.
	set, err := e.coord.ToggleHighlight(ctx, admin, "p3")
	require.NoError(t, err)
	assert.Len(t, set.ProductIDs, 5)
}

func TestUpdateSlide(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	slide := models.CarouselSlide{Title: "old"}
	require.NoError(t, e.catalog.SaveCarouselSlide(ctx, &slide))

	updated, err := e.coord.UpdateSlide(ctx, admin, slide.ID, SlideForm{
		Title:   "Temporada",
		CTAText: "Ver más",
		CTALink: "/search",
	})
	require.NoError(t, err)
	assert.Equal(t, "Temporada", updated.Title)
	assert.Equal(t, "", updated.Subtitle)
}

func TestSetSlideImageReplacesOldAsset(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	slide := models.CarouselSlide{Title: "hero"}
	require.NoError(t, e.catalog.SaveCarouselSlide(ctx, &slide))

	first, err := e.coord.SetSlideImage(ctx, admin, slide.ID, Upload{Filename: "a.jpg", Data: []byte("a")})
	require.NoError(t, err)
	firstRef, err := e.disk.RefFromURL(first.Image)
	require.NoError(t, err)

	second, err := e.coord.SetSlideImage(ctx, admin, slide.ID, Upload{Filename: "b.jpg", Data: []byte("b")})
	require.NoError(t, err)

	assert.NotEqual(t, first.Image, second.Image)
	ok, _ := e.disk.Exists(firstRef.Path)
	assert.False(t, ok)
	assert.Contains(t, firstRef.Path, "carousel/")
}

func TestDeleteSlideReleasesAsset(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	slide := models.CarouselSlide{Title: "hero"}
	require.NoError(t, e.catalog.SaveCarouselSlide(ctx, &slide))

	withImage, err := e.coord.SetSlideImage(ctx, admin, slide.ID, Upload{Filename: "a.jpg", Data: []byte("a")})
	require.NoError(t, err)
	ref, err := e.disk.RefFromURL(withImage.Image)
	require.NoError(t, err)

	require.NoError(t, e.coord.DeleteSlide(ctx, admin, slide.ID))

	_, err = e.catalog.CarouselSlide(ctx, slide.ID)
	assert.ErrorIs(t, err, catalog.ErrNotFound)
	ok, _ := e.disk.Exists(ref.Path)
	assert.False(t, ok)
}
