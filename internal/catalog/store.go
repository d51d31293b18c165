package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/boutique/internal/models"
)

// OptionVocabulary names one of the admin-managed form vocabularies.
type OptionVocabulary string

const (
	OptionSizes           OptionVocabulary = "sizes"
	OptionStores          OptionVocabulary = "stores"
	OptionClassifications OptionVocabulary = "classifications"
	OptionGenders         OptionVocabulary = "genders"
)

// Store is the document store for products, the highlight singleton,
// carousel slides and option vocabularies. Every call runs under a bounded
// timeout.
type Store struct {
	db      *gorm.DB
	timeout time.Duration
}

// NewStore constructs a Store. timeout bounds each backend call.
func NewStore(db *gorm.DB, timeout time.Duration) *Store {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Store{db: db, timeout: timeout}
}

func (s *Store) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

func wrap(op string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return &StoreError{Op: op, Err: err}
}

// CreateProduct persists a new product; the id is assigned on create.
func (s *Store) CreateProduct(ctx context.Context, p *models.Product) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	if err := s.db.WithContext(ctx).Create(p).Error; err != nil {
		return wrap("create product", err)
	}
	return nil
}

// Products returns the full catalog in stored order.
func (s *Store) Products(ctx context.Context) ([]models.Product, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	var products []models.Product
	if err := s.db.WithContext(ctx).Order("created_at asc").Find(&products).Error; err != nil {
		return nil, wrap("list products", err)
	}
	return products, nil
}

// Product loads a single product by id.
func (s *Store) Product(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	var product models.Product
	if err := s.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, wrap("get product", err)
	}
	return &product, nil
}

// UpdateProduct overwrites an existing product record.
func (s *Store) UpdateProduct(ctx context.Context, p *models.Product) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	var existing models.Product
	if err := s.db.WithContext(ctx).First(&existing, "id = ?", p.ID).Error; err != nil {
		return wrap("update product", err)
	}

	p.CreatedAt = existing.CreatedAt
	if err := s.db.WithContext(ctx).Save(p).Error; err != nil {
		return wrap("update product", err)
	}
	return nil
}

// DeleteProduct removes a product record by id.
func (s *Store) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	res := s.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", id)
	if res.Error != nil {
		return wrap("delete product", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// HighlightSet loads the singleton highlight document. A missing document
// reads as an empty set.
func (s *Store) HighlightSet(ctx context.Context) (*models.HighlightSet, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	var set models.HighlightSet
	err := s.db.WithContext(ctx).First(&set, "id = ?", models.HighlightSetID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.HighlightSet{ID: models.HighlightSetID}, nil
	}
	if err != nil {
		return nil, wrap("get highlight set", err)
	}
	return &set, nil
}

// SaveHighlightSet persists the whole set, last writer wins. The stored
// version is bumped on every save.
func (s *Store) SaveHighlightSet(ctx context.Context, set *models.HighlightSet) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	res := s.db.WithContext(ctx).Model(&models.HighlightSet{}).
		Where("id = ?", set.ID).
		Updates(map[string]interface{}{
			"product_ids": set.ProductIDs,
			"version":     gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return wrap("save highlight set", res.Error)
	}
	if res.RowsAffected == 0 {
		created := models.HighlightSet{ID: set.ID, ProductIDs: set.ProductIDs, Version: 1}
		if err := s.db.WithContext(ctx).Create(&created).Error; err != nil {
			return wrap("save highlight set", err)
		}
		set.Version = 1
		return nil
	}
	set.Version++
	return nil
}

// SaveHighlightSetChecked persists the set only when the stored version
// still equals set.Version, guarding against a concurrent toggle.
func (s *Store) SaveHighlightSetChecked(ctx context.Context, set *models.HighlightSet) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	if set.Version == 0 {
		created := models.HighlightSet{ID: set.ID, ProductIDs: set.ProductIDs, Version: 1}
		if err := s.db.WithContext(ctx).Create(&created).Error; err != nil {
			return ErrVersionConflict
		}
		set.Version = 1
		return nil
	}

	res := s.db.WithContext(ctx).Model(&models.HighlightSet{}).
		Where("id = ? AND version = ?", set.ID, set.Version).
		Updates(map[string]interface{}{
			"product_ids": set.ProductIDs,
			"version":     set.Version + 1,
		})
	if res.Error != nil {
		return wrap("save highlight set", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrVersionConflict
	}
	set.Version++
	return nil
}

// CarouselSlides returns all slides in stored order.
func (s *Store) CarouselSlides(ctx context.Context) ([]models.CarouselSlide, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	var slides []models.CarouselSlide
	if err := s.db.WithContext(ctx).Order("created_at asc").Find(&slides).Error; err != nil {
		return nil, wrap("list carousel slides", err)
	}
	return slides, nil
}

// CarouselSlide loads a single slide by id.
func (s *Store) CarouselSlide(ctx context.Context, id uuid.UUID) (*models.CarouselSlide, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	var slide models.CarouselSlide
	if err := s.db.WithContext(ctx).First(&slide, "id = ?", id).Error; err != nil {
		return nil, wrap("get carousel slide", err)
	}
	return &slide, nil
}

// SaveCarouselSlide creates the slide when it has no id yet, otherwise
// overwrites it.
func (s *Store) SaveCarouselSlide(ctx context.Context, slide *models.CarouselSlide) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	if err := s.db.WithContext(ctx).Save(slide).Error; err != nil {
		return wrap("save carousel slide", err)
	}
	return nil
}

// DeleteCarouselSlide removes a slide record by id.
func (s *Store) DeleteCarouselSlide(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	res := s.db.WithContext(ctx).Delete(&models.CarouselSlide{}, "id = ?", id)
	if res.Error != nil {
		return wrap("delete carousel slide", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Options returns the names of one vocabulary in stored order.
func (s *Store) Options(ctx context.Context, v OptionVocabulary) ([]string, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	var model interface{}
	switch v {
	case OptionSizes:
		model = &models.SizeOption{}
	case OptionStores:
		model = &models.StoreOption{}
	case OptionClassifications:
		model = &models.ClassificationOption{}
	case OptionGenders:
		model = &models.GenderOption{}
	default:
		return nil, &StoreError{Op: "list options", Err: errors.New("unknown vocabulary " + string(v))}
	}

	var names []string
	if err := s.db.WithContext(ctx).Model(model).Order("created_at asc").
		Pluck("name", &names).Error; err != nil {
		return nil, wrap("list options", err)
	}
	return names, nil
}
