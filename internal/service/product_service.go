package service

import (
	"context"
	"errors"
	"log/slog"
	"mime/multipart"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/prometheus/client_golang/prometheus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"hostel-catalog/internal/apperrors"
	"hostel-catalog/internal/cache"
	"hostel-catalog/internal/events"
	"hostel-catalog/internal/metrics"
	"hostel-catalog/internal/models"
	"hostel-catalog/internal/repository"
	"hostel-catalog/internal/storage"
)

//go:generate mockgen -source=product_service.go -destination=mocks/mock_stores.go -package=mocks

type ProductStore interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	FindMany(ctx context.Context, filter models.ProductFilter) ([]models.Product, error)
	CountAll(ctx context.Context) (int64, error)
	Insert(ctx context.Context, product *models.Product) error
	ReplaceByID(ctx context.Context, id primitive.ObjectID, product *models.Product) error
	DeleteByID(ctx context.Context, id primitive.ObjectID) error
}

type CategoryStore interface {
	ExistsByID(ctx context.Context, id primitive.ObjectID) (bool, error)
}

type Publisher interface {
	Publish(ctx context.Context, event events.ProductEvent) error
}

type ImageStore interface {
	Validate(file *multipart.FileHeader) (string, error)
	Save(file *multipart.FileHeader, ext string) (string, error)
	Remove(name string) error
	URL(scheme, host, name string) string
}

// ImageUpload es la foto adjunta a un alta junto con el origen de la petición,
// necesario para construir la URL pública.
type ImageUpload struct {
	File   *multipart.FileHeader
	Scheme string
	Host   string
}

type Deps struct {
	Products   ProductStore
	Categories CategoryStore
	Images     ImageStore
	Cache      cache.Cache
	CacheTTL   time.Duration
	Publisher  Publisher
	Counters   metrics.ProductCounters
	Logger     *slog.Logger
}

type ProductService struct {
	products   ProductStore
	categories CategoryStore
	images     ImageStore
	cache      cache.Cache
	cacheTTL   time.Duration
	publisher  Publisher
	counters   metrics.ProductCounters
	logger     *slog.Logger
	validate   *validator.Validate
	sanitizer  *bluemonday.Policy
	now        func() time.Time

	// generation cambia en cada invalidación; protege contra lecturas lentas
	// que guardarían en caché un valor anterior a la escritura.
	mu         sync.RWMutex
	generation uint64
}

func New(deps Deps) *ProductService {
	s := &ProductService{
		products:   deps.Products,
		categories: deps.Categories,
		images:     deps.Images,
		cache:      deps.Cache,
		cacheTTL:   deps.CacheTTL,
		publisher:  deps.Publisher,
		counters:   deps.Counters,
		logger:     deps.Logger,
		validate:   validator.New(),
		sanitizer:  bluemonday.UGCPolicy(),
		now:        time.Now,
	}
	// mismas reglas que el binding de gin
	s.validate.SetTagName("binding")

	if s.cache == nil {
		s.cache = cache.Nop{}
	}
	if s.publisher == nil {
		s.publisher = events.NopPublisher{}
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.counters.Created == nil || s.counters.Updated == nil || s.counters.Deleted == nil {
		s.counters = metrics.NewProductCounters(prometheus.NewRegistry())
	}
	return s
}

// GetProduct obtiene un producto por ID con su categoría (con caché)
func (s *ProductService) GetProduct(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	key := cache.ProductKey(id.Hex())

	var cached models.Product
	if s.cacheGet(ctx, key, &cached) {
		return &cached, nil
	}

	gen := s.cacheGeneration()
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, apperrors.NotFound("product not found")
		}
		return nil, apperrors.Storage("failed to get product", err)
	}

	s.cacheSet(ctx, key, product, gen)
	return product, nil
}

// ListProducts lista todos los productos o los de las categorías dadas (con caché)
func (s *ProductService) ListProducts(ctx context.Context, categoryIDs []primitive.ObjectID) ([]models.Product, error) {
	hexIDs := make([]string, 0, len(categoryIDs))
	for _, id := range categoryIDs {
		hexIDs = append(hexIDs, id.Hex())
	}
	key := cache.ListKey(hexIDs)

	var cached []models.Product
	if s.cacheGet(ctx, key, &cached) && cached != nil {
		return cached, nil
	}

	gen := s.cacheGeneration()
	products, err := s.products.FindMany(ctx, models.ProductFilter{CategoryIDs: categoryIDs})
	if err != nil {
		return nil, apperrors.Storage("failed to list products", err)
	}
	if products == nil {
		products = []models.Product{}
	}

	s.cacheSet(ctx, key, products, gen)
	return products, nil
}

// CountProducts cuenta los productos; cero es un resultado válido
func (s *ProductService) CountProducts(ctx context.Context) (int64, error) {
	key := cache.CountKey()

	var cached int64
	if s.cacheGet(ctx, key, &cached) {
		return cached, nil
	}

	gen := s.cacheGeneration()
	total, err := s.products.CountAll(ctx)
	if err != nil {
		return 0, apperrors.Storage("failed to count products", err)
	}

	s.cacheSet(ctx, key, total, gen)
	return total, nil
}

// FeaturedProducts devuelve hasta count productos destacados.
// Con count 0 no se consulta: en Mongo un límite 0 significa sin límite.
func (s *ProductService) FeaturedProducts(ctx context.Context, count int64) ([]models.Product, error) {
	if count < 0 {
		return nil, apperrors.Validation("count must be a non-negative integer")
	}
	if count == 0 {
		return []models.Product{}, nil
	}

	key := cache.FeaturedKey(count)

	var cached []models.Product
	if s.cacheGet(ctx, key, &cached) && cached != nil {
		return cached, nil
	}

	gen := s.cacheGeneration()
	products, err := s.products.FindMany(ctx, models.ProductFilter{FeaturedOnly: true, Limit: count})
	if err != nil {
		return nil, apperrors.Storage("failed to get featured products", err)
	}
	if products == nil {
		products = []models.Product{}
	}

	s.cacheSet(ctx, key, products, gen)
	return products, nil
}

// CreateProduct valida, guarda la imagen si viene y crea el producto.
// Si el insert falla se borra la imagen ya escrita.
func (s *ProductService) CreateProduct(ctx context.Context, input models.ProductInput, upload *ImageUpload) (*models.Product, error) {
	if err := s.validateInput(input); err != nil {
		return nil, err
	}

	var ext string
	if upload != nil && upload.File != nil {
		var err error
		if ext, err = s.images.Validate(upload.File); err != nil {
			return nil, imageError(err)
		}
	}

	categoryID, err := s.resolveCategory(ctx, input.Category, false)
	if err != nil {
		return nil, err
	}

	product := s.buildProduct(input, categoryID)

	var fileName string
	if ext != "" {
		if fileName, err = s.images.Save(upload.File, ext); err != nil {
			return nil, apperrors.Storage("failed to save image", err)
		}
		product.Image = s.images.URL(upload.Scheme, upload.Host, fileName)
	}

	if err := s.products.Insert(ctx, product); err != nil {
		if fileName != "" {
			if rmErr := s.images.Remove(fileName); rmErr != nil {
				s.logger.Error("remove orphan image failed", "file", fileName, "error", rmErr)
			}
		}
		return nil, apperrors.Storage("failed to create product", err)
	}

	s.invalidate(ctx, product.ID)
	s.publish(ctx, events.EventCreated, product.ID, product.Name)
	s.counters.Created.Inc()

	created, err := s.products.FindByID(ctx, product.ID)
	if err != nil {
		s.logger.Warn("reload created product failed", "product_id", product.ID.Hex(), "error", err)
		return product, nil
	}
	return created, nil
}

// UpdateProduct reemplaza todos los campos editables; la categoría es obligatoria.
func (s *ProductService) UpdateProduct(ctx context.Context, id primitive.ObjectID, input models.ProductInput) (*models.Product, error) {
	if err := s.validateInput(input); err != nil {
		return nil, err
	}

	categoryID, err := s.resolveCategory(ctx, input.Category, true)
	if err != nil {
		return nil, err
	}

	product := s.buildProduct(input, categoryID)
	if err := s.products.ReplaceByID(ctx, id, product); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, apperrors.NotFound("product not found")
		}
		return nil, apperrors.Storage("failed to update product", err)
	}

	s.invalidate(ctx, id)
	s.publish(ctx, events.EventUpdated, id, product.Name)
	s.counters.Updated.Inc()

	updated, err := s.products.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, apperrors.NotFound("product not found")
		}
		return nil, apperrors.Storage("failed to get product", err)
	}
	return updated, nil
}

func (s *ProductService) DeleteProduct(ctx context.Context, id primitive.ObjectID) error {
	if err := s.products.DeleteByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return apperrors.NotFound("product not found")
		}
		return apperrors.Storage("failed to delete product", err)
	}

	s.invalidate(ctx, id)
	s.publish(ctx, events.EventDeleted, id, "")
	s.counters.Deleted.Inc()
	return nil
}

func (s *ProductService) validateInput(input models.ProductInput) error {
	if err := s.validate.Struct(input); err != nil {
		return apperrors.FromValidation(err)
	}

	var details []string
	if strings.TrimSpace(input.Name) == "" {
		details = append(details, "name is required")
	}
	if strings.TrimSpace(input.Description) == "" {
		details = append(details, "description is required")
	}
	if len(details) > 0 {
		return apperrors.Validation("validation failed").WithDetails(details...)
	}
	return nil
}

// resolveCategory valida formato y existencia de la categoría.
// Vacía solo se acepta si no es obligatoria.
func (s *ProductService) resolveCategory(ctx context.Context, raw string, required bool) (*primitive.ObjectID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		if required {
			return nil, apperrors.Validation("invalid category").WithDetails("category is required")
		}
		return nil, nil
	}

	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return nil, apperrors.Validation("invalid category")
	}

	exists, err := s.categories.ExistsByID(ctx, id)
	if err != nil {
		return nil, apperrors.Storage("failed to check category", err)
	}
	if !exists {
		return nil, apperrors.Validation("invalid category")
	}
	return &id, nil
}

func (s *ProductService) buildProduct(input models.ProductInput, categoryID *primitive.ObjectID) *models.Product {
	images := input.Images
	if images == nil {
		images = []string{}
	}
	return &models.Product{
		Name:            strings.TrimSpace(input.Name),
		Description:     strings.TrimSpace(input.Description),
		RichDescription: s.sanitizer.Sanitize(input.RichDescription),
		Image:           input.Image,
		Images:          images,
		Brand:           input.Brand,
		Price:           input.Price,
		CategoryID:      categoryID,
		CountInStock:    input.CountInStock,
		Rating:          input.Rating,
		NumReviews:      input.NumReviews,
		IsFeatured:      input.IsFeatured,
	}
}

func imageError(err error) error {
	switch {
	case errors.Is(err, storage.ErrInvalidFileType):
		return apperrors.Validation("invalid file type")
	case errors.Is(err, storage.ErrFileTooLarge):
		return apperrors.Validation("file too large")
	default:
		return apperrors.Storage("failed to read image", err)
	}
}

func (s *ProductService) cacheGet(ctx context.Context, key string, dst any) bool {
	found, err := s.cache.Get(ctx, key, dst)
	if err != nil {
		s.logger.Warn("cache get failed", "key", key, "error", err)
		return false
	}
	return found
}

func (s *ProductService) cacheGeneration() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}

// cacheSet descarta el valor si hubo una invalidación desde que se leyó gen.
func (s *ProductService) cacheSet(ctx context.Context, key string, value any, gen uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.generation != gen {
		return
	}
	if err := s.cache.Set(ctx, key, value, s.cacheTTL); err != nil {
		s.logger.Warn("cache set failed", "key", key, "error", err)
	}
}

// Invalidar el producto y todos los listados, destacados y conteo
func (s *ProductService) invalidate(ctx context.Context, id primitive.ObjectID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++

	if err := s.cache.Delete(ctx, cache.ProductKey(id.Hex())); err != nil {
		s.logger.Warn("cache delete failed", "product_id", id.Hex(), "error", err)
	}
	if err := s.cache.DeleteByPrefix(ctx, cache.ProductsPrefix); err != nil {
		s.logger.Warn("cache prefix delete failed", "prefix", cache.ProductsPrefix, "error", err)
	}
}

func (s *ProductService) publish(ctx context.Context, eventType string, id primitive.ObjectID, name string) {
	if err := s.publisher.Publish(ctx, events.ProductEvent{
		EventType: eventType,
		ProductID: id.Hex(),
		Name:      name,
		Timestamp: s.now().UTC(),
	}); err != nil {
		s.logger.Error("publish "+eventType+" event failed",
			"product_id", id.Hex(),
			"error", err,
		)
	}
}
