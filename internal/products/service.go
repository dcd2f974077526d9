package products

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/homegoods-vn/homegoods-backend/pkg/config"
	"github.com/homegoods-vn/homegoods-backend/pkg/db/models"
	"github.com/homegoods-vn/homegoods-backend/pkg/enums"
	pkgerrors "github.com/homegoods-vn/homegoods-backend/pkg/errors"
	"github.com/homegoods-vn/homegoods-backend/pkg/logger"
	"github.com/homegoods-vn/homegoods-backend/pkg/pagination"
)

const listingCachePrefix = "products"

// Service defines the behavior needed by catalog controllers.
type Service interface {
	ListProducts(ctx context.Context, categorySlug string, params pagination.Params) ([]ProductDTO, pagination.Page, error)
	GetBySlug(ctx context.Context, slug string) (*ProductDTO, error)
	ListCategories(ctx context.Context) ([]CategoryDTO, error)
	CreateCategory(ctx context.Context, req CreateCategoryRequest) (*CategoryDTO, error)
	CreateProduct(ctx context.Context, req CreateProductRequest) (*ProductDTO, error)
	CreateVariant(ctx context.Context, productID uuid.UUID, req CreateVariantRequest) (*VariantDTO, error)
	UpdateVariant(ctx context.Context, variantID uuid.UUID, req UpdateVariantRequest) (*VariantDTO, error)
}

type listingCache interface {
	Key(parts ...string) string
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	InvalidatePrefix(ctx context.Context, prefix string) error
}

type catalogRepository interface {
	CreateCategory(ctx context.Context, category *models.Category) error
	CreateProduct(ctx context.Context, product *models.Product) error
	CreateVariant(ctx context.Context, variant *models.ProductVariant) error
	UpdateVariant(ctx context.Context, id uuid.UUID, updates map[string]any) error
	ReplaceVariantMedia(ctx context.Context, variantID uuid.UUID, media []models.VariantMedia) error
	ListActiveProducts(ctx context.Context, categorySlug string, limit, offset int) ([]models.Product, int64, error)
	FindBySlug(ctx context.Context, slug string) (*models.Product, error)
	FindVariantByID(ctx context.Context, id uuid.UUID) (*models.ProductVariant, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
}

type service struct {
	repo   catalogRepository
	cache  listingCache
	cfg    config.CacheConfig
	logger *logger.Logger
}

// ServiceParams bundles the dependencies required to build a catalog service.
type ServiceParams struct {
	Repo   catalogRepository
	Cache  listingCache
	Config config.CacheConfig
	Logger *logger.Logger
}

// NewService constructs the catalog service. Cache is optional; without it
// every read goes to the database.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("catalog repository is required")
	}
	return &service{
		repo:   params.Repo,
		cache:  params.Cache,
		cfg:    params.Config,
		logger: params.Logger,
	}, nil
}

type cachedListing struct {
	Items []ProductDTO    `json:"items"`
	Page  pagination.Page `json:"page"`
}

func (s *service) ListProducts(ctx context.Context, categorySlug string, params pagination.Params) ([]ProductDTO, pagination.Page, error) {
	params = params.Normalize()

	var key string
	if s.cache != nil {
		scope := categorySlug
		if scope == "" {
			scope = "all"
		}
		key = s.cache.Key(listingCachePrefix, scope, "p"+strconv.Itoa(params.Page), "l"+strconv.Itoa(params.Limit))

		var cached cachedListing
		hit, err := s.cache.Get(ctx, key, &cached)
		if err != nil && s.logger != nil {
			s.logger.Warn(ctx, "listing cache read failed: "+err.Error())
		}
		if hit {
			return cached.Items, cached.Page, nil
		}
	}

	list, total, err := s.repo.ListActiveProducts(ctx, categorySlug, params.Limit, params.Offset())
	if err != nil {
		return nil, pagination.Page{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list products")
	}

	dtos := make([]ProductDTO, 0, len(list))
	for i := range list {
		dtos = append(dtos, *productFromModel(&list[i]))
	}
	page := pagination.NewPage(params, total)

	if s.cache != nil && key != "" {
		if err := s.cache.Set(ctx, key, cachedListing{Items: dtos, Page: page}, s.cfg.ListingTTL); err != nil && s.logger != nil {
			s.logger.Warn(ctx, "listing cache write failed: "+err.Error())
		}
	}

	return dtos, page, nil
}

func (s *service) GetBySlug(ctx context.Context, slug string) (*ProductDTO, error) {
	product, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}
	return productFromModel(product), nil
}

func (s *service) ListCategories(ctx context.Context) ([]CategoryDTO, error) {
	list, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list categories")
	}
	dtos := make([]CategoryDTO, 0, len(list))
	for i := range list {
		dtos = append(dtos, *categoryFromModel(&list[i]))
	}
	return dtos, nil
}

func (s *service) CreateCategory(ctx context.Context, req CreateCategoryRequest) (*CategoryDTO, error) {
	category := &models.Category{Name: req.Name, Slug: req.Slug, IsActive: true}
	if err := s.repo.CreateCategory(ctx, category); err != nil {
		if pkgerrors.IsUniqueViolation(err) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "category slug already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create category")
	}
	s.invalidateListings(ctx)
	return categoryFromModel(category), nil
}

func (s *service) CreateProduct(ctx context.Context, req CreateProductRequest) (*ProductDTO, error) {
	product := &models.Product{
		CategoryID:  req.CategoryID,
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		IsActive:    true,
	}
	for _, v := range req.Variants {
		product.Variants = append(product.Variants, buildVariant(v))
	}

	if err := s.repo.CreateProduct(ctx, product); err != nil {
		if pkgerrors.IsUniqueViolation(err) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "product slug already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create product")
	}
	s.invalidateListings(ctx)
	return productFromModel(product), nil
}

func (s *service) CreateVariant(ctx context.Context, productID uuid.UUID, req CreateVariantRequest) (*VariantDTO, error) {
	variant := buildVariant(req)
	variant.ProductID = productID
	if err := s.repo.CreateVariant(ctx, &variant); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create variant")
	}
	s.invalidateListings(ctx)
	dto := variantFromModel(&variant)
	return &dto, nil
}

func (s *service) UpdateVariant(ctx context.Context, variantID uuid.UUID, req UpdateVariantRequest) (*VariantDTO, error) {
	if _, err := s.findVariant(ctx, variantID); err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if req.Notes != nil {
		clean, urls := ParseMediaTag(*req.Notes)
		updates["notes"] = clean
		if len(urls) > 0 {
			if err := s.repo.ReplaceVariantMedia(ctx, variantID, mediaFromURLs(urls)); err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "replace variant media")
			}
		}
	}

	if err := s.repo.UpdateVariant(ctx, variantID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update variant")
	}
	s.invalidateListings(ctx)

	variant, err := s.findVariant(ctx, variantID)
	if err != nil {
		return nil, err
	}
	dto := variantFromModel(variant)
	return &dto, nil
}

func (s *service) findVariant(ctx context.Context, id uuid.UUID) (*models.ProductVariant, error) {
	variant, err := s.repo.FindVariantByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "variant not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load variant")
	}
	return variant, nil
}

func (s *service) invalidateListings(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidatePrefix(ctx, listingCachePrefix); err != nil && s.logger != nil {
		s.logger.Warn(ctx, "listing cache invalidation failed: "+err.Error())
	}
}

// buildVariant merges explicit media with any legacy tag embedded in notes.
func buildVariant(req CreateVariantRequest) models.ProductVariant {
	clean, tagged := ParseMediaTag(req.Notes)
	urls := append(append([]string(nil), req.Media...), tagged...)

	return models.ProductVariant{
		Name:     req.Name,
		Price:    req.Price,
		Notes:    clean,
		IsActive: true,
		Media:    mediaFromURLs(urls),
	}
}

func mediaFromURLs(urls []string) []models.VariantMedia {
	media := make([]models.VariantMedia, 0, len(urls))
	for i, url := range urls {
		media = append(media, models.VariantMedia{
			URL:      url,
			Kind:     enums.MediaKindImage,
			Position: i,
		})
	}
	return media
}
