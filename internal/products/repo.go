package products

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/homegoods-vn/homegoods-backend/pkg/db/models"
)

// Repository exposes catalog persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a catalog repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateCategory inserts a category.
func (r *Repository) CreateCategory(ctx context.Context, category *models.Category) error {
	return r.db.WithContext(ctx).Create(category).Error
}

// CreateProduct inserts a product along with any attached variants and media.
func (r *Repository) CreateProduct(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

// CreateVariant inserts a variant with its media rows.
func (r *Repository) CreateVariant(ctx context.Context, variant *models.ProductVariant) error {
	return r.db.WithContext(ctx).Create(variant).Error
}

// UpdateVariant applies the provided column updates.
func (r *Repository) UpdateVariant(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.ProductVariant{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// ReplaceVariantMedia swaps the ordered media list for a variant.
func (r *Repository) ReplaceVariantMedia(ctx context.Context, variantID uuid.UUID, media []models.VariantMedia) error {
	tx := r.db.WithContext(ctx)
	if err := tx.Where("variant_id = ?", variantID).Delete(&models.VariantMedia{}).Error; err != nil {
		return err
	}
	if len(media) == 0 {
		return nil
	}
	for i := range media {
		media[i].VariantID = variantID
		media[i].Position = i
	}
	return tx.Create(&media).Error
}

// ListActiveProducts returns a page of active products with their active
// variants and media, newest first, plus the total count.
func (r *Repository) ListActiveProducts(ctx context.Context, categorySlug string, limit, offset int) ([]models.Product, int64, error) {
	base := r.db.WithContext(ctx).Model(&models.Product{}).Where("products.is_active = ?", true)
	if categorySlug != "" {
		base = base.Joins("JOIN categories ON categories.id = products.category_id").
			Where("categories.slug = ?", categorySlug)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var list []models.Product
	err := base.
		Preload("Variants", "is_active = ?", true).
		Preload("Variants.Media", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Order("products.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&list).Error
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// FindBySlug loads one active product with variants and media.
func (r *Repository) FindBySlug(ctx context.Context, slug string) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Variants", "is_active = ?", true).
		Preload("Variants.Media", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("slug = ? AND is_active = ?", slug, true).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// FindVariantByID loads a variant regardless of active flag.
func (r *Repository) FindVariantByID(ctx context.Context, id uuid.UUID) (*models.ProductVariant, error) {
	var variant models.ProductVariant
	err := r.db.WithContext(ctx).
		Preload("Media", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		First(&variant, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &variant, nil
}

// FindSellableVariant loads a variant only when both it and its product are
// active. Cart additions go through this lookup.
func (r *Repository) FindSellableVariant(ctx context.Context, id uuid.UUID) (*models.ProductVariant, error) {
	var variant models.ProductVariant
	err := r.db.WithContext(ctx).
		Joins("JOIN products ON products.id = product_variants.product_id").
		Where("product_variants.id = ? AND product_variants.is_active = ? AND products.is_active = ?", id, true, true).
		First(&variant).Error
	if err != nil {
		return nil, err
	}
	return &variant, nil
}

// ListCategories returns all active categories.
func (r *Repository) ListCategories(ctx context.Context) ([]models.Category, error) {
	var list []models.Category
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("name ASC").
		Find(&list).Error
	if err != nil {
		return nil, err
	}
	return list, nil
}
