package promotions

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/homegoods-vn/homegoods-backend/pkg/db/models"
)

// PromotionRepository is the persistence surface shared with the placement
// transaction; the concrete Repository satisfies it.
type PromotionRepository interface {
	WithTx(tx *gorm.DB) PromotionRepository
	FindByCode(ctx context.Context, code string) (*models.Promotion, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Promotion, error)
	DecrementQuantity(ctx context.Context, id uuid.UUID) (bool, error)
}

// Repository exposes promotion persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a promotion repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx rebinds the repository onto an open transaction.
func (r *Repository) WithTx(tx *gorm.DB) PromotionRepository {
	return &Repository{db: tx}
}

// Create inserts a promotion.
func (r *Repository) Create(ctx context.Context, promo *models.Promotion) error {
	promo.Code = strings.ToUpper(strings.TrimSpace(promo.Code))
	return r.db.WithContext(ctx).Create(promo).Error
}

// FindByCode loads a promotion by its code, case-insensitively.
func (r *Repository) FindByCode(ctx context.Context, code string) (*models.Promotion, error) {
	var promo models.Promotion
	err := r.db.WithContext(ctx).
		Where("UPPER(code) = ?", strings.ToUpper(strings.TrimSpace(code))).
		First(&promo).Error
	if err != nil {
		return nil, err
	}
	return &promo, nil
}

// FindByID loads a promotion.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Promotion, error) {
	var promo models.Promotion
	if err := r.db.WithContext(ctx).First(&promo, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &promo, nil
}

// DecrementQuantity burns one redemption. The guard keeps the counter from
// going negative under concurrent placements; the boolean reports whether a
// unit was actually consumed.
func (r *Repository) DecrementQuantity(ctx context.Context, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Promotion{}).
		Where("id = ? AND remaining_quantity > 0", id).
		Update("remaining_quantity", gorm.Expr("remaining_quantity - 1"))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Update applies the provided column updates.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.Promotion{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// List returns promotions newest first with the total count.
func (r *Repository) List(ctx context.Context, limit, offset int) ([]models.Promotion, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Promotion{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var list []models.Promotion
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&list).Error
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}
