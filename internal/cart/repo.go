package cart

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/homegoods-vn/homegoods-backend/pkg/db/models"
	"github.com/homegoods-vn/homegoods-backend/pkg/enums"
)

// Repository exposes cart persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a cart repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx rebinds the repository onto an open transaction.
func (r *Repository) WithTx(tx *gorm.DB) CartRepository {
	return &Repository{db: tx}
}

// FindActiveByUser returns the user's most recent active cart with its items.
func (r *Repository) FindActiveByUser(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("user_id = ? AND status = ?", userID, enums.CartStatusActive).
		Order("created_at DESC").
		First(&cart).Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// LockActiveByUser is FindActiveByUser under FOR UPDATE, for use inside the
// placement transaction to prevent double-conversion.
func (r *Repository) LockActiveByUser(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND status = ?", userID, enums.CartStatusActive).
		Order("created_at DESC").
		First(&cart).Error
	if err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).
		Where("cart_id = ?", cart.ID).
		Find(&cart.Items).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

// FindByID loads a cart with all of its items regardless of status.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.WithContext(ctx).
		Preload("Items").
		First(&cart, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// Create inserts a fresh active cart for the user.
func (r *Repository) Create(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	cart := &models.Cart{UserID: userID, Status: enums.CartStatusActive}
	if err := r.db.WithContext(ctx).Create(cart).Error; err != nil {
		return nil, err
	}
	return cart, nil
}

// FindItem returns the item row by id together with its owning cart.
func (r *Repository) FindItem(ctx context.Context, itemID uuid.UUID) (*models.CartItem, *models.Cart, error) {
	var item models.CartItem
	if err := r.db.WithContext(ctx).First(&item, "id = ?", itemID).Error; err != nil {
		return nil, nil, err
	}
	var owner models.Cart
	if err := r.db.WithContext(ctx).First(&owner, "id = ?", item.CartID).Error; err != nil {
		return nil, nil, err
	}
	return &item, &owner, nil
}

// FindActiveLine returns the active line for a variant in a cart, if any.
func (r *Repository) FindActiveLine(ctx context.Context, cartID, variantID uuid.UUID) (*models.CartItem, error) {
	var item models.CartItem
	err := r.db.WithContext(ctx).
		Where("cart_id = ? AND variant_id = ? AND status = ?", cartID, variantID, enums.CartItemStatusActive).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// CreateItem inserts a new cart line.
func (r *Repository) CreateItem(ctx context.Context, item *models.CartItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// UpdateItemPricing rewrites quantity, unit price and line total on a line.
func (r *Repository) UpdateItemPricing(ctx context.Context, itemID uuid.UUID, quantity int, unitPrice, lineTotal int64) error {
	return r.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("id = ?", itemID).
		Updates(map[string]any{
			"quantity":   quantity,
			"unit_price": unitPrice,
			"line_total": lineTotal,
		}).Error
}

// SoftDeleteItem flips a line to removed without deleting the row.
func (r *Repository) SoftDeleteItem(ctx context.Context, itemID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("id = ?", itemID).
		Update("status", enums.CartItemStatusRemoved).Error
}

// RecomputeTotal persists the cart's cached total as the sum of its active
// line totals and returns the new value.
func (r *Repository) RecomputeTotal(ctx context.Context, cartID uuid.UUID) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("cart_id = ? AND status = ?", cartID, enums.CartItemStatusActive).
		Select("COALESCE(SUM(line_total), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	err = r.db.WithContext(ctx).
		Model(&models.Cart{}).
		Where("id = ?", cartID).
		Update("total_price", total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}

// MarkConverted closes the cart after its order has been created.
func (r *Repository) MarkConverted(ctx context.Context, cartID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Cart{}).
		Where("id = ? AND status = ?", cartID, enums.CartStatusActive).
		Update("status", enums.CartStatusConverted).Error
}
