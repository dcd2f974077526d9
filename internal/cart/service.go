package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/homegoods-vn/homegoods-backend/pkg/db/models"
	"github.com/homegoods-vn/homegoods-backend/pkg/enums"
	pkgerrors "github.com/homegoods-vn/homegoods-backend/pkg/errors"
)

// Actor identifies the caller for ownership checks.
type Actor struct {
	UserID uuid.UUID
	Role   enums.UserRole
}

// IsAdmin reports whether the actor may act on carts they do not own.
func (a Actor) IsAdmin() bool {
	return a.Role == enums.UserRoleAdmin
}

// Service defines cart operations exposed to controllers.
type Service interface {
	GetCart(ctx context.Context, userID uuid.UUID) (*CartDTO, error)
	AddItem(ctx context.Context, userID uuid.UUID, req AddItemRequest) (*CartDTO, error)
	UpdateItem(ctx context.Context, actor Actor, itemID uuid.UUID, req UpdateItemRequest) (*CartDTO, error)
	RemoveItem(ctx context.Context, actor Actor, itemID uuid.UUID) (*CartDTO, error)
}

// CartRepository is the persistence surface the service needs; the concrete
// Repository satisfies it, and tests substitute stubs.
type CartRepository interface {
	WithTx(tx *gorm.DB) CartRepository
	FindActiveByUser(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	LockActiveByUser(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Cart, error)
	Create(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	FindItem(ctx context.Context, itemID uuid.UUID) (*models.CartItem, *models.Cart, error)
	FindActiveLine(ctx context.Context, cartID, variantID uuid.UUID) (*models.CartItem, error)
	CreateItem(ctx context.Context, item *models.CartItem) error
	UpdateItemPricing(ctx context.Context, itemID uuid.UUID, quantity int, unitPrice, lineTotal int64) error
	SoftDeleteItem(ctx context.Context, itemID uuid.UUID) error
	RecomputeTotal(ctx context.Context, cartID uuid.UUID) (int64, error)
	MarkConverted(ctx context.Context, cartID uuid.UUID) error
}

type sellableVariantFinder interface {
	FindSellableVariant(ctx context.Context, id uuid.UUID) (*models.ProductVariant, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo     CartRepository
	variants sellableVariantFinder
	tx       txRunner
}

// NewService constructs the cart service.
func NewService(repo CartRepository, variants sellableVariantFinder, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository is required")
	}
	if variants == nil {
		return nil, fmt.Errorf("variant finder is required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner is required")
	}
	return &service{repo: repo, variants: variants, tx: tx}, nil
}

// GetCart returns the user's active cart, creating an empty one when none
// exists yet.
func (s *service) GetCart(ctx context.Context, userID uuid.UUID) (*CartDTO, error) {
	cart, err := s.repo.FindActiveByUser(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		cart, err = s.repo.Create(ctx, userID)
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart")
	}
	return cartFromModel(cart), nil
}

func (s *service) AddItem(ctx context.Context, userID uuid.UUID, req AddItemRequest) (*CartDTO, error) {
	variant, err := s.variants.FindSellableVariant(ctx, req.VariantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "variant not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load variant")
	}

	var cartID uuid.UUID
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		cart, err := repo.FindActiveByUser(ctx, userID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			cart, err = repo.Create(ctx, userID)
		}
		if err != nil {
			return err
		}
		cartID = cart.ID

		line, err := repo.FindActiveLine(ctx, cart.ID, variant.ID)
		switch {
		case err == nil:
			// Merging re-prices the whole line at the variant's current price.
			quantity := line.Quantity + req.Quantity
			err = repo.UpdateItemPricing(ctx, line.ID, quantity, variant.Price, variant.Price*int64(quantity))
		case errors.Is(err, gorm.ErrRecordNotFound):
			item := &models.CartItem{
				CartID:    cart.ID,
				VariantID: variant.ID,
				Quantity:  req.Quantity,
				UnitPrice: variant.Price,
				LineTotal: variant.Price * int64(req.Quantity),
				Status:    enums.CartItemStatusActive,
			}
			err = repo.CreateItem(ctx, item)
		}
		if err != nil {
			return err
		}
		_, err = repo.RecomputeTotal(ctx, cart.ID)
		return err
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "add cart item")
	}

	return s.loadCart(ctx, cartID)
}

func (s *service) UpdateItem(ctx context.Context, actor Actor, itemID uuid.UUID, req UpdateItemRequest) (*CartDTO, error) {
	item, owner, err := s.loadOwnedItem(ctx, actor, itemID)
	if err != nil {
		return nil, err
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.UpdateItemPricing(ctx, item.ID, req.Quantity, item.UnitPrice, item.UnitPrice*int64(req.Quantity)); err != nil {
			return err
		}
		_, err := repo.RecomputeTotal(ctx, owner.ID)
		return err
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update cart item")
	}
	return s.loadCart(ctx, owner.ID)
}

func (s *service) RemoveItem(ctx context.Context, actor Actor, itemID uuid.UUID) (*CartDTO, error) {
	item, owner, err := s.loadOwnedItem(ctx, actor, itemID)
	if err != nil {
		return nil, err
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.SoftDeleteItem(ctx, item.ID); err != nil {
			return err
		}
		_, err := repo.RecomputeTotal(ctx, owner.ID)
		return err
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "remove cart item")
	}
	return s.loadCart(ctx, owner.ID)
}

func (s *service) loadOwnedItem(ctx context.Context, actor Actor, itemID uuid.UUID) (*models.CartItem, *models.Cart, error) {
	item, owner, err := s.repo.FindItem(ctx, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
		}
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart item")
	}
	if owner.UserID != actor.UserID && !actor.IsAdmin() {
		return nil, nil, pkgerrors.New(pkgerrors.CodeForbidden, "cart belongs to another user")
	}
	if owner.Status != enums.CartStatusActive {
		return nil, nil, pkgerrors.New(pkgerrors.CodeStateConflict, "cart is no longer active")
	}
	if item.Status != enums.CartItemStatusActive {
		return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
	}
	return item, owner, nil
}

func (s *service) loadCart(ctx context.Context, cartID uuid.UUID) (*CartDTO, error) {
	cart, err := s.repo.FindByID(ctx, cartID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart")
	}
	return cartFromModel(cart), nil
}
