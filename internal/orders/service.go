package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/homegoods-vn/homegoods-backend/internal/cart"
	"github.com/homegoods-vn/homegoods-backend/internal/promotions"
	"github.com/homegoods-vn/homegoods-backend/pkg/db/models"
	"github.com/homegoods-vn/homegoods-backend/pkg/enums"
	pkgerrors "github.com/homegoods-vn/homegoods-backend/pkg/errors"
	"github.com/homegoods-vn/homegoods-backend/pkg/logger"
	"github.com/homegoods-vn/homegoods-backend/pkg/pagination"
)

// Actor identifies the caller for ownership checks.
type Actor struct {
	UserID uuid.UUID
	Role   enums.UserRole
}

// IsAdmin reports whether the actor may act on orders they do not own.
func (a Actor) IsAdmin() bool {
	return a.Role == enums.UserRoleAdmin
}

// Service defines order operations exposed to controllers.
type Service interface {
	Place(ctx context.Context, userID uuid.UUID, req PlaceOrderRequest) (*OrderDTO, error)
	Get(ctx context.Context, actor Actor, orderID uuid.UUID) (*OrderDTO, error)
	ListMine(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]OrderDTO, pagination.Page, error)
	ListAll(ctx context.Context, params pagination.Params) ([]OrderDTO, pagination.Page, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, req UpdateStatusRequest) (*OrderDTO, error)
	Cancel(ctx context.Context, actor Actor, orderID uuid.UUID) (*OrderDTO, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo    OrderRepository
	carts   cart.CartRepository
	promos  promotions.PromotionRepository
	tx      txRunner
	logg    *logger.Logger
	now     func() time.Time
	newCode func(time.Time) (string, error)
}

// ServiceParams bundles the dependencies required to build an order service.
type ServiceParams struct {
	Repo       OrderRepository
	Carts      cart.CartRepository
	Promotions promotions.PromotionRepository
	Tx         txRunner
	Logger     *logger.Logger
}

// NewService constructs the order service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("order repository is required")
	}
	if params.Carts == nil {
		return nil, fmt.Errorf("cart repository is required")
	}
	if params.Promotions == nil {
		return nil, fmt.Errorf("promotion repository is required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner is required")
	}
	return &service{
		repo:    params.Repo,
		carts:   params.Carts,
		promos:  params.Promotions,
		tx:      params.Tx,
		logg:    params.Logger,
		now:     time.Now,
		newCode: GenerateCode,
	}, nil
}

// Place converts the caller's active cart into an order inside one
// transaction: cart is locked against double conversion, line snapshots are
// copied verbatim, at most one promotion is redeemed, and the cart is closed.
// Any step failing rolls the whole placement back.
func (s *service) Place(ctx context.Context, userID uuid.UUID, req PlaceOrderRequest) (*OrderDTO, error) {
	now := s.now()
	code, err := s.newCode(now)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate order code")
	}

	var orderID uuid.UUID
	txErr := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		cartRepo := s.carts.WithTx(tx)
		orderRepo := s.repo.WithTx(tx)
		promoRepo := s.promos.WithTx(tx)

		current, err := cartRepo.LockActiveByUser(ctx, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "no active cart")
			}
			return err
		}

		lines := current.ActiveItems()
		if len(lines) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "cart has no active items")
		}

		totalPrice := current.TotalPrice
		totalAfter := totalPrice
		var promotionID *uuid.UUID

		if req.PromotionCode != "" {
			promo, err := promoRepo.FindByCode(ctx, req.PromotionCode)
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			// An inapplicable code never blocks placement; the order simply
			// carries no discount.
			if eval := promotions.Evaluate(promo, totalPrice, now); eval.Valid {
				consumed, err := promoRepo.DecrementQuantity(ctx, promo.ID)
				if err != nil {
					return err
				}
				if consumed {
					totalAfter = eval.TotalAfter
					promotionID = &promo.ID
				}
			}
		}

		order := &models.Order{
			UserID:              userID,
			PromotionID:         promotionID,
			Code:                code,
			Status:              enums.OrderStatusPending,
			TotalPrice:          totalPrice,
			TotalAfterPromotion: totalAfter,
		}
		for _, line := range lines {
			order.Items = append(order.Items, models.OrderItem{
				VariantID: line.VariantID,
				Quantity:  line.Quantity,
				UnitPrice: line.UnitPrice,
				LineTotal: line.LineTotal,
			})
		}
		if err := orderRepo.Create(ctx, order); err != nil {
			return err
		}
		orderID = order.ID

		return cartRepo.MarkConverted(ctx, current.ID)
	})
	if txErr != nil {
		var appErr *pkgerrors.Error
		if errors.As(txErr, &appErr) {
			return nil, appErr
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, txErr, "place order")
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithOrderCode(ctx, code), "order.placed")
	}
	return s.load(ctx, orderID)
}

func (s *service) Get(ctx context.Context, actor Actor, orderID uuid.UUID) (*OrderDTO, error) {
	dto, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if dto.UserID != actor.UserID && !actor.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order belongs to another user")
	}
	return dto, nil
}

func (s *service) ListMine(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]OrderDTO, pagination.Page, error) {
	params = params.Normalize()
	list, total, err := s.repo.ListByUser(ctx, userID, params.Limit, params.Offset())
	if err != nil {
		return nil, pagination.Page{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list orders")
	}
	return dtoList(list), pagination.NewPage(params, total), nil
}

func (s *service) ListAll(ctx context.Context, params pagination.Params) ([]OrderDTO, pagination.Page, error) {
	params = params.Normalize()
	list, total, err := s.repo.List(ctx, params.Limit, params.Offset())
	if err != nil {
		return nil, pagination.Page{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list orders")
	}
	return dtoList(list), pagination.NewPage(params, total), nil
}

// UpdateStatus moves an order along the lifecycle. Illegal edges are refused;
// reaching delivered stamps the paid timestamp.
func (s *service) UpdateStatus(ctx context.Context, orderID uuid.UUID, req UpdateStatusRequest) (*OrderDTO, error) {
	next, err := enums.ParseOrderStatus(req.Status)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown order status")
	}
	if err := s.transition(ctx, orderID, next, nil); err != nil {
		return nil, err
	}
	return s.load(ctx, orderID)
}

// Cancel closes a not-yet-shipping order. Owners may cancel their own orders;
// admins may cancel any.
func (s *service) Cancel(ctx context.Context, actor Actor, orderID uuid.UUID) (*OrderDTO, error) {
	if err := s.transition(ctx, orderID, enums.OrderStatusCancelled, &actor); err != nil {
		return nil, err
	}
	return s.load(ctx, orderID)
}

func (s *service) transition(ctx context.Context, orderID uuid.UUID, next enums.OrderStatus, actor *Actor) error {
	txErr := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.LockByID(ctx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return err
		}
		if actor != nil && order.UserID != actor.UserID && !actor.IsAdmin() {
			return pkgerrors.New(pkgerrors.CodeForbidden, "order belongs to another user")
		}
		if !order.Status.CanTransitionTo(next) {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("cannot move order from %s to %s", order.Status, next))
		}

		var paidAt *time.Time
		if next == enums.OrderStatusDelivered {
			now := s.now()
			paidAt = &now
		}
		return repo.UpdateStatus(ctx, order.ID, next, paidAt)
	})
	if txErr != nil {
		var appErr *pkgerrors.Error
		if errors.As(txErr, &appErr) {
			return appErr
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, txErr, "update order status")
	}
	return nil
}

func (s *service) load(ctx context.Context, orderID uuid.UUID) (*OrderDTO, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
	}
	return orderFromModel(order), nil
}

func dtoList(list []models.Order) []OrderDTO {
	dtos := make([]OrderDTO, 0, len(list))
	for i := range list {
		dtos = append(dtos, *orderFromModel(&list[i]))
	}
	return dtos
}
