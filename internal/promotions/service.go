package promotions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/homegoods-vn/homegoods-backend/pkg/db/models"
	pkgerrors "github.com/homegoods-vn/homegoods-backend/pkg/errors"
	"github.com/homegoods-vn/homegoods-backend/pkg/pagination"
)

// Service defines promotion operations exposed to controllers.
type Service interface {
	Validate(ctx context.Context, req ValidateRequest) (*ValidateResponse, error)
	Create(ctx context.Context, req CreatePromotionRequest) (*PromotionDTO, error)
	Update(ctx context.Context, id uuid.UUID, req UpdatePromotionRequest) (*PromotionDTO, error)
	List(ctx context.Context, params pagination.Params) ([]PromotionDTO, pagination.Page, error)
}

type promotionStore interface {
	Create(ctx context.Context, promo *models.Promotion) error
	FindByCode(ctx context.Context, code string) (*models.Promotion, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Promotion, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	List(ctx context.Context, limit, offset int) ([]models.Promotion, int64, error)
}

type service struct {
	store promotionStore
	now   func() time.Time
}

// NewService constructs the promotion service.
func NewService(store promotionStore) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("promotion store is required")
	}
	return &service{store: store, now: time.Now}, nil
}

// Validate checks a code against an order amount without consuming a
// redemption unit.
func (s *service) Validate(ctx context.Context, req ValidateRequest) (*ValidateResponse, error) {
	promo, err := s.store.FindByCode(ctx, req.Code)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load promotion")
	}

	eval := Evaluate(promo, req.OrderAmount, s.now())
	return &ValidateResponse{
		Valid:          eval.Valid,
		Reason:         string(eval.Reason),
		DiscountAmount: eval.DiscountAmount,
		TotalAfter:     eval.TotalAfter,
	}, nil
}

func (s *service) Create(ctx context.Context, req CreatePromotionRequest) (*PromotionDTO, error) {
	promo, err := req.toModel()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid discount type")
	}
	if err := s.store.Create(ctx, promo); err != nil {
		if pkgerrors.IsUniqueViolation(err) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "promotion code already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create promotion")
	}
	return fromModel(promo), nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, req UpdatePromotionRequest) (*PromotionDTO, error) {
	if _, err := s.load(ctx, id); err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if req.Quantity != nil {
		updates["remaining_quantity"] = *req.Quantity
	}
	if req.ExpiresAt != nil {
		updates["expires_at"] = *req.ExpiresAt
	}
	if err := s.store.Update(ctx, id, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update promotion")
	}
	return s.load(ctx, id)
}

func (s *service) List(ctx context.Context, params pagination.Params) ([]PromotionDTO, pagination.Page, error) {
	params = params.Normalize()
	list, total, err := s.store.List(ctx, params.Limit, params.Offset())
	if err != nil {
		return nil, pagination.Page{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list promotions")
	}
	dtos := make([]PromotionDTO, 0, len(list))
	for i := range list {
		dtos = append(dtos, *fromModel(&list[i]))
	}
	return dtos, pagination.NewPage(params, total), nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*PromotionDTO, error) {
	promo, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "promotion not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load promotion")
	}
	return fromModel(promo), nil
}
