package promotions

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/homegoods-vn/homegoods-backend/pkg/db/models"
	"github.com/homegoods-vn/homegoods-backend/pkg/enums"
)

// PromotionDTO is the admin-facing promotion shape.
type PromotionDTO struct {
	ID                uuid.UUID       `json:"id"`
	Code              string          `json:"code"`
	Name              string          `json:"name"`
	DiscountType      string          `json:"discount_type"`
	Value             decimal.Decimal `json:"value"`
	MaxDiscount       *int64          `json:"max_discount,omitempty"`
	MinOrderAmount    *int64          `json:"min_order_amount,omitempty"`
	RemainingQuantity int             `json:"remaining_quantity"`
	IsActive          bool            `json:"is_active"`
	ExpiresAt         *time.Time      `json:"expires_at,omitempty"`
}

// ValidateRequest checks a code against a candidate order amount.
type ValidateRequest struct {
	Code        string `json:"code" validate:"required,min=1,max=64"`
	OrderAmount int64  `json:"order_amount" validate:"required,gt=0"`
}

// ValidateResponse reports whether the code applies and at what discount.
type ValidateResponse struct {
	Valid          bool   `json:"valid"`
	Reason         string `json:"reason,omitempty"`
	DiscountAmount int64  `json:"discount_amount"`
	TotalAfter     int64  `json:"total_after"`
}

// CreatePromotionRequest creates a redeemable code.
type CreatePromotionRequest struct {
	Code           string          `json:"code" validate:"required,min=1,max=64"`
	Name           string          `json:"name" validate:"required,min=1,max=200"`
	DiscountType   string          `json:"discount_type" validate:"required,oneof=percentage fixed_amount"`
	Value          decimal.Decimal `json:"value" validate:"required"`
	MaxDiscount    *int64          `json:"max_discount" validate:"omitempty,gt=0"`
	MinOrderAmount *int64          `json:"min_order_amount" validate:"omitempty,gt=0"`
	Quantity       int             `json:"quantity" validate:"required,gt=0"`
	ExpiresAt      *time.Time      `json:"expires_at"`
}

// UpdatePromotionRequest edits mutable promotion fields.
type UpdatePromotionRequest struct {
	Name      *string    `json:"name" validate:"omitempty,min=1,max=200"`
	IsActive  *bool      `json:"is_active"`
	Quantity  *int       `json:"quantity" validate:"omitempty,gte=0"`
	ExpiresAt *time.Time `json:"expires_at"`
}

func (r CreatePromotionRequest) toModel() (*models.Promotion, error) {
	discountType, err := enums.ParseDiscountType(r.DiscountType)
	if err != nil {
		return nil, err
	}
	return &models.Promotion{
		Code:              r.Code,
		Name:              r.Name,
		DiscountType:      discountType,
		Value:             r.Value,
		MaxDiscount:       r.MaxDiscount,
		MinOrderAmount:    r.MinOrderAmount,
		RemainingQuantity: r.Quantity,
		IsActive:          true,
		ExpiresAt:         r.ExpiresAt,
	}, nil
}

func fromModel(p *models.Promotion) *PromotionDTO {
	if p == nil {
		return nil
	}
	return &PromotionDTO{
		ID:                p.ID,
		Code:              p.Code,
		Name:              p.Name,
		DiscountType:      p.DiscountType.String(),
		Value:             p.Value,
		MaxDiscount:       p.MaxDiscount,
		MinOrderAmount:    p.MinOrderAmount,
		RemainingQuantity: p.RemainingQuantity,
		IsActive:          p.IsActive,
		ExpiresAt:         p.ExpiresAt,
	}
}
