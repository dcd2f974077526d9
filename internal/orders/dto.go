package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/homegoods-vn/homegoods-backend/pkg/db/models"
)

// ItemDTO is one frozen order line.
type ItemDTO struct {
	ID        uuid.UUID `json:"id"`
	VariantID uuid.UUID `json:"variant_id"`
	Quantity  int       `json:"quantity"`
	UnitPrice int64     `json:"unit_price"`
	LineTotal int64     `json:"line_total"`
}

// OrderDTO is the caller-facing order shape.
type OrderDTO struct {
	ID                  uuid.UUID  `json:"id"`
	UserID              uuid.UUID  `json:"user_id"`
	PromotionID         *uuid.UUID `json:"promotion_id,omitempty"`
	Code                string     `json:"code"`
	Status              int        `json:"status"`
	StatusName          string     `json:"status_name"`
	TotalPrice          int64      `json:"total_price"`
	TotalAfterPromotion int64      `json:"total_after_promotion"`
	Items               []ItemDTO  `json:"items"`
	PaidAt              *time.Time `json:"paid_at,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
}

// PlaceOrderRequest converts the caller's active cart into an order,
// optionally redeeming a promotion code.
type PlaceOrderRequest struct {
	PromotionCode string `json:"promotion_code" validate:"omitempty,min=1,max=64"`
}

// UpdateStatusRequest moves an order along its lifecycle.
type UpdateStatusRequest struct {
	Status int `json:"status" validate:"min=0,max=4"`
}

func orderFromModel(o *models.Order) *OrderDTO {
	if o == nil {
		return nil
	}
	items := make([]ItemDTO, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, ItemDTO{
			ID:        item.ID,
			VariantID: item.VariantID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			LineTotal: item.LineTotal,
		})
	}
	return &OrderDTO{
		ID:                  o.ID,
		UserID:              o.UserID,
		PromotionID:         o.PromotionID,
		Code:                o.Code,
		Status:              int(o.Status),
		StatusName:          o.Status.String(),
		TotalPrice:          o.TotalPrice,
		TotalAfterPromotion: o.TotalAfterPromotion,
		Items:               items,
		PaidAt:              o.PaidAt,
		CreatedAt:           o.CreatedAt,
	}
}
