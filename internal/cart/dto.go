package cart

import (
	"time"

	"github.com/google/uuid"

	"github.com/homegoods-vn/homegoods-backend/pkg/db/models"
	"github.com/homegoods-vn/homegoods-backend/pkg/enums"
)

// ItemDTO is one active cart line.
type ItemDTO struct {
	ID        uuid.UUID `json:"id"`
	VariantID uuid.UUID `json:"variant_id"`
	Quantity  int       `json:"quantity"`
	UnitPrice int64     `json:"unit_price"`
	LineTotal int64     `json:"line_total"`
}

// CartDTO is the caller-facing cart shape; only active lines are listed.
type CartDTO struct {
	ID         uuid.UUID `json:"id"`
	UserID     uuid.UUID `json:"user_id"`
	TotalPrice int64     `json:"total_price"`
	Items      []ItemDTO `json:"items"`
	CreatedAt  time.Time `json:"created_at"`
}

// AddItemRequest puts a variant into the caller's cart.
type AddItemRequest struct {
	VariantID uuid.UUID `json:"variant_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,gt=0"`
}

// UpdateItemRequest changes the quantity on an existing line.
type UpdateItemRequest struct {
	Quantity int `json:"quantity" validate:"required,gt=0"`
}

func cartFromModel(c *models.Cart) *CartDTO {
	if c == nil {
		return nil
	}
	items := make([]ItemDTO, 0, len(c.Items))
	for _, item := range c.Items {
		if item.Status != enums.CartItemStatusActive {
			continue
		}
		items = append(items, ItemDTO{
			ID:        item.ID,
			VariantID: item.VariantID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			LineTotal: item.LineTotal,
		})
	}
	return &CartDTO{
		ID:         c.ID,
		UserID:     c.UserID,
		TotalPrice: c.TotalPrice,
		Items:      items,
		CreatedAt:  c.CreatedAt,
	}
}
