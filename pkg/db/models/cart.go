package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/homegoods-vn/homegoods-backend/pkg/enums"
)

// Cart holds a user's open shopping session. At most one active cart exists
// per user; placement flips the status to converted instead of deleting.
type Cart struct {
	ID         uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID     uuid.UUID        `gorm:"column:user_id;type:uuid;not null;index"`
	Status     enums.CartStatus `gorm:"column:status;not null;default:'active'"`
	TotalPrice int64            `gorm:"column:total_price;not null;default:0"`
	Items      []CartItem       `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

// ActiveItems returns the cart lines that have not been soft-deleted.
func (c Cart) ActiveItems() []CartItem {
	items := make([]CartItem, 0, len(c.Items))
	for _, item := range c.Items {
		if item.Status == enums.CartItemStatusActive {
			items = append(items, item)
		}
	}
	return items
}

// CartItem binds a cart to a priced variant with a quantity and a unit price
// snapshot taken at add time.
type CartItem struct {
	ID        uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CartID    uuid.UUID            `gorm:"column:cart_id;type:uuid;not null;index"`
	VariantID uuid.UUID            `gorm:"column:variant_id;type:uuid;not null"`
	Quantity  int                  `gorm:"column:quantity;not null"`
	UnitPrice int64                `gorm:"column:unit_price;not null"`
	LineTotal int64                `gorm:"column:line_total;not null"`
	Status    enums.CartItemStatus `gorm:"column:status;not null;default:'active'"`
	CreatedAt time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
