package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/homegoods-vn/homegoods-backend/pkg/enums"
)

// Order is created exactly once per successful placement. Only the status and
// paid timestamp may change afterwards; totals and items are frozen.
type Order struct {
	ID                  uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID              uuid.UUID         `gorm:"column:user_id;type:uuid;not null;index"`
	PromotionID         *uuid.UUID        `gorm:"column:promotion_id;type:uuid"`
	Code                string            `gorm:"column:code;not null;uniqueIndex"`
	Status              enums.OrderStatus `gorm:"column:status;not null;default:1"`
	TotalPrice          int64             `gorm:"column:total_price;not null"`
	TotalAfterPromotion int64             `gorm:"column:total_after_promotion;not null"`
	Items               []OrderItem       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	PaidAt              *time.Time        `gorm:"column:paid_at"`
	CreatedAt           time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

// OrderItem is a line snapshot copied from the source cart line at placement
// time, immune to later price edits on the variant.
type OrderItem struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID   uuid.UUID `gorm:"column:order_id;type:uuid;not null;index"`
	VariantID uuid.UUID `gorm:"column:variant_id;type:uuid;not null"`
	Quantity  int       `gorm:"column:quantity;not null"`
	UnitPrice int64     `gorm:"column:unit_price;not null"`
	LineTotal int64     `gorm:"column:line_total;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
