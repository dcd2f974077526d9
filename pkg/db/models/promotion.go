package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/homegoods-vn/homegoods-backend/pkg/enums"
)

// Promotion is a redeemable discount code. RemainingQuantity is decremented by
// exactly one on each successful redemption at order-creation time and is
// never incremented back.
type Promotion struct {
	ID                uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Code              string             `gorm:"column:code;not null;uniqueIndex"`
	Name              string             `gorm:"column:name;not null"`
	DiscountType      enums.DiscountType `gorm:"column:discount_type;not null"`
	Value             decimal.Decimal    `gorm:"column:value;type:numeric(14,2);not null"`
	MaxDiscount       *int64             `gorm:"column:max_discount"`
	MinOrderAmount    *int64             `gorm:"column:min_order_amount"`
	RemainingQuantity int                `gorm:"column:remaining_quantity;not null;default:0"`
	IsActive          bool               `gorm:"column:is_active;not null;default:true"`
	ExpiresAt         *time.Time         `gorm:"column:expires_at"`
	CreatedAt         time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
