package promotions

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/homegoods-vn/homegoods-backend/pkg/db/models"
	"github.com/homegoods-vn/homegoods-backend/pkg/enums"
)

// Reason explains why a promotion did not apply.
type Reason string

const (
	ReasonInactive    Reason = "promotion_inactive"
	ReasonExhausted   Reason = "promotion_exhausted"
	ReasonExpired     Reason = "promotion_expired"
	ReasonBelowMin    Reason = "order_below_minimum"
	ReasonUnknownCode Reason = "unknown_code"
)

// Evaluation is the outcome of checking a promotion against an order amount.
type Evaluation struct {
	Valid          bool
	Reason         Reason
	DiscountAmount int64
	TotalAfter     int64
}

var oneHundred = decimal.NewFromInt(100)

// Evaluate checks the promotion against the amount at the given instant and
// computes the discount. It never touches remaining quantity; redemption is a
// placement-time side effect.
func Evaluate(promo *models.Promotion, amount int64, now time.Time) Evaluation {
	invalid := func(reason Reason) Evaluation {
		return Evaluation{Reason: reason, TotalAfter: amount}
	}

	if promo == nil {
		return invalid(ReasonUnknownCode)
	}
	if !promo.IsActive {
		return invalid(ReasonInactive)
	}
	if promo.RemainingQuantity <= 0 {
		return invalid(ReasonExhausted)
	}
	if promo.ExpiresAt != nil && promo.ExpiresAt.Before(now) {
		return invalid(ReasonExpired)
	}
	if promo.MinOrderAmount != nil && amount < *promo.MinOrderAmount {
		return invalid(ReasonBelowMin)
	}

	discount := computeDiscount(promo, amount)
	total := amount - discount
	if total < 0 {
		total = 0
		discount = amount
	}
	return Evaluation{Valid: true, DiscountAmount: discount, TotalAfter: total}
}

func computeDiscount(promo *models.Promotion, amount int64) int64 {
	var discount int64
	switch promo.DiscountType {
	case enums.DiscountTypePercentage:
		// Truncate fractional dong rather than rounding up.
		discount = decimal.NewFromInt(amount).
			Mul(promo.Value).
			Div(oneHundred).
			IntPart()
	case enums.DiscountTypeFixedAmount:
		discount = promo.Value.IntPart()
	}
	if promo.MaxDiscount != nil && discount > *promo.MaxDiscount {
		discount = *promo.MaxDiscount
	}
	if discount < 0 {
		discount = 0
	}
	return discount
}
