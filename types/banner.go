package types

import "time"

// Banner is a promotional banner shown on the landing page.
// At most one banner is active at a time.
type Banner struct {
	ID          int       `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Image       string    `json:"image" db:"image"`
	Text        string    `json:"text" db:"text"`
	CouponCode  string    `json:"couponCode" db:"coupon_code"`
	DiscountPct int       `json:"discountPct" db:"discount_pct"`
	IsActive    bool      `json:"isActive" db:"is_active"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
