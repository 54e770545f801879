package domain

import (
	"encoding/json"
	"fmt"
)

// Discount is the closed set of coupon variants: PercentOff and FixedOff.
type Discount interface {
	Kind() CouponKind
	Value() int64
	discount()
}

// PercentOff takes a whole number of percent points off the subtotal
type PercentOff struct {
	Points int64
}

func (PercentOff) Kind() CouponKind { return CouponKindPercent }
func (p PercentOff) Value() int64   { return p.Points }
func (PercentOff) discount()        {}

// FixedOff takes a fixed minor-unit amount off the subtotal
type FixedOff struct {
	Amount int64
}

func (FixedOff) Kind() CouponKind { return CouponKindFixed }
func (f FixedOff) Value() int64   { return f.Amount }
func (FixedOff) discount()        {}

// Coupon is a named discount. The code is kept exactly as entered.
type Coupon struct {
	Code     string
	Discount Discount
}

// NewCoupon builds a coupon from its wire form. Values are not range checked;
// the issuer of the coupon owns that.
func NewCoupon(code string, kind CouponKind, value int64) (*Coupon, error) {
	switch kind {
	case CouponKindPercent:
		return &Coupon{Code: code, Discount: PercentOff{Points: value}}, nil
	case CouponKindFixed:
		return &Coupon{Code: code, Discount: FixedOff{Amount: value}}, nil
	default:
		return nil, fmt.Errorf("unknown coupon type %q", kind)
	}
}

type couponJSON struct {
	Code  string     `json:"code"`
	Type  CouponKind `json:"type"`
	Value int64      `json:"value"`
}

func (c Coupon) MarshalJSON() ([]byte, error) {
	out := couponJSON{Code: c.Code}
	if c.Discount != nil {
		out.Type = c.Discount.Kind()
		out.Value = c.Discount.Value()
	}
	return json.Marshal(out)
}

func (c *Coupon) UnmarshalJSON(data []byte) error {
	var in couponJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	parsed, err := NewCoupon(in.Code, in.Type, in.Value)
	if err != nil {
		return err
	}
	*c = *parsed
	return nil
}
