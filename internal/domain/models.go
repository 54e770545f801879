package domain

import (
	"time"

	"github.com/google/uuid"
)

// Item is a catalog entry as handed to the cart by the menu collaborator.
// The cart never stores it: cart.ForItem flattens the chosen configuration
// into the line input. All money fields are integer minor currency units.
type Item struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Image          string          `json:"image"`
	BasePrice      int64           `json:"base_price"`
	Variants       []Variant       `json:"variants,omitempty"`
	ModifierGroups []ModifierGroup `json:"modifier_groups,omitempty"`
}

// Variant is a mutually exclusive size/option choice
type Variant struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	PriceDiff int64  `json:"price_diff"`
}

// Modifier is an additive extra
type Modifier struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	PriceDiff int64  `json:"price_diff"`
}

// ModifierGroup bounds how many modifiers may be picked. It is part of the
// menu collaborator's Item shape; the bounds are enforced by the
// item-selection surface, not by the cart.
type ModifierGroup struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Min       int        `json:"min"`
	Max       int        `json:"max"`
	Required  bool       `json:"required"`
	Modifiers []Modifier `json:"modifiers"`
}

// CartLine is one item configuration at a given quantity. Item fields are
// copied at add time so catalog edits never touch lines already in a cart.
type CartLine struct {
	ID        string     `json:"id"`
	ItemID    string     `json:"item_id"`
	Name      string     `json:"name"`
	Image     string     `json:"image"`
	BasePrice int64      `json:"base_price"`
	Variant   *Variant   `json:"variant,omitempty"`
	Modifiers []Modifier `json:"modifiers"`
	Qty       int64      `json:"qty"`
	LineTotal int64      `json:"line_total"`
}

// Fees is the fee schedule applied to every order
type Fees struct {
	Delivery  int64 `json:"delivery"`
	Packaging int64 `json:"packaging"`
	Service   int64 `json:"service"`
}

// Sum returns the total of all fee components
func (f Fees) Sum() int64 {
	return f.Delivery + f.Packaging + f.Service
}

// Cart is the aggregate root owned by a cart store
type Cart struct {
	Lines          []CartLine     `json:"lines"`
	DeliveryMethod DeliveryMethod `json:"delivery_method"`
	Fees           Fees           `json:"fees"`
	TaxRate        int64          `json:"tax_rate"`
	Coupon         *Coupon        `json:"coupon,omitempty"`
	Tip            int64          `json:"tip"`
}

// Totals is the money breakdown derived from a cart
type Totals struct {
	Subtotal   int64 `json:"subtotal"`
	Discount   int64 `json:"discount"`
	Tax        int64 `json:"tax"`
	Fees       int64 `json:"fees"`
	GrandTotal int64 `json:"grand_total"`
}

// CouponDefinition is a coupon as stored by the promotions side
type CouponDefinition struct {
	Code      string
	Kind      CouponKind
	Value     int64
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Coupon converts the stored definition into the value the cart applies
func (d *CouponDefinition) Coupon() (*Coupon, error) {
	return NewCoupon(d.Code, d.Kind, d.Value)
}

// Order is the snapshot of a cart taken at checkout
type Order struct {
	ID             uuid.UUID
	SessionID      uuid.UUID
	Status         OrderStatus
	DeliveryMethod DeliveryMethod
	CustomerName   string
	CustomerPhone  string
	Address        map[string]interface{} // JSONB
	CouponCode     *string
	Subtotal       int64
	Discount       int64
	Tax            int64
	Fees           int64
	Tip            int64
	GrandTotal     int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// OrderLine is a cart line frozen into an order
type OrderLine struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	ItemID    string
	Name      string
	Image     string
	BasePrice int64
	Variant   *Variant
	Modifiers []Modifier
	Qty       int64
	LineTotal int64
	CreatedAt time.Time
}

// OrderEvent represents an audit event for an order
type OrderEvent struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	EventType string
	EventData map[string]interface{} // JSONB
	CreatedAt time.Time
}

// AdminKey is a back-office API key, stored as a bcrypt hash
type AdminKey struct {
	ID        uuid.UUID
	Name      string
	KeyHash   string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
