// Package cart holds the mutable cart state of a session and the only
// operations allowed to change it.
package cart

import (
	"sync"

	"github.com/google/uuid"

	"github.com/jafarshop/restaurant/internal/domain"
	"github.com/jafarshop/restaurant/internal/pricing"
)

// Settings is the session-level configuration a new cart starts from
type Settings struct {
	DeliveryFee    int64
	PackagingFee   int64
	ServiceFee     int64
	TaxRate        int64
	DeliveryMethod domain.DeliveryMethod
}

// AddLineInput describes the item configuration being added. A zero Qty
// means "not given" and becomes 1.
type AddLineInput struct {
	ItemID    string
	Name      string
	Image     string
	BasePrice int64
	Variant   *domain.Variant
	Modifiers []domain.Modifier
	Qty       int64
}

// ForItem builds the input for adding item with the chosen variant and
// modifiers. The item's own fields are copied so later catalog edits do not
// reach the line.
func ForItem(item domain.Item, variant *domain.Variant, modifiers []domain.Modifier, qty int64) AddLineInput {
	return AddLineInput{
		ItemID:    item.ID,
		Name:      item.Name,
		Image:     item.Image,
		BasePrice: item.BasePrice,
		Variant:   variant,
		Modifiers: modifiers,
		Qty:       qty,
	}
}

// Store owns one cart. Each method is a single atomic state transition.
type Store struct {
	mu          sync.Mutex
	cart        domain.Cart
	deliveryFee int64
	newID       func() string
}

// NewStore creates an empty cart from settings. The delivery fee always
// matches the starting method: a cart that starts as pickup carries no
// delivery fee even though settings.DeliveryFee is set, the same state
// SetDeliveryMethod(pickup) produces.
func NewStore(settings Settings) *Store {
	method := settings.DeliveryMethod
	if !method.IsValid() {
		method = domain.DeliveryMethodPickup
	}

	s := &Store{
		cart: domain.Cart{
			Lines:          []domain.CartLine{},
			DeliveryMethod: method,
			Fees: domain.Fees{
				Packaging: settings.PackagingFee,
				Service:   settings.ServiceFee,
			},
			TaxRate: settings.TaxRate,
		},
		deliveryFee: settings.DeliveryFee,
		newID:       uuid.NewString,
	}
	s.cart.Fees.Delivery = s.deliveryFeeFor(method)
	return s
}

// Restore creates a store from previously persisted cart state. Line totals
// are recomputed and quantities below 1 are clamped, so stale caches never
// survive a restore.
func Restore(settings Settings, saved domain.Cart) *Store {
	s := NewStore(settings)
	if saved.DeliveryMethod.IsValid() {
		s.cart.DeliveryMethod = saved.DeliveryMethod
		s.cart.Fees.Delivery = s.deliveryFeeFor(saved.DeliveryMethod)
	}
	for _, line := range saved.Lines {
		line = copyLine(line)
		if line.ID == "" {
			line.ID = s.newID()
		}
		if line.Qty < 1 {
			line.Qty = 1
		}
		line.LineTotal = pricing.ComputeLineTotal(line.BasePrice, line.Variant, line.Modifiers, line.Qty)
		s.cart.Lines = append(s.cart.Lines, line)
	}
	if saved.Coupon != nil {
		c := *saved.Coupon
		s.cart.Coupon = &c
	}
	if saved.Tip > 0 {
		s.cart.Tip = saved.Tip
	}
	return s
}

func (s *Store) deliveryFeeFor(method domain.DeliveryMethod) int64 {
	if method == domain.DeliveryMethodDelivery {
		return s.deliveryFee
	}
	return 0
}

// AddLine appends a new line. Identical configurations are never merged.
func (s *Store) AddLine(in AddLineInput) domain.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()

	qty := in.Qty
	if qty == 0 {
		qty = 1
	}

	line := copyLine(domain.CartLine{
		ID:        s.newID(),
		ItemID:    in.ItemID,
		Name:      in.Name,
		Image:     in.Image,
		BasePrice: in.BasePrice,
		Variant:   in.Variant,
		Modifiers: in.Modifiers,
		Qty:       qty,
	})
	line.LineTotal = pricing.ComputeLineTotal(line.BasePrice, line.Variant, line.Modifiers, line.Qty)

	s.cart.Lines = append(s.cart.Lines, line)
	return copyLine(line)
}

// RemoveLine deletes the line with the given id. Unknown ids are ignored.
func (s *Store) RemoveLine(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.cart.Lines[:0]
	for _, line := range s.cart.Lines {
		if line.ID != id {
			kept = append(kept, line)
		}
	}
	s.cart.Lines = kept
}

// SetQty sets a line's quantity, clamped to at least 1, and recomputes its
// total. It reports whether the line exists.
func (s *Store) SetQty(id string, qty int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.cart.Lines {
		line := &s.cart.Lines[i]
		if line.ID != id {
			continue
		}
		if qty < 1 {
			qty = 1
		}
		line.Qty = qty
		line.LineTotal = pricing.ComputeLineTotal(line.BasePrice, line.Variant, line.Modifiers, line.Qty)
		return true
	}
	return false
}

// SetDeliveryMethod switches the method and resets the delivery fee to the
// flat fee for delivery or zero for pickup.
func (s *Store) SetDeliveryMethod(method domain.DeliveryMethod) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cart.DeliveryMethod = method
	s.cart.Fees.Delivery = s.deliveryFeeFor(method)
}

// SetTip assigns the tip, clamped to at least 0
func (s *Store) SetTip(amount int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if amount < 0 {
		amount = 0
	}
	s.cart.Tip = amount
}

// ApplyCoupon stores the coupon as given, replacing any previous one
func (s *Store) ApplyCoupon(coupon domain.Coupon) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cart.Coupon = &coupon
}

// ClearCoupon removes the active coupon
func (s *Store) ClearCoupon() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cart.Coupon = nil
}

// ClearCart empties the order-level state. Delivery method, fees and tax rate
// belong to the session and are kept.
func (s *Store) ClearCart() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clearLocked()
}

func (s *Store) clearLocked() {
	s.cart.Lines = []domain.CartLine{}
	s.cart.Tip = 0
	s.cart.Coupon = nil
}

// Line returns a copy of the line with the given id
func (s *Store) Line(id string) (domain.CartLine, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, line := range s.cart.Lines {
		if line.ID == id {
			return copyLine(line), true
		}
	}
	return domain.CartLine{}, false
}

// Snapshot returns a deep copy of the cart
func (s *Store) Snapshot() domain.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.snapshotLocked()
}

// Totals computes the totals of the current cart
func (s *Store) Totals() domain.Totals {
	return pricing.ComputeTotals(s.Snapshot())
}

// SnapshotWithTotals returns the cart and its totals from the same state
func (s *Store) SnapshotWithTotals() (domain.Cart, domain.Totals) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snapshotLocked()
	return snap, pricing.ComputeTotals(snap)
}

// Checkout hands the current cart and its totals to place, holding the cart
// still until place returns. The cart is cleared only when place succeeds.
func (s *Store) Checkout(place func(domain.Cart, domain.Totals) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snapshotLocked()
	if err := place(snap, pricing.ComputeTotals(snap)); err != nil {
		return err
	}

	s.clearLocked()
	return nil
}

func (s *Store) snapshotLocked() domain.Cart {
	snap := s.cart
	snap.Lines = make([]domain.CartLine, len(s.cart.Lines))
	for i, line := range s.cart.Lines {
		snap.Lines[i] = copyLine(line)
	}
	if s.cart.Coupon != nil {
		c := *s.cart.Coupon
		snap.Coupon = &c
	}
	return snap
}

func copyLine(line domain.CartLine) domain.CartLine {
	if line.Variant != nil {
		v := *line.Variant
		line.Variant = &v
	}
	mods := make([]domain.Modifier, len(line.Modifiers))
	copy(mods, line.Modifiers)
	line.Modifiers = mods
	return line
}
