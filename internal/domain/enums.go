package domain

// DeliveryMethod represents how an order reaches the customer
type DeliveryMethod string

const (
	DeliveryMethodPickup   DeliveryMethod = "pickup"
	DeliveryMethodDelivery DeliveryMethod = "delivery"
)

// IsValid checks if the delivery method is valid
func (m DeliveryMethod) IsValid() bool {
	switch m {
	case DeliveryMethodPickup, DeliveryMethodDelivery:
		return true
	default:
		return false
	}
}

// CouponKind names the discount variant carried by a coupon
type CouponKind string

const (
	CouponKindPercent CouponKind = "percent"
	CouponKindFixed   CouponKind = "fixed"
)

// IsValid checks if the coupon kind is valid
func (k CouponKind) IsValid() bool {
	return k == CouponKindPercent || k == CouponKindFixed
}

// OrderStatus represents the status of a placed order
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusPreparing OrderStatus = "PREPARING"
	OrderStatusReady     OrderStatus = "READY"
	OrderStatusCompleted OrderStatus = "COMPLETED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// IsValid checks if the order status is valid
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending,
		OrderStatusPreparing,
		OrderStatusReady,
		OrderStatusCompleted,
		OrderStatusCancelled:
		return true
	default:
		return false
	}
}

// CanTransitionTo checks if a status transition is valid
func (s OrderStatus) CanTransitionTo(newStatus OrderStatus) bool {
	switch s {
	case OrderStatusPending:
		return newStatus == OrderStatusPreparing ||
			newStatus == OrderStatusCancelled
	case OrderStatusPreparing:
		return newStatus == OrderStatusReady ||
			newStatus == OrderStatusCancelled
	case OrderStatusReady:
		return newStatus == OrderStatusCompleted
	case OrderStatusCompleted, OrderStatusCancelled:
		return false // Terminal states
	default:
		return false
	}
}
