package domain

import "time"

// CartItem is one line of the cart. The product and dimension are copied at
// the time the item is added.
type CartItem struct {
	ProductID   string           `json:"productId"`
	Product     Product          `json:"product"`
	DimensionID string           `json:"dimensionId"`
	Dimension   ProductDimension `json:"dimension"`
	Quantity    int              `json:"quantity"`
}

// UnitPrice is the price charged per unit of this line
func (i CartItem) UnitPrice() float64 {
	return i.Product.PriceFor(i.Dimension)
}

// OrderStatus is the lifecycle stage of an order
type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
)

// Valid reports whether s is a known status
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderProcessing, OrderShipped, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

// Order is the shape of a placed order. Nothing creates orders yet.
type Order struct {
	ID              string      `json:"id"`
	Items           []CartItem  `json:"items"`
	Status          OrderStatus `json:"status"`
	Total           float64     `json:"total"`
	CustomerName    string      `json:"customerName"`
	CustomerEmail   string      `json:"customerEmail"`
	CustomerPhone   string      `json:"customerPhone"`
	ShippingAddress string      `json:"shippingAddress"`
	Notes           string      `json:"notes,omitempty"`
	CreatedAt       time.Time   `json:"createdAt"`
}
