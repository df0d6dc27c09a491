package model

import "time"

// OrderStatus is the lifecycle state of a placed order.
type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusProcessing OrderStatus = "processing"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
)

// Valid reports whether s is one of the five known statuses.
//
// Note the transition graph is deliberately unconstrained: an admin may set
// any valid status from any current status (delivered → pending included).
// Only unknown strings are rejected.
func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// Address is the shipping destination for an order. All four fields are
// required at checkout.
type Address struct {
	Street     string `json:"street"     db:"street"`
	City       string `json:"city"       db:"city"`
	PostalCode string `json:"postalCode" db:"postal_code"`
	Country    string `json:"country"    db:"country"`
}

// OrderItem is one purchased line, copied verbatim from the cart at
// checkout. It never changes after the order is created.
type OrderItem struct {
	ID        string  `json:"id"        db:"id"`
	ProductID string  `json:"productId" db:"product_id"`
	Name      string  `json:"name"      db:"name"`
	Price     float64 `json:"price"     db:"price"`
	Image     string  `json:"image"     db:"image"`
	Quantity  int     `json:"quantity"  db:"quantity"`
	Size      string  `json:"size"      db:"size"`
}

// Order is an immutable snapshot of a completed checkout.
//
// IMMUTABILITY CONTRACT:
// Items and TotalAmount are fixed when the order is created — later catalog
// price changes do not touch placed orders. The ONLY field that changes
// afterwards is Status, and only through the admin-gated status update.
//
// UserEmail/UserName are filled only by the admin listing (joined from the
// users table) so the dashboard can show who placed each order; they are
// empty on the customer-facing read path.
type Order struct {
	ID          string      `json:"id"                  db:"id"`
	UserID      string      `json:"userId"              db:"user_id"`
	Items       []OrderItem `json:"items"`
	TotalAmount float64     `json:"totalAmount"         db:"total_amount"`
	Address     Address     `json:"address"`
	Phone       string      `json:"phone"               db:"phone"`
	Status      OrderStatus `json:"status"              db:"status"`
	UserEmail   string      `json:"userEmail,omitempty" db:"user_email"`
	UserName    string      `json:"userName,omitempty"  db:"user_name"`
	CreatedAt   time.Time   `json:"createdAt"           db:"created_at"`
}
