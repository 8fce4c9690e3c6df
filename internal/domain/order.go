package domain

import "time"

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
)

// CanTransition reports whether the status change is allowed.
// PENDING is initial, CONFIRMED is terminal.
func CanTransition(from, to Status) bool {
	return from == StatusPending && to == StatusConfirmed
}

type User struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

type Product struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

type OrderItem struct {
	ID       int64   `json:"id"`
	OrderID  int64   `json:"order_id"`
	Quantity int     `json:"quantity"`
	Product  Product `json:"product"`
}

// Order is the denormalized shape served by the API: the user snapshot and
// the full item list with product snapshots are joined in at read time.
type Order struct {
	ID        int64       `json:"id"`
	UserID    int64       `json:"user_id"`
	Status    Status      `json:"status"`
	CreatedAt time.Time   `json:"created_at"`
	User      User        `json:"user"`
	Items     []OrderItem `json:"items"`
}

// OrderPage is one page of a filtered listing. Total counts the whole
// filtered set, not the page slice.
type OrderPage struct {
	Total int64   `json:"total"`
	Page  int     `json:"page"`
	Limit int     `json:"limit"`
	Data  []Order `json:"data"`
}

type NewOrderItem struct {
	ProductID int64 `json:"product_id" validate:"required,gte=1"`
	Quantity  int   `json:"quantity" validate:"required,gte=1"`
}

type NewOrder struct {
	UserID int64          `json:"user_id" validate:"required,gte=1"`
	Items  []NewOrderItem `json:"items" validate:"required,min=1,dive"`
}
