package domain

import (
	"context"
)

type OrderRepository interface {
	CountOrders(ctx context.Context, f Filter) (int64, error)
	ListOrders(ctx context.Context, f Filter, limit, offset int) ([]Order, error)
	GetOrder(ctx context.Context, id int64) (*Order, error)
	CreateOrder(ctx context.Context, in NewOrder) (*Order, error)
	UpdateOrderStatus(ctx context.Context, id int64, status Status) error
}
