package cache

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/Satakshi24/order-management/internal/domain"
)

// Orders caches single denormalized orders by id for the GET-by-id path.
type Orders struct {
	lru *lru.Cache[int64, domain.Order]
}

func NewOrders(size int) (*Orders, error) {
	c, err := lru.New[int64, domain.Order](size)
	if err != nil {
		return nil, err
	}
	return &Orders{lru: c}, nil
}

func (c *Orders) Get(id int64) (*domain.Order, bool) {
	order, ok := c.lru.Get(id)
	if !ok {
		return nil, false
	}
	return &order, true
}

func (c *Orders) Set(order *domain.Order) {
	c.lru.Add(order.ID, *order)
}

// Remove drops a cached order, e.g. after its status changes.
func (c *Orders) Remove(id int64) {
	c.lru.Remove(id)
}
