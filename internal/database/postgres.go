package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Satakshi24/order-management/internal/domain"
)

type Repo struct {
	pool *pgxpool.Pool
}

var _ domain.OrderRepository = (*Repo)(nil)

func New(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pgxpool new: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pgxpool ping: %w", err)
	}
	return pool, nil
}

func (r *Repo) CountOrders(ctx context.Context, f domain.Filter) (int64, error) {
	q := builder.Select("COUNT(*)").
		From("orders o").
		Join("users u ON u.id = o.user_id")
	if w := compileFilter(f); w != nil {
		q = q.Where(w)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count query: %w", err)
	}

	var total int64
	if err := r.pool.QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count orders: %w", err)
	}
	return total, nil
}

func (r *Repo) ListOrders(ctx context.Context, f domain.Filter, limit, offset int) ([]domain.Order, error) {
	q := builder.Select(
		"o.id", "o.user_id", "o.status", "o.created_at",
		"u.email", "u.name",
	).
		From("orders o").
		Join("users u ON u.id = o.user_id").
		OrderBy("o.created_at DESC", "o.id DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset))
	if w := compileFilter(f); w != nil {
		q = q.Where(w)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list query: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders := make([]domain.Order, 0, limit)
	ids := make([]int64, 0, limit)
	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.Status, &o.CreatedAt, &o.User.Email, &o.User.Name); err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		o.User.ID = o.UserID
		o.Items = []domain.OrderItem{}
		orders = append(orders, o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return orders, nil
	}

	if err := r.attachItems(ctx, orders, ids); err != nil {
		return nil, err
	}
	return orders, nil
}

// attachItems hydrates item lists with product snapshots for the given
// orders in a single query.
func (r *Repo) attachItems(ctx context.Context, orders []domain.Order, ids []int64) error {
	rows, err := r.pool.Query(ctx, `
		SELECT oi.id, oi.order_id, oi.quantity, p.id, p.name, p.price
		FROM order_items oi
		JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = ANY($1)
		ORDER BY oi.id
	`, ids)
	if err != nil {
		return fmt.Errorf("query order items: %w", err)
	}
	defer rows.Close()

	byID := make(map[int64]*domain.Order, len(orders))
	for i := range orders {
		byID[orders[i].ID] = &orders[i]
	}

	for rows.Next() {
		var it domain.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.Quantity, &it.Product.ID, &it.Product.Name, &it.Product.Price); err != nil {
			return fmt.Errorf("scan item row: %w", err)
		}
		if o, ok := byID[it.OrderID]; ok {
			o.Items = append(o.Items, it)
		}
	}
	return rows.Err()
}

func (r *Repo) GetOrder(ctx context.Context, id int64) (*domain.Order, error) {
	var o domain.Order
	err := r.pool.QueryRow(ctx, `
		SELECT o.id, o.user_id, o.status, o.created_at, u.email, u.name
		FROM orders o
		JOIN users u ON u.id = o.user_id
		WHERE o.id = $1
	`, id).Scan(&o.ID, &o.UserID, &o.Status, &o.CreatedAt, &o.User.Email, &o.User.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &domain.NotFoundError{Entity: "order", IDs: []int64{id}}
	}
	if err != nil {
		return nil, fmt.Errorf("get order %d: %w", id, err)
	}
	o.User.ID = o.UserID
	o.Items = []domain.OrderItem{}

	orders := []domain.Order{o}
	if err := r.attachItems(ctx, orders, []int64{id}); err != nil {
		return nil, err
	}
	return &orders[0], nil
}

// CreateOrder verifies the user and product references, then inserts the
// order row and its items in one transaction. Reference checks run before
// any write so a dangling id produces a precise NotFoundError instead of a
// foreign-key violation.
func (r *Repo) CreateOrder(ctx context.Context, in domain.NewOrder) (*domain.Order, error) {
	if err := r.checkUserExists(ctx, in.UserID); err != nil {
		return nil, err
	}
	if err := r.checkProductsExist(ctx, in.Items); err != nil {
		return nil, err
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var orderID int64
	err = tx.QueryRow(ctx, `
		INSERT INTO orders (user_id, status, created_at)
		VALUES ($1, $2, now())
		RETURNING id
	`, in.UserID, domain.StatusPending).Scan(&orderID)
	if err != nil {
		return nil, fmt.Errorf("insert order: %w", err)
	}

	batch := &pgx.Batch{}
	for _, it := range in.Items {
		batch.Queue(`
			INSERT INTO order_items (order_id, product_id, quantity)
			VALUES ($1, $2, $3)
		`, orderID, it.ProductID, it.Quantity)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return nil, fmt.Errorf("insert order items: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	return r.GetOrder(ctx, orderID)
}

func (r *Repo) UpdateOrderStatus(ctx context.Context, id int64, status domain.Status) error {
	tag, err := r.pool.Exec(ctx, `UPDATE orders SET status=$2 WHERE id=$1`, id, status)
	if err != nil {
		return fmt.Errorf("update order %d status: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return &domain.NotFoundError{Entity: "order", IDs: []int64{id}}
	}
	return nil
}

func (r *Repo) checkUserExists(ctx context.Context, userID int64) error {
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE id=$1)`, userID).Scan(&exists); err != nil {
		return fmt.Errorf("check user %d: %w", userID, err)
	}
	if !exists {
		return &domain.NotFoundError{Entity: "user", IDs: []int64{userID}}
	}
	return nil
}

func (r *Repo) checkProductsExist(ctx context.Context, items []domain.NewOrderItem) error {
	want := make(map[int64]struct{}, len(items))
	ids := make([]int64, 0, len(items))
	for _, it := range items {
		if _, seen := want[it.ProductID]; !seen {
			want[it.ProductID] = struct{}{}
			ids = append(ids, it.ProductID)
		}
	}

	rows, err := r.pool.Query(ctx, `SELECT id FROM products WHERE id = ANY($1)`, ids)
	if err != nil {
		return fmt.Errorf("check products: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return fmt.Errorf("scan product id: %w", err)
		}
		delete(want, id)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	if len(want) > 0 {
		missing := make([]int64, 0, len(want))
		for _, id := range ids {
			if _, ok := want[id]; ok {
				missing = append(missing, id)
			}
		}
		return &domain.NotFoundError{Entity: "product", IDs: missing}
	}
	return nil
}
