package database

import (
	sq "github.com/Masterminds/squirrel"

	"github.com/Satakshi24/order-management/internal/domain"
)

// Postgres-style placeholders ($1, $2, ...).
var builder = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// compileFilter translates a listing filter into a WHERE predicate over the
// aliased listing query (orders o JOIN users u). A search term matches an
// order when the user's email contains it or at least one of its items'
// product names contains it, case-insensitively. NoFilter compiles to nil.
func compileFilter(f domain.Filter) sq.Sqlizer {
	switch v := f.(type) {
	case domain.SearchFilter:
		pat := "%" + v.Term + "%"
		return sq.Or{
			sq.ILike{"u.email": pat},
			sq.Expr(
				`EXISTS (SELECT 1 FROM order_items oi JOIN products p ON p.id = oi.product_id WHERE oi.order_id = o.id AND p.name ILIKE ?)`,
				pat,
			),
		}
	default:
		return nil
	}
}
