package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Satakshi24/order-management/internal/domain"
	"github.com/Satakshi24/order-management/internal/pkg/breaker"
)

// ListingPrefix covers every cached listing variant; a write to the orders
// table invalidates the whole prefix.
const ListingPrefix = "orders:list:"

// ListingKey derives the deterministic key for one listing variant. The
// search term must already be normalized; empty is a valid component.
func ListingKey(page, limit int, term string) string {
	return fmt.Sprintf("%sp=%d:l=%d:q=%s", ListingPrefix, page, limit, term)
}

// NormalizeTerm canonicalizes a search term for both the cache key and the
// store filter.
func NormalizeTerm(term string) string {
	return strings.ToLower(strings.TrimSpace(term))
}

// Listings is the read-through cache in front of the listing query. Every
// substrate failure degrades to a miss or a no-op: the store stays the
// source of truth and cache outages never fail a request. A circuit breaker
// keeps a dead substrate from adding latency to every call.
type Listings struct {
	store  Store
	brk    *breaker.Breaker
	ttl    time.Duration
	logger *zap.Logger
}

func NewListings(store Store, brk *breaker.Breaker, ttl time.Duration, logger *zap.Logger) *Listings {
	return &Listings{
		store:  store,
		brk:    brk,
		ttl:    ttl,
		logger: logger,
	}
}

func (l *Listings) Get(ctx context.Context, page, limit int, term string) (*domain.OrderPage, bool) {
	if l.brk.Allow() != nil {
		return nil, false
	}

	raw, err := l.store.Get(ctx, ListingKey(page, limit, term))
	if errors.Is(err, ErrMiss) {
		l.brk.Success()
		return nil, false
	}
	if err != nil {
		l.brk.Failure()
		l.logger.Warn("listing cache get failed, falling through to store", zap.Error(err))
		return nil, false
	}
	l.brk.Success()

	var p domain.OrderPage
	if err := json.Unmarshal(raw, &p); err != nil {
		l.logger.Warn("corrupt listing cache entry, treating as miss", zap.Error(err))
		return nil, false
	}
	return &p, true
}

func (l *Listings) Set(ctx context.Context, term string, p *domain.OrderPage) {
	if l.brk.Allow() != nil {
		return
	}

	raw, err := json.Marshal(p)
	if err != nil {
		l.logger.Warn("marshal listing page", zap.Error(err))
		return
	}
	if err := l.store.Set(ctx, ListingKey(p.Page, p.Limit, term), raw, l.ttl); err != nil {
		l.brk.Failure()
		l.logger.Warn("listing cache set failed", zap.Error(err))
		return
	}
	l.brk.Success()
}

// InvalidateAll drops every cached listing variant. A concurrent read may
// still race in an old entry; staleness stays bounded by the TTL either way.
func (l *Listings) InvalidateAll(ctx context.Context) {
	if l.brk.Allow() != nil {
		return
	}

	keys, err := l.store.KeysWithPrefix(ctx, ListingPrefix)
	if err != nil {
		l.brk.Failure()
		l.logger.Warn("listing cache scan failed", zap.Error(err))
		return
	}
	if err := l.store.DeleteMany(ctx, keys); err != nil {
		l.brk.Failure()
		l.logger.Warn("listing cache invalidation failed", zap.Error(err), zap.Int("keys", len(keys)))
		return
	}
	l.brk.Success()
	l.logger.Debug("listing cache invalidated", zap.Int("keys", len(keys)))
}
