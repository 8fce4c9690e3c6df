package observability

import "sync"

// InMem aggregates counters in process memory. There is no exporter wired;
// the seam exists so one can be attached without touching callers.
type InMem struct {
	mu sync.Mutex

	CacheHits   uint64
	CacheMisses uint64

	Lists       uint64
	Creates     uint64
	ConfirmOK   uint64
	ConfirmFail uint64

	HTTPByStatus map[int]uint64
}

func NewInMem() *InMem {
	return &InMem{HTTPByStatus: make(map[int]uint64)}
}

func (m *InMem) ObserveList(_ string, _ float64) {
	m.mu.Lock()
	m.Lists++
	m.mu.Unlock()
}

func (m *InMem) ObserveCreate(_ float64) {
	m.mu.Lock()
	m.Creates++
	m.mu.Unlock()
}

func (m *InMem) ObserveConfirm(ok bool) {
	m.mu.Lock()
	if ok {
		m.ConfirmOK++
	} else {
		m.ConfirmFail++
	}
	m.mu.Unlock()
}

func (m *InMem) ObserveHTTP(_, _ string, status int, _ float64) {
	m.mu.Lock()
	m.HTTPByStatus[status]++
	m.mu.Unlock()
}

func (m *InMem) IncCacheHit() {
	m.mu.Lock()
	m.CacheHits++
	m.mu.Unlock()
}

func (m *InMem) IncCacheMiss() {
	m.mu.Lock()
	m.CacheMisses++
	m.mu.Unlock()
}
