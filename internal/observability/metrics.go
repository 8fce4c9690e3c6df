package observability

type Metrics interface {
	ObserveList(source string, durMs float64)
	ObserveCreate(durMs float64)
	ObserveConfirm(ok bool)
	ObserveHTTP(method, route string, status int, durMs float64)
	IncCacheHit()
	IncCacheMiss()
}

type Noop struct{}

func NewNoop() Noop { return Noop{} }

func (Noop) ObserveList(string, float64)              {}
func (Noop) ObserveCreate(float64)                    {}
func (Noop) ObserveConfirm(bool)                      {}
func (Noop) ObserveHTTP(string, string, int, float64) {}
func (Noop) IncCacheHit()                             {}
func (Noop) IncCacheMiss()                            {}
