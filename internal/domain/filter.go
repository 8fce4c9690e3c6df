package domain

// Filter is a sealed variant describing which orders a listing covers.
// The store compiles it to its own query form.
type Filter interface {
	isFilter()
}

// NoFilter matches every order.
type NoFilter struct{}

// SearchFilter matches orders whose user email or any item's product name
// contains Term, case-insensitively.
type SearchFilter struct {
	Term string
}

func (NoFilter) isFilter()     {}
func (SearchFilter) isFilter() {}

// FilterFor returns the variant for a normalized search term.
func FilterFor(term string) Filter {
	if term == "" {
		return NoFilter{}
	}
	return SearchFilter{Term: term}
}
