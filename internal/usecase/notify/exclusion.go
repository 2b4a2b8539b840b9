package notify

import "errnotice/internal/infra/errview"

// ExclusionFilter suppresses notices for configured error types. Only the
// outermost error's exact type name is compared: a wrapper around an excluded
// error is still reported.
type ExclusionFilter struct {
	names map[string]struct{}
}

// NewExclusionFilter builds a filter from fully-qualified type names such as
// "*errors.errorString" or "*myapp/internal/store.NotFoundError".
func NewExclusionFilter(names []string) *ExclusionFilter {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		if n != "" {
			set[n] = struct{}{}
		}
	}
	return &ExclusionFilter{names: set}
}

// Excluded reports whether err must not be reported.
func (f *ExclusionFilter) Excluded(err error) bool {
	if f == nil || err == nil || len(f.names) == 0 {
		return false
	}
	_, ok := f.names[errview.TypeName(err)]
	return ok
}

// Len returns the number of excluded type names.
func (f *ExclusionFilter) Len() int {
	if f == nil {
		return 0
	}
	return len(f.names)
}
