// Package pagination implements offset pagination with an explicit, stable
// sort key contract: repositories order by creation time (events: start time)
// with the id as tiebreak, so paging with increasing skip partitions the
// filtered set with no duplicates and no gaps.
package pagination

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

const (
	DefaultLimit = 100
	MaxLimit     = 1000
)

type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// Page is a validated skip/limit pair. Construct via New or Parse so the
// clamping invariants hold.
type Page struct {
	Skip  int
	Limit int
}

// New clamps limit into [1, MaxLimit]; a zero limit means "unset" and gets
// DefaultLimit. A negative skip is treated as 0.
func New(skip, limit int) Page {
	if skip < 0 {
		skip = 0
	}
	switch {
	case limit == 0:
		limit = DefaultLimit
	case limit < 1:
		limit = 1
	case limit > MaxLimit:
		limit = MaxLimit
	}
	return Page{Skip: skip, Limit: limit}
}

// Parse reads skip and limit query parameters. A missing limit defaults to
// DefaultLimit; an explicit limit is clamped into [1, MaxLimit]. Skip must be
// a non-negative integer.
func Parse(values url.Values) (Page, error) {
	skip := 0
	if raw := strings.TrimSpace(values.Get("skip")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return Page{}, FieldError{Field: "skip", Message: "must be an integer"}
		}
		if parsed < 0 {
			return Page{}, FieldError{Field: "skip", Message: "must be >= 0"}
		}
		skip = parsed
	}

	limit := DefaultLimit
	if raw := strings.TrimSpace(values.Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return Page{}, FieldError{Field: "limit", Message: "must be an integer"}
		}
		limit = parsed
	}

	return New(skip, limit), nil
}
