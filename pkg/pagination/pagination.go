// Package pagination reads page parameters from requests and pages
// in-memory lists.
package pagination

import (
	"net/http"
	"strconv"
)

const (
	DefaultPerPage = 20
	MaxPerPage     = 100
)

// Params holds pagination parameters extracted from query strings.
type Params struct {
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
	Offset  int `json:"-"`
}

// DefaultParams returns the first page with the default page size.
func DefaultParams() Params {
	return Params{Page: 1, PerPage: DefaultPerPage}
}

// FromRequest extracts pagination parameters from an HTTP request. Values
// that are not positive integers, or a per_page above MaxPerPage, fall back
// to the defaults.
func FromRequest(r *http.Request) Params {
	p := DefaultParams()
	q := r.URL.Query()

	if v, ok := positive(q.Get("page")); ok {
		p.Page = v
	}
	if v, ok := positive(q.Get("per_page")); ok && v <= MaxPerPage {
		p.PerPage = v
	}

	p.Offset = (p.Page - 1) * p.PerPage
	return p
}

func positive(raw string) (int, bool) {
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

// Slice returns the window of items selected by p. A page past the end is
// empty, never nil.
func Slice[T any](items []T, p Params) []T {
	start := min(max(p.Offset, 0), len(items))
	end := min(start+p.PerPage, len(items))
	out := make([]T, end-start)
	copy(out, items[start:end])
	return out
}

// TotalPages returns how many pages of perPage hold total items.
func TotalPages(total, perPage int) int {
	if perPage <= 0 || total <= 0 {
		return 0
	}
	return (total + perPage - 1) / perPage
}
