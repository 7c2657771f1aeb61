// Package pagination holds the page/per_page arithmetic shared by the admin
// listings. Out-of-range input is clamped, never rejected.
package pagination

import (
	"math"
	"strconv"
)

const (
	DefaultPerPage = 10
	DefaultPage    = 1
)

// PerPageOptions are the sizes offered by the admin UI. Any positive value is
// still accepted.
var PerPageOptions = []int{10, 20, 50}

type Params struct {
	Page    int
	PerPage int
}

// Meta mirrors the paginator fields the front end reads.
type Meta struct {
	CurrentPage int   `json:"current_page"`
	LastPage    int   `json:"last_page"`
	PerPage     int   `json:"per_page"`
	Total       int64 `json:"total"`
}

// Parse reads raw query values. Missing or unparsable values fall back to the
// defaults; parsed values below 1 are raised to 1.
func Parse(page, perPage string) Params {
	p := Params{Page: DefaultPage, PerPage: DefaultPerPage}
	if v, err := strconv.Atoi(page); err == nil {
		p.Page = v
	}
	if v, err := strconv.Atoi(perPage); err == nil {
		p.PerPage = v
	}
	return p.Normalize()
}

func (p Params) Normalize() Params {
	p.Page = max(1, p.Page)
	p.PerPage = max(1, p.PerPage)
	return p
}

// Offset saturates at math.MaxInt, so absurd pages come back empty instead of
// wrapping to a negative offset.
func (p Params) Offset() int {
	n := p.Normalize()
	if n.Page-1 > math.MaxInt/n.PerPage {
		return math.MaxInt
	}
	return (n.Page - 1) * n.PerPage
}

func (p Params) Limit() int {
	return p.Normalize().PerPage
}

func NewMeta(p Params, total int64) Meta {
	n := p.Normalize()
	per := int64(n.PerPage)
	last := int(total / per)
	if total%per != 0 {
		last++
	}
	if last < 1 {
		last = 1
	}
	return Meta{
		CurrentPage: n.Page,
		LastPage:    last,
		PerPage:     n.PerPage,
		Total:       total,
	}
}
