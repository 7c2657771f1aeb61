package attachment

import (
	"net/url"
	"strconv"
	"strings"

	"csdept/internal/pkg/pagination"
	"csdept/internal/pkg/trashed"
)

// Filter is the normalized form of the admin listing query. Invalid values are
// dropped rather than rejected.
type Filter struct {
	Search         string
	Type           Type
	AttachableType string
	AttachableID   int64
	Trashed        trashed.Scope
	Page           pagination.Params
}

// ParseFilter reads search, type, attachable_type, attachable_id, trashed,
// page and per_page from q.
func ParseFilter(q url.Values) Filter {
	f := Filter{
		Search:         strings.TrimSpace(q.Get("search")),
		AttachableType: strings.TrimSpace(q.Get("attachable_type")),
		Trashed:        trashed.Parse(q.Get("trashed")),
		Page:           pagination.Parse(q.Get("page"), q.Get("per_page")),
	}
	if t := Type(q.Get("type")); t.Valid() {
		f.Type = t
	}
	if id, err := strconv.ParseInt(strings.TrimSpace(q.Get("attachable_id")), 10, 64); err == nil && id > 0 {
		f.AttachableID = id
	}
	return f
}

// AppliedFilters echoes the filter back to the client so the form can be
// re-populated.
type AppliedFilters struct {
	Search         string `json:"search"`
	Type           string `json:"type"`
	AttachableType string `json:"attachable_type"`
	AttachableID   *int64 `json:"attachable_id"`
	Trashed        string `json:"trashed"`
	PerPage        int    `json:"per_page"`
}

func (f Filter) Applied() AppliedFilters {
	out := AppliedFilters{
		Search:         f.Search,
		Type:           string(f.Type),
		AttachableType: f.AttachableType,
		Trashed:        f.Trashed.QueryValue(),
		PerPage:        f.Page.Limit(),
	}
	if f.AttachableID > 0 {
		out.AttachableID = ptr(f.AttachableID)
	}
	return out
}

type FilterOptions struct {
	Types           []Type           `json:"types"`
	AttachableTypes []string         `json:"attachable_types"`
	Trashed         []trashed.Option `json:"trashed"`
	PerPage         []int            `json:"per_page"`
}

// escapeLike escapes LIKE wildcards so the term matches literally. Used with
// ESCAPE '\'.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func lower(s string) string { return strings.ToLower(s) }
