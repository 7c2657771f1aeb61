package post

import (
	"net/url"
	"strconv"
	"strings"

	"csdept/internal/pkg/pagination"
	"csdept/internal/pkg/trashed"
)

// Filter narrows the admin post listing.
type Filter struct {
	Search     string
	Status     Status
	CategoryID int64
	Trashed    trashed.Scope
	Page       pagination.Params
}

func ParseFilter(q url.Values) Filter {
	f := Filter{
		Search:  strings.TrimSpace(q.Get("search")),
		Trashed: trashed.Parse(q.Get("trashed")),
		Page:    pagination.Parse(q.Get("page"), q.Get("per_page")),
	}
	if s := Status(q.Get("status")); s.Valid() {
		f.Status = s
	}
	if id, err := strconv.ParseInt(q.Get("category_id"), 10, 64); err == nil && id > 0 {
		f.CategoryID = id
	}
	return f
}

type AppliedFilters struct {
	Search     string `json:"search"`
	Status     string `json:"status"`
	CategoryID int64  `json:"category_id,omitempty"`
	Trashed    string `json:"trashed"`
	PerPage    int    `json:"per_page"`
}

func (f Filter) Applied() AppliedFilters {
	return AppliedFilters{
		Search:     f.Search,
		Status:     string(f.Status),
		CategoryID: f.CategoryID,
		Trashed:    f.Trashed.QueryValue(),
		PerPage:    f.Page.Limit(),
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func likeTerm(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
}
