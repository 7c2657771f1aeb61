package contact

import (
	"net/url"
	"strings"

	"csdept/internal/pkg/pagination"
)

type Filter struct {
	Search string
	Status Status
	Page   pagination.Params
}

func ParseFilter(q url.Values) Filter {
	f := Filter{
		Search: strings.TrimSpace(q.Get("search")),
		Page:   pagination.Parse(q.Get("page"), q.Get("per_page")),
	}
	if s := Status(q.Get("status")); s.Valid() {
		f.Status = s
	}
	return f
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func likeTerm(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
}
