// Package trashed models the soft-delete filter of admin listings as an
// explicit three-state scope.
package trashed

import "gorm.io/gorm"

type Scope int

const (
	Active Scope = iota
	Only
	Any
)

// Parse maps the ?trashed= query value. "with" and "only" are the only
// recognised values; anything else selects active rows.
func Parse(v string) Scope {
	switch v {
	case "with":
		return Any
	case "only":
		return Only
	default:
		return Active
	}
}

// QueryValue is the inverse of Parse.
func (s Scope) QueryValue() string {
	switch s {
	case Any:
		return "with"
	case Only:
		return "only"
	default:
		return ""
	}
}

// Apply narrows db to the scope. gorm's default soft-delete clause already
// gives Active. Queries must not join another soft-deletable table.
func (s Scope) Apply(db *gorm.DB) *gorm.DB {
	switch s {
	case Any:
		return db.Unscoped()
	case Only:
		return db.Unscoped().Where("deleted_at IS NOT NULL")
	default:
		return db
	}
}

type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Options are the choices offered by admin filter dropdowns.
var Options = []Option{
	{Value: "", Label: "Active"},
	{Value: "with", Label: "With trashed"},
	{Value: "only", Label: "Only trashed"},
}
