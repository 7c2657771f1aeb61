package attachment

import (
	"time"

	"gorm.io/gorm"
)

type Type string

const (
	TypeImage    Type = "image"
	TypeDocument Type = "document"
	TypeLink     Type = "link"
)

// Types lists every attachment type in display order.
var Types = []Type{TypeImage, TypeDocument, TypeLink}

func (t Type) Valid() bool {
	switch t {
	case TypeImage, TypeDocument, TypeLink:
		return true
	}
	return false
}

// Attachment is a file or link owned by some attachable entity. The owner is a
// (type, id) pair with no foreign key; see Registry.
type Attachment struct {
	ID             int64          `gorm:"primaryKey" json:"id"`
	AttachableType string         `gorm:"size:64;not null;index:idx_attachments_attachable,priority:1" json:"attachable_type"`
	AttachableID   int64          `gorm:"not null;index:idx_attachments_attachable,priority:2" json:"attachable_id"`
	Type           Type           `gorm:"size:16;not null;index" json:"type"`
	Title          *string        `gorm:"size:255" json:"title"`
	FileURL        *string        `gorm:"size:1024" json:"file_url"`
	ExternalURL    *string        `gorm:"size:2048" json:"external_url"`
	MimeType       *string        `gorm:"size:255" json:"mime_type"`
	FileSize       *int64         `json:"file_size"`
	AltText        *string        `gorm:"size:255" json:"alt_text"`
	AltTextEn      *string        `gorm:"size:255" json:"alt_text_en"`
	SortOrder      int            `gorm:"not null;default:0" json:"sort_order"`
	CreatedAt      time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"deleted_at"`
}

func (Attachment) TableName() string { return "attachments" }

func (a *Attachment) Owner() OwnerRef {
	return OwnerRef{Type: OwnerType(a.AttachableType), ID: a.AttachableID}
}

func (a *Attachment) IsTrashed() bool {
	return a.DeletedAt.Valid
}

// URL returns the stored file path when present, otherwise the external URL.
// Rows written through this package never carry both.
func (a *Attachment) URL() string {
	if s := deref(a.FileURL); s != "" {
		return s
	}
	return deref(a.ExternalURL)
}

// StoredPath is the storage path of a managed file, or "" for links.
func (a *Attachment) StoredPath() string {
	return deref(a.FileURL)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func ptr[T any](v T) *T { return &v }
