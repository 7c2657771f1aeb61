package post

import (
	"time"

	"gorm.io/gorm"

	"csdept/internal/domain/attachment"
	"csdept/internal/pkg/locale"
)

type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusArchived  Status = "archived"
)

var Statuses = []Status{StatusDraft, StatusPublished, StatusArchived}

func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusPublished, StatusArchived:
		return true
	}
	return false
}

type Category struct {
	ID        int64       `gorm:"primaryKey" json:"id"`
	Slug      string      `gorm:"size:100;uniqueIndex;not null" json:"slug"`
	Name      locale.Text `gorm:"serializer:json;type:text;not null" json:"name"`
	SortOrder int         `gorm:"not null;default:0" json:"sort_order"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

func (Category) TableName() string { return "post_categories" }

// Post is a bulletin board entry and currently the only attachable.
type Post struct {
	ID         int64       `gorm:"primaryKey"`
	Title      locale.Text `gorm:"serializer:json;type:text;not null"`
	Content    locale.Text `gorm:"serializer:json;type:text"`
	CategoryID *int64      `gorm:"index"`
	Category   *Category   `gorm:"foreignKey:CategoryID"`
	Status     Status      `gorm:"size:20;not null;default:draft;index"`
	Pinned     bool        `gorm:"not null;default:false"`
	PublishAt  *time.Time  `gorm:"index"`
	ExpireAt   *time.Time
	CreatedBy  *int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
	DeletedAt  gorm.DeletedAt `gorm:"index"`

	Attachments []attachment.Attachment `gorm:"polymorphic:Attachable;polymorphicValue:Post"`
}

func (Post) TableName() string { return "posts" }

func (p *Post) Owner() attachment.OwnerRef {
	return attachment.OwnerRef{Type: attachment.OwnerPost, ID: p.ID}
}

func (p *Post) IsTrashed() bool { return p.DeletedAt.Valid }

// IsVisible reports whether the public site shows p at now.
func (p *Post) IsVisible(now time.Time) bool {
	if p.Status != StatusPublished || p.IsTrashed() {
		return false
	}
	if p.PublishAt != nil && p.PublishAt.After(now) {
		return false
	}
	if p.ExpireAt != nil && !p.ExpireAt.After(now) {
		return false
	}
	return true
}
