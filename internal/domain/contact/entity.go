package contact

import (
	"database/sql"
	"time"
)

type Status string

const (
	StatusNew     Status = "new"
	StatusRead    Status = "read"
	StatusReplied Status = "replied"
	StatusSpam    Status = "spam"
)

var Statuses = []Status{StatusNew, StatusRead, StatusReplied, StatusSpam}

func (s Status) Valid() bool {
	switch s {
	case StatusNew, StatusRead, StatusReplied, StatusSpam:
		return true
	}
	return false
}

// Message is a visitor's contact form submission. The table is created by
// gorm auto-migration and queried through sqlx.
type Message struct {
	ID        int64          `db:"id" gorm:"primaryKey"`
	Name      string         `db:"name" gorm:"size:100;not null"`
	Email     string         `db:"email" gorm:"size:255;not null;index"`
	Subject   string         `db:"subject" gorm:"size:255;not null"`
	Message   string         `db:"message" gorm:"type:text;not null"`
	Status    Status         `db:"status" gorm:"size:20;not null;default:new;index"`
	IPAddress sql.NullString `db:"ip_address" gorm:"size:45"`
	UserAgent sql.NullString `db:"user_agent" gorm:"size:512"`
	ReadAt    sql.NullTime   `db:"read_at"`
	CreatedAt time.Time      `db:"created_at" gorm:"index"`
	UpdatedAt time.Time      `db:"updated_at"`
}

func (Message) TableName() string { return "contact_messages" }

func (m *Message) IsNew() bool {
	return m.Status == StatusNew
}
