package activity

import "time"

// Event types pushed to the admin feed.
const (
	AttachmentCreated  = "attachment.created"
	AttachmentTrashed  = "attachment.trashed"
	AttachmentRestored = "attachment.restored"
	AttachmentDeleted  = "attachment.deleted"

	PostCreated  = "post.created"
	PostUpdated  = "post.updated"
	PostTrashed  = "post.trashed"
	PostRestored = "post.restored"
	PostDeleted  = "post.deleted"

	ContactReceived = "contact.received"
)

type Event struct {
	Type      string    `json:"type"`
	Subject   string    `json:"subject"`
	SubjectID int64     `json:"subject_id"`
	ActorID   int64     `json:"actor_id,omitempty"`
	At        time.Time `json:"at"`
}

// Publisher accepts events without blocking the caller.
type Publisher interface {
	Publish(e Event)
}

type nop struct{}

func (nop) Publish(Event) {}

// Nop discards events.
var Nop Publisher = nop{}
