package attachment

import "time"

type Response struct {
	ID             int64      `json:"id"`
	AttachableType string     `json:"attachable_type"`
	AttachableID   int64      `json:"attachable_id"`
	Type           Type       `json:"type"`
	Title          string     `json:"title"`
	FileURL        *string    `json:"file_url"`
	ExternalURL    *string    `json:"external_url"`
	URL            string     `json:"url"`
	MimeType       *string    `json:"mime_type"`
	FileSize       *int64     `json:"file_size"`
	AltText        *string    `json:"alt_text"`
	AltTextEn      *string    `json:"alt_text_en"`
	SortOrder      int        `json:"sort_order"`
	IsTrashed      bool       `json:"is_trashed"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	DeletedAt      *time.Time `json:"deleted_at"`
}

func (s *Service) ToResponse(a *Attachment) Response {
	r := Response{
		ID:             a.ID,
		AttachableType: a.AttachableType,
		AttachableID:   a.AttachableID,
		Type:           a.Type,
		Title:          deref(a.Title),
		FileURL:        a.FileURL,
		ExternalURL:    a.ExternalURL,
		URL:            s.ResolveURL(a),
		MimeType:       a.MimeType,
		FileSize:       a.FileSize,
		AltText:        a.AltText,
		AltTextEn:      a.AltTextEn,
		SortOrder:      a.SortOrder,
		IsTrashed:      a.IsTrashed(),
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
	if a.DeletedAt.Valid {
		r.DeletedAt = ptr(a.DeletedAt.Time)
	}
	return r
}

func (s *Service) ToResponses(items []Attachment) []Response {
	out := make([]Response, len(items))
	for i := range items {
		out[i] = s.ToResponse(&items[i])
	}
	return out
}

type CreateLinkRequest struct {
	AttachableType string `json:"attachable_type" validate:"required"`
	AttachableID   int64  `json:"attachable_id" validate:"required,gt=0"`
	LinkInput
}
