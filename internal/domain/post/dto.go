package post

import (
	"time"

	"csdept/internal/domain/attachment"
	"csdept/internal/pkg/locale"
)

type Response struct {
	ID         int64       `json:"id"`
	Title      locale.Text `json:"title"`
	Content    locale.Text `json:"content"`
	CategoryID *int64      `json:"category_id"`
	Category   *Category   `json:"category,omitempty"`
	Status     Status      `json:"status"`
	Pinned     bool        `json:"pinned"`
	PublishAt  *time.Time  `json:"publish_at"`
	ExpireAt   *time.Time  `json:"expire_at"`
	CreatedBy  *int64      `json:"created_by"`
	IsVisible  bool        `json:"is_visible"`
	IsTrashed  bool        `json:"is_trashed"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
	DeletedAt  *time.Time  `json:"deleted_at"`
}

func (s *Service) ToResponse(p *Post) Response {
	r := Response{
		ID:         p.ID,
		Title:      p.Title,
		Content:    p.Content,
		CategoryID: p.CategoryID,
		Category:   p.Category,
		Status:     p.Status,
		Pinned:     p.Pinned,
		PublishAt:  p.PublishAt,
		ExpireAt:   p.ExpireAt,
		CreatedBy:  p.CreatedBy,
		IsVisible:  p.IsVisible(s.now()),
		IsTrashed:  p.IsTrashed(),
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
	if p.DeletedAt.Valid {
		t := p.DeletedAt.Time
		r.DeletedAt = &t
	}
	return r
}

func (s *Service) ToResponses(items []Post) []Response {
	out := make([]Response, len(items))
	for i := range items {
		out[i] = s.ToResponse(&items[i])
	}
	return out
}

type DetailResponse struct {
	Response
	Attachments        []attachment.Response `json:"attachments"`
	TrashedAttachments int                   `json:"trashed_attachments"`
}

func (s *Service) ToDetailResponse(d *Detail) DetailResponse {
	return DetailResponse{
		Response:           s.ToResponse(d.Post),
		Attachments:        s.attachments.ToResponses(d.Attachments),
		TrashedAttachments: d.TrashedAttachments(),
	}
}

type PublicCategory struct {
	ID   int64  `json:"id"`
	Slug string `json:"slug"`
	Name string `json:"name"`
}

type PublicSummary struct {
	ID          int64           `json:"id"`
	Title       string          `json:"title"`
	Category    *PublicCategory `json:"category"`
	Pinned      bool            `json:"pinned"`
	PublishedAt time.Time       `json:"published_at"`
}

type PublicAttachment struct {
	ID       int64           `json:"id"`
	Type     attachment.Type `json:"type"`
	Title    string          `json:"title"`
	URL      string          `json:"url"`
	MimeType string          `json:"mime_type,omitempty"`
	FileSize int64           `json:"file_size,omitempty"`
	AltText  string          `json:"alt_text,omitempty"`
}

type PublicDetail struct {
	PublicSummary
	ContentHTML string             `json:"content_html"`
	Attachments []PublicAttachment `json:"attachments"`
}

func (s *Service) ToPublicSummary(p *Post, loc string) PublicSummary {
	out := PublicSummary{
		ID:          p.ID,
		Title:       p.Title.Get(loc),
		Pinned:      p.Pinned,
		PublishedAt: p.CreatedAt,
	}
	if p.PublishAt != nil {
		out.PublishedAt = *p.PublishAt
	}
	if p.Category != nil {
		out.Category = &PublicCategory{
			ID:   p.Category.ID,
			Slug: p.Category.Slug,
			Name: p.Category.Name.Get(loc),
		}
	}
	return out
}

func (s *Service) ToPublicSummaries(items []Post, loc string) []PublicSummary {
	out := make([]PublicSummary, len(items))
	for i := range items {
		out[i] = s.ToPublicSummary(&items[i], loc)
	}
	return out
}

func (s *Service) ToPublicDetail(p *Post, loc string) (PublicDetail, error) {
	html, err := s.RenderContent(p, loc)
	if err != nil {
		return PublicDetail{}, err
	}
	out := PublicDetail{
		PublicSummary: s.ToPublicSummary(p, loc),
		ContentHTML:   html,
		Attachments:   make([]PublicAttachment, 0, len(p.Attachments)),
	}
	for i := range p.Attachments {
		a := &p.Attachments[i]
		pa := PublicAttachment{
			ID:      a.ID,
			Type:    a.Type,
			Title:   value(a.Title),
			URL:     s.attachments.ResolveURL(a),
			AltText: altText(a, loc),
		}
		if a.MimeType != nil {
			pa.MimeType = *a.MimeType
		}
		if a.FileSize != nil {
			pa.FileSize = *a.FileSize
		}
		out.Attachments = append(out.Attachments, pa)
	}
	return out, nil
}

func altText(a *attachment.Attachment, loc string) string {
	if loc == locale.En && value(a.AltTextEn) != "" {
		return *a.AltTextEn
	}
	if v := value(a.AltText); v != "" {
		return v
	}
	return value(a.AltTextEn)
}

func value(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
