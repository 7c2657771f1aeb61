package post

import (
	"encoding/json"
	"mime/multipart"
	"strconv"
	"strings"
	"time"

	"csdept/internal/domain/attachment"
	"csdept/internal/pkg/locale"
	"csdept/internal/pkg/validator"
)

// FormRequest is the multipart body of the admin create and update forms.
// Dates are RFC3339; links is a JSON array of {title, url}.
type FormRequest struct {
	TitleZh    string `form:"title_zh" validate:"max=255"`
	TitleEn    string `form:"title_en" validate:"max=255"`
	ContentZh  string `form:"content_zh"`
	ContentEn  string `form:"content_en"`
	CategoryID string `form:"category_id"`
	Status     string `form:"status" validate:"omitempty,oneof=draft published archived"`
	Pinned     string `form:"pinned"`
	PublishAt  string `form:"publish_at"`
	ExpireAt   string `form:"expire_at"`
	Links      string `form:"links"`
}

// Input converts the form into service input. Field errors are keyed by form
// field name.
func (r FormRequest) Input(files []*multipart.FileHeader) (Input, map[string]string) {
	fields := validator.Validate(r)
	if fields == nil {
		fields = map[string]string{}
	}

	in := Input{
		Title:   locale.Text{locale.ZhTW: r.TitleZh, locale.En: r.TitleEn},
		Content: locale.Text{locale.ZhTW: r.ContentZh, locale.En: r.ContentEn},
		Status:  Status(strings.TrimSpace(r.Status)),
		Files:   files,
	}

	if v := strings.TrimSpace(r.CategoryID); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			fields["category_id"] = "invalid"
		} else {
			in.CategoryID = &id
		}
	}
	if v := strings.TrimSpace(r.Pinned); v != "" {
		pinned, err := strconv.ParseBool(v)
		if err != nil {
			fields["pinned"] = "invalid"
		}
		in.Pinned = pinned
	}

	var err error
	if in.PublishAt, err = parseTime(r.PublishAt); err != nil {
		fields["publish_at"] = "rfc3339"
	}
	if in.ExpireAt, err = parseTime(r.ExpireAt); err != nil {
		fields["expire_at"] = "rfc3339"
	}

	if v := strings.TrimSpace(r.Links); v != "" {
		if err := json.Unmarshal([]byte(v), &in.Links); err != nil {
			fields["links"] = "json"
		} else {
			for i, l := range in.Links {
				if attachment.ValidateLink(l) != nil {
					fields["links."+strconv.Itoa(i)] = "url"
				}
			}
		}
	}

	if len(fields) > 0 {
		return Input{}, fields
	}
	return in, nil
}

func parseTime(v string) (*time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return nil, err
	}
	t = t.UTC()
	return &t, nil
}
