package post

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"csdept/internal/database/dbtest"
	"csdept/internal/domain/activity"
	"csdept/internal/domain/attachment"
	"csdept/internal/domain/auth"
	"csdept/internal/pkg/locale"
	"csdept/internal/pkg/markdown"
	"csdept/internal/storage"
)

var (
	manager = auth.Actor{ID: 10, Role: auth.RoleManager}
	teacher = auth.Actor{ID: 11, Role: auth.RoleTeacher}

	// now is the clock of every fixture.
	now = time.Date(2024, 10, 1, 12, 0, 0, 0, time.UTC)
)

type eventRecorder struct {
	events []activity.Event
}

func (r *eventRecorder) Publish(e activity.Event) { r.events = append(r.events, e) }

func (r *eventRecorder) types() []string {
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

type fixture struct {
	db          *gorm.DB
	repo        Repository
	svc         *Service
	attachments *attachment.Service
	store       *storage.Local
	events      *eventRecorder
}

func setup(t *testing.T) *fixture {
	t.Helper()
	db := dbtest.Open(t, &Category{}, &Post{}, &attachment.Attachment{})

	store, err := storage.NewLocal(t.TempDir(), "/storage")
	require.NoError(t, err)

	log, _ := test.NewNullLogger()
	events := &eventRecorder{}
	policy := auth.NewPolicy()
	owners := attachment.NewRegistry()

	attachments := attachment.NewService(attachment.NewRepository(db), owners, store, policy, events, log,
		attachment.Config{MaxFileSize: 1 << 10, PurgeFiles: true})

	repo := NewRepository(db)
	svc := NewService(repo, attachments, policy, events, markdown.NewRenderer(), log)
	svc.now = func() time.Time { return now }
	owners.Register(attachment.OwnerPost, svc.Resolver())

	return &fixture{db: db, repo: repo, svc: svc, attachments: attachments, store: store, events: events}
}

func (f *fixture) category(t *testing.T, slug, zh, en string) *Category {
	t.Helper()
	c := &Category{Slug: slug, Name: locale.Text{locale.ZhTW: zh, locale.En: en}}
	require.NoError(t, f.repo.CreateCategory(t.Context(), c))
	return c
}

type seedPost struct {
	title      string
	status     Status
	pinned     bool
	publishAt  *time.Time
	expireAt   *time.Time
	categoryID *int64
	trashed    bool
}

func (f *fixture) seed(t *testing.T, rows ...seedPost) []Post {
	t.Helper()
	out := make([]Post, 0, len(rows))
	for i, r := range rows {
		p := Post{
			Title:      locale.Text{locale.ZhTW: r.title, locale.En: r.title + " (en)"},
			Content:    locale.Text{locale.ZhTW: "內容 " + r.title},
			Status:     r.status,
			Pinned:     r.pinned,
			PublishAt:  r.publishAt,
			ExpireAt:   r.expireAt,
			CategoryID: r.categoryID,
			CreatedAt:  now.Add(-time.Duration(len(rows)-i) * time.Hour),
		}
		if p.Status == "" {
			p.Status = StatusPublished
		}
		require.NoError(t, f.repo.Create(t.Context(), &p))
		if r.trashed {
			require.NoError(t, f.db.Delete(&p).Error)
		}
		out = append(out, p)
	}
	return out
}

func at(d time.Duration) *time.Time {
	t := now.Add(d)
	return &t
}

func ptrInt64(v int64) *int64 { return &v }

func postIDs(items []Post) []int64 {
	out := make([]int64, len(items))
	for i, p := range items {
		out[i] = p.ID
	}
	return out
}

type upload struct {
	name string
	body []byte
}

// multipartBody writes fields and files under "attachments".
func multipartBody(t *testing.T, fields map[string]string, files ...upload) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="attachments"; filename="%s"`, f.name))
		h.Set("Content-Type", "application/octet-stream")
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(f.body)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func fileHeaders(t *testing.T, files ...upload) []*multipart.FileHeader {
	t.Helper()
	body, contentType := multipartBody(t, nil, files...)
	req := httptest.NewRequest("POST", "/", body)
	req.Header.Set("Content-Type", contentType)
	require.NoError(t, req.ParseMultipartForm(32<<20))
	return req.MultipartForm.File["attachments"]
}

var pdfBytes = []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\n")
