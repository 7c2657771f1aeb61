package attachment

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"net/textproto"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"csdept/internal/database/dbtest"
	"csdept/internal/domain/activity"
	"csdept/internal/domain/auth"
)

var (
	manager = auth.Actor{ID: 10, Role: auth.RoleManager}
	teacher = auth.Actor{ID: 11, Role: auth.RoleTeacher}
)

// memStore is an in-memory storage.Storage.
type memStore struct {
	mu        sync.Mutex
	files     map[string][]byte
	saves     int
	failSave  int // 1-based save call that fails; 0 never
	deleteErr error
}

func newMemStore() *memStore { return &memStore{files: map[string][]byte{}} }

func (m *memStore) Save(_ context.Context, path string, r io.Reader, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	if m.failSave != 0 && m.saves == m.failSave {
		return errors.New("disk full")
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.files[path] = data
	return nil
}

func (m *memStore) Delete(_ context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return m.deleteErr
	}
	delete(m.files, path)
	return nil
}

func (m *memStore) URL(path string) string { return "/storage/" + path }

func (m *memStore) paths() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.files))
	for p := range m.files {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

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
	db     *gorm.DB
	repo   Repository
	svc    *Service
	store  *memStore
	events *eventRecorder
	logs   *test.Hook
	owners *Registry
}

// existingPosts are the post ids the test registry resolves.
var existingPosts = map[int64]bool{1: true, 2: true, 3: true}

func setup(t *testing.T, cfg Config) *fixture {
	t.Helper()
	db := dbtest.Open(t, &Attachment{})

	owners := NewRegistry()
	owners.Register(OwnerPost, OwnerResolverFunc(func(_ context.Context, id int64) (bool, error) {
		return existingPosts[id], nil
	}))

	log, hook := test.NewNullLogger()
	f := &fixture{
		db:     db,
		repo:   NewRepository(db),
		store:  newMemStore(),
		events: &eventRecorder{},
		logs:   hook,
		owners: owners,
	}
	f.svc = NewService(f.repo, owners, f.store, auth.NewPolicy(), f.events, log, cfg)
	return f
}

type seedRow struct {
	ownerType string
	ownerID   int64
	typ       Type
	title     string
	fileURL   string
	extURL    string
	mime      string
	trashed   bool
}

// seed inserts rows with strictly increasing created_at, in order.
func (f *fixture) seed(t *testing.T, rows ...seedRow) []Attachment {
	t.Helper()
	base := time.Date(2024, 9, 1, 8, 0, 0, 0, time.UTC)
	out := make([]Attachment, 0, len(rows))
	for i, r := range rows {
		a := Attachment{
			AttachableType: r.ownerType,
			AttachableID:   r.ownerID,
			Type:           r.typ,
			Title:          ptr(r.title),
			SortOrder:      i,
			CreatedAt:      base.Add(time.Duration(i) * time.Minute),
		}
		if r.fileURL != "" {
			a.FileURL = ptr(r.fileURL)
			a.FileSize = ptr(int64(100 + i))
		}
		if r.extURL != "" {
			a.ExternalURL = ptr(r.extURL)
		}
		if r.mime != "" {
			a.MimeType = ptr(r.mime)
		}
		require.NoError(t, f.db.Create(&a).Error)
		if r.trashed {
			require.NoError(t, f.db.Delete(&a).Error)
		}
		out = append(out, a)
	}
	return out
}

type upload struct {
	name        string
	contentType string
	body        []byte
}

// fileHeaders encodes files as a multipart form under "files" and parses it
// back the way gin would.
func fileHeaders(t *testing.T, files ...upload) []*multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="files"; filename="%s"`, f.name))
		if f.contentType != "" {
			h.Set("Content-Type", f.contentType)
		}
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(f.body)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(32<<20))
	return req.MultipartForm.File["files"]
}

func ids(items []Attachment) []int64 {
	out := make([]int64, len(items))
	for i, a := range items {
		out[i] = a.ID
	}
	return out
}
