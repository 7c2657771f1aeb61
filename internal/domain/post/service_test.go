package post

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"csdept/internal/domain/activity"
	"csdept/internal/domain/attachment"
	"csdept/internal/domain/auth"
	"csdept/internal/pkg/locale"
	"csdept/internal/pkg/pagination"
	"csdept/internal/pkg/trashed"
)

func validInput() Input {
	return Input{
		Title:   locale.Text{locale.ZhTW: "招生公告", locale.En: "Admissions"},
		Content: locale.Text{locale.ZhTW: "# 招生\n\n**重要**", locale.En: "# Admissions\n\n**Important**"},
		Status:  StatusPublished,
	}
}

func (f *fixture) ownerAttachments(t *testing.T, id int64, scope trashed.Scope) []attachment.Attachment {
	t.Helper()
	items, err := f.attachments.ListByOwner(t.Context(), attachment.OwnerRef{Type: attachment.OwnerPost, ID: id}, scope)
	require.NoError(t, err)
	return items
}

func (f *fixture) storedExists(a attachment.Attachment) bool {
	_, err := os.Stat(filepath.Join(f.store.Root(), filepath.FromSlash(a.StoredPath())))
	return err == nil
}

func TestCreate_IngestsFilesThenLinks(t *testing.T) {
	f := setup(t)

	in := validInput()
	in.Files = fileHeaders(t, upload{name: "brochure.pdf", body: pdfBytes})
	in.Links = []attachment.LinkInput{{Title: "Apply online", URL: "https://apply.example.edu"}}

	p, err := f.svc.Create(t.Context(), manager, in)
	require.NoError(t, err)
	require.NotNil(t, p.CreatedBy)
	assert.EqualValues(t, manager.ID, *p.CreatedBy)
	assert.Equal(t, StatusPublished, p.Status)

	items := f.ownerAttachments(t, p.ID, trashed.Any)
	require.Len(t, items, 2)
	assert.Equal(t, attachment.TypeDocument, items[0].Type)
	assert.Equal(t, "application/pdf", *items[0].MimeType)
	assert.Equal(t, 0, items[0].SortOrder)
	assert.True(t, f.storedExists(items[0]))
	assert.Equal(t, attachment.TypeLink, items[1].Type)
	assert.Equal(t, 1, items[1].SortOrder)

	assert.Equal(t, []string{activity.PostCreated, activity.AttachmentCreated, activity.AttachmentCreated}, f.events.types())
}

func TestCreate_DefaultsToDraft(t *testing.T) {
	f := setup(t)
	in := validInput()
	in.Status = ""
	in.Title = locale.Text{locale.En: "  Seminar  ", locale.ZhTW: " "}

	p, err := f.svc.Create(t.Context(), manager, in)
	require.NoError(t, err)
	assert.Equal(t, StatusDraft, p.Status)
	assert.Equal(t, locale.Text{locale.En: "Seminar"}, p.Title)
	assert.False(t, p.IsVisible(now))
}

func TestCreate_RejectsBeforeSaving(t *testing.T) {
	cases := map[string]struct {
		mutate func(*testing.T, *Input)
		want   error
	}{
		"no title": {
			mutate: func(_ *testing.T, in *Input) { in.Title = locale.Text{locale.ZhTW: "  "} },
			want:   ErrTitleRequired,
		},
		"bad status": {
			mutate: func(_ *testing.T, in *Input) { in.Status = "live" },
			want:   ErrInvalidStatus,
		},
		"expires before publish": {
			mutate: func(_ *testing.T, in *Input) { in.PublishAt, in.ExpireAt = at(time.Hour), at(time.Hour) },
			want:   ErrInvalidSchedule,
		},
		"unknown category": {
			mutate: func(_ *testing.T, in *Input) { in.CategoryID = ptrInt64(42) },
			want:   ErrCategoryNotFound,
		},
		"file too large": {
			mutate: func(t *testing.T, in *Input) {
				in.Files = fileHeaders(t, upload{name: "big.pdf", body: bytes.Repeat([]byte("x"), 2<<10)})
			},
			want: attachment.ErrFileTooLarge,
		},
		"bad link": {
			mutate: func(_ *testing.T, in *Input) {
				in.Links = []attachment.LinkInput{{Title: "x", URL: "ftp://files.example.edu"}}
			},
			want: attachment.ErrInvalidLink,
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			f := setup(t)
			in := validInput()
			tc.mutate(t, &in)

			p, err := f.svc.Create(t.Context(), manager, in)
			assert.ErrorIs(t, err, tc.want)
			assert.Nil(t, p)

			var n int64
			require.NoError(t, f.db.Unscoped().Model(&Post{}).Count(&n).Error)
			assert.Zero(t, n)
			assert.Empty(t, f.events.events)
		})
	}
}

func TestCreate_Forbidden(t *testing.T) {
	f := setup(t)

	_, err := f.svc.Create(t.Context(), teacher, validInput())
	assert.ErrorIs(t, err, auth.ErrForbidden)

	_, err = f.svc.Create(t.Context(), auth.Actor{}, validInput())
	assert.ErrorIs(t, err, auth.ErrUnauthenticated)
}

func TestUpdate_AppendsAttachments(t *testing.T) {
	f := setup(t)
	news := f.category(t, "news", "最新消息", "News")

	in := validInput()
	in.Files = fileHeaders(t, upload{name: "a.pdf", body: pdfBytes})
	p, err := f.svc.Create(t.Context(), manager, in)
	require.NoError(t, err)

	up := validInput()
	up.Title = locale.Text{locale.ZhTW: "更新", locale.En: "Updated"}
	up.CategoryID = &news.ID
	up.Pinned = true
	up.Links = []attachment.LinkInput{{Title: "Slides", URL: "https://slides.example.edu/1"}}

	got, err := f.svc.Update(t.Context(), manager, p.ID, up)
	require.NoError(t, err)
	assert.Equal(t, "Updated", got.Title.Get(locale.En))
	assert.True(t, got.Pinned)
	require.NotNil(t, got.Category)
	assert.Equal(t, "news", got.Category.Slug)

	items := f.ownerAttachments(t, p.ID, trashed.Any)
	require.Len(t, items, 2)
	assert.Equal(t, []int{0, 1}, []int{items[0].SortOrder, items[1].SortOrder})
}

func TestUpdate_TrashedIsNotFound(t *testing.T) {
	f := setup(t)
	rows := f.seed(t, seedPost{title: "gone", trashed: true})

	_, err := f.svc.Update(t.Context(), manager, rows[0].ID, validInput())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDestroyRestore(t *testing.T) {
	f := setup(t)
	rows := f.seed(t, seedPost{title: "live"})
	id := rows[0].ID

	p, err := f.svc.Destroy(t.Context(), manager, id)
	require.NoError(t, err)
	assert.True(t, p.IsTrashed())

	_, err = f.svc.ShowPublished(t.Context(), id)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.svc.Destroy(t.Context(), manager, id)
	assert.ErrorIs(t, err, ErrNotFound)

	p, err = f.svc.Restore(t.Context(), manager, id)
	require.NoError(t, err)
	assert.False(t, p.IsTrashed())

	_, err = f.svc.ShowPublished(t.Context(), id)
	assert.NoError(t, err)
	_, err = f.svc.Restore(t.Context(), manager, id)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Equal(t, []string{activity.PostTrashed, activity.PostRestored}, f.events.types())
}

func TestForceDelete_CascadesToAttachments(t *testing.T) {
	f := setup(t)

	in := validInput()
	in.Files = fileHeaders(t, upload{name: "a.pdf", body: pdfBytes}, upload{name: "b.pdf", body: pdfBytes})
	in.Links = []attachment.LinkInput{{Title: "Site", URL: "https://cs.example.edu"}}
	p, err := f.svc.Create(t.Context(), manager, in)
	require.NoError(t, err)

	other := validInput()
	other.Files = fileHeaders(t, upload{name: "keep.pdf", body: pdfBytes})
	kept, err := f.svc.Create(t.Context(), manager, other)
	require.NoError(t, err)

	items := f.ownerAttachments(t, p.ID, trashed.Any)
	require.Len(t, items, 3)
	_, err = f.attachments.Destroy(t.Context(), manager, items[1].ID)
	require.NoError(t, err)
	_, err = f.svc.Destroy(t.Context(), manager, p.ID)
	require.NoError(t, err)

	_, err = f.svc.ForceDelete(t.Context(), manager, p.ID)
	require.NoError(t, err)

	_, err = f.repo.Find(t.Context(), p.ID, trashed.Any)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, f.ownerAttachments(t, p.ID, trashed.Any))
	assert.False(t, f.storedExists(items[0]))
	assert.False(t, f.storedExists(items[1]))

	remaining := f.ownerAttachments(t, kept.ID, trashed.Any)
	require.Len(t, remaining, 1)
	assert.True(t, f.storedExists(remaining[0]))

	assert.Equal(t, activity.PostDeleted, f.events.types()[len(f.events.events)-1])
}

func TestShowPublished_RendersLocalizedMarkdown(t *testing.T) {
	f := setup(t)

	in := validInput()
	in.Files = fileHeaders(t, upload{name: "a.pdf", body: pdfBytes})
	in.Links = []attachment.LinkInput{{Title: "Old", URL: "https://old.example.edu"}}
	created, err := f.svc.Create(t.Context(), manager, in)
	require.NoError(t, err)

	items := f.ownerAttachments(t, created.ID, trashed.Active)
	require.Len(t, items, 2)
	_, err = f.attachments.Destroy(t.Context(), manager, items[1].ID)
	require.NoError(t, err)

	p, err := f.svc.ShowPublished(t.Context(), created.ID)
	require.NoError(t, err)

	out, err := f.svc.ToPublicDetail(p, locale.En)
	require.NoError(t, err)
	assert.Equal(t, "Admissions", out.Title)
	assert.Contains(t, out.ContentHTML, `<h1 id="admissions">Admissions</h1>`)
	assert.Contains(t, out.ContentHTML, "<strong>Important</strong>")
	require.Len(t, out.Attachments, 1)
	assert.Equal(t, "/storage/"+items[0].StoredPath(), out.Attachments[0].URL)

	zh, err := f.svc.ToPublicDetail(p, locale.ZhTW)
	require.NoError(t, err)
	assert.Equal(t, "招生公告", zh.Title)
	assert.Contains(t, zh.ContentHTML, "<strong>重要</strong>")
}

func TestListPublished_CategoryAndPaging(t *testing.T) {
	f := setup(t)
	news := f.category(t, "news", "最新消息", "News")
	f.seed(t,
		seedPost{title: "a", categoryID: &news.ID},
		seedPost{title: "b", categoryID: &news.ID},
		seedPost{title: "c"},
		seedPost{title: "d", status: StatusDraft, categoryID: &news.ID},
	)

	items, meta, err := f.svc.ListPublished(t.Context(), news.ID, pagination.Params{Page: 1, PerPage: 1})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.EqualValues(t, 2, meta.Total)
	assert.Equal(t, 2, meta.LastPage)

	s := f.svc.ToPublicSummary(&items[0], locale.En)
	assert.Equal(t, "b (en)", s.Title)
	require.NotNil(t, s.Category)
	assert.Equal(t, "News", s.Category.Name)
}

func TestShow_CountsTrashedAttachments(t *testing.T) {
	f := setup(t)
	in := validInput()
	in.Links = []attachment.LinkInput{
		{Title: "One", URL: "https://one.example.edu"},
		{Title: "Two", URL: "https://two.example.edu"},
	}
	p, err := f.svc.Create(t.Context(), manager, in)
	require.NoError(t, err)

	items := f.ownerAttachments(t, p.ID, trashed.Active)
	_, err = f.attachments.Destroy(t.Context(), manager, items[0].ID)
	require.NoError(t, err)

	d, err := f.svc.Show(t.Context(), manager, p.ID)
	require.NoError(t, err)
	assert.Len(t, d.Attachments, 2)
	assert.Equal(t, 1, d.TrashedAttachments())

	_, err = f.svc.Show(t.Context(), teacher, p.ID)
	assert.ErrorIs(t, err, auth.ErrForbidden)
}
