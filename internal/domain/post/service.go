package post

import (
	"context"
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"csdept/internal/domain/activity"
	"csdept/internal/domain/attachment"
	"csdept/internal/domain/auth"
	"csdept/internal/pkg/locale"
	"csdept/internal/pkg/markdown"
	"csdept/internal/pkg/pagination"
	"csdept/internal/pkg/trashed"
)

// Input carries the editable fields of a post plus attachments to add after
// it is saved.
type Input struct {
	Title      locale.Text
	Content    locale.Text
	CategoryID *int64
	Status     Status
	Pinned     bool
	PublishAt  *time.Time
	ExpireAt   *time.Time

	Files []*multipart.FileHeader
	Links []attachment.LinkInput
}

type Service struct {
	repo        Repository
	attachments *attachment.Service
	authz       auth.Authorizer
	events      activity.Publisher
	md          *markdown.Renderer
	log         logrus.FieldLogger
	now         func() time.Time
}

func NewService(
	repo Repository,
	attachments *attachment.Service,
	authz auth.Authorizer,
	events activity.Publisher,
	md *markdown.Renderer,
	log logrus.FieldLogger,
) *Service {
	if events == nil {
		events = activity.Nop
	}
	if md == nil {
		md = markdown.NewRenderer()
	}
	return &Service{
		repo:        repo,
		attachments: attachments,
		authz:       authz,
		events:      events,
		md:          md,
		log:         log.WithField("component", "posts"),
		now:         time.Now,
	}
}

// Resolver lets the attachment registry confirm post owners.
func (s *Service) Resolver() attachment.OwnerResolver {
	return attachment.OwnerResolverFunc(s.repo.OwnerExists)
}

type FilterOptions struct {
	Statuses   []Status         `json:"statuses"`
	Categories []Category       `json:"categories"`
	Trashed    []trashed.Option `json:"trashed"`
	PerPage    []int            `json:"per_page"`
}

type ListResult struct {
	Items   []Post
	Meta    pagination.Meta
	Filters AppliedFilters
	Options FilterOptions
}

func (s *Service) List(ctx context.Context, actor auth.Actor, f Filter) (*ListResult, error) {
	if err := s.authz.Authorize(actor, auth.AbilityManagePosts); err != nil {
		return nil, err
	}

	items, total, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	return &ListResult{
		Items:   items,
		Meta:    pagination.NewMeta(f.Page, total),
		Filters: f.Applied(),
		Options: FilterOptions{
			Statuses:   Statuses,
			Categories: categories,
			Trashed:    trashed.Options,
			PerPage:    pagination.PerPageOptions,
		},
	}, nil
}

// Detail is a post with every attachment it owns, trashed ones included.
type Detail struct {
	Post        *Post
	Attachments []attachment.Attachment
}

func (d *Detail) TrashedAttachments() int {
	n := 0
	for i := range d.Attachments {
		if d.Attachments[i].IsTrashed() {
			n++
		}
	}
	return n
}

func (s *Service) Show(ctx context.Context, actor auth.Actor, id int64) (*Detail, error) {
	if err := s.authz.Authorize(actor, auth.AbilityManagePosts); err != nil {
		return nil, err
	}
	p, err := s.repo.Find(ctx, id, trashed.Any)
	if err != nil {
		return nil, err
	}
	items, err := s.attachments.ListByOwner(ctx, p.Owner(), trashed.Any)
	if err != nil {
		return nil, fmt.Errorf("list post attachments: %w", err)
	}
	return &Detail{Post: p, Attachments: items}, nil
}

func (s *Service) Categories(ctx context.Context, actor auth.Actor) ([]Category, error) {
	if err := s.authz.Authorize(actor, auth.AbilityManagePosts); err != nil {
		return nil, err
	}
	return s.repo.ListCategories(ctx)
}

// Create saves a post, then ingests its files and links. When attaching fails
// the saved post is returned together with the error.
func (s *Service) Create(ctx context.Context, actor auth.Actor, in Input) (*Post, error) {
	if err := s.authz.Authorize(actor, auth.AbilityManagePosts); err != nil {
		return nil, err
	}
	if err := s.validate(ctx, actor, &in); err != nil {
		return nil, err
	}

	p := &Post{}
	if actor.ID > 0 {
		p.CreatedBy = &actor.ID
	}
	in.apply(p)
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	s.record(actor, p, activity.PostCreated)

	if err := s.attach(ctx, actor, p, in); err != nil {
		return p, err
	}
	return s.reload(ctx, p)
}

// Update rewrites the editable fields of an active post. New files and links
// are appended to the existing attachments.
func (s *Service) Update(ctx context.Context, actor auth.Actor, id int64, in Input) (*Post, error) {
	if err := s.authz.Authorize(actor, auth.AbilityManagePosts); err != nil {
		return nil, err
	}
	p, err := s.repo.Find(ctx, id, trashed.Active)
	if err != nil {
		return nil, err
	}
	if err := s.validate(ctx, actor, &in); err != nil {
		return nil, err
	}

	in.apply(p)
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("update post %d: %w", id, err)
	}
	s.record(actor, p, activity.PostUpdated)

	if err := s.attach(ctx, actor, p, in); err != nil {
		return p, err
	}
	return s.reload(ctx, p)
}

func (in Input) apply(p *Post) {
	p.Title = in.Title
	p.Content = in.Content
	p.CategoryID = in.CategoryID
	p.Category = nil
	p.Status = in.Status
	p.Pinned = in.Pinned
	p.PublishAt = in.PublishAt
	p.ExpireAt = in.ExpireAt
}

// validate normalizes in and checks everything that can fail before the post
// is written, attachment sizes and links included.
func (s *Service) validate(ctx context.Context, actor auth.Actor, in *Input) error {
	in.Title = compact(in.Title)
	in.Content = compact(in.Content)
	if in.Title.IsEmpty() {
		return ErrTitleRequired
	}
	if in.Status == "" {
		in.Status = StatusDraft
	}
	if !in.Status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, in.Status)
	}
	if in.PublishAt != nil && in.ExpireAt != nil && !in.ExpireAt.After(*in.PublishAt) {
		return ErrInvalidSchedule
	}
	if in.CategoryID != nil {
		ok, err := s.repo.CategoryExists(ctx, *in.CategoryID)
		if err != nil {
			return fmt.Errorf("check category: %w", err)
		}
		if !ok {
			return fmt.Errorf("%w: %d", ErrCategoryNotFound, *in.CategoryID)
		}
	}

	if len(in.Files) == 0 && len(in.Links) == 0 {
		return nil
	}
	if err := s.authz.Authorize(actor, auth.AbilityManageAttachments); err != nil {
		return err
	}
	if err := s.attachments.CheckFiles(in.Files); err != nil {
		return err
	}
	for i, l := range in.Links {
		if err := attachment.ValidateLink(l); err != nil {
			return fmt.Errorf("links[%d]: %w", i, err)
		}
	}
	return nil
}

func (s *Service) attach(ctx context.Context, actor auth.Actor, p *Post, in Input) error {
	if len(in.Files) > 0 {
		if _, err := s.attachments.Ingest(ctx, actor, p.Owner(), in.Files); err != nil {
			return err
		}
	}
	for _, l := range in.Links {
		if _, err := s.attachments.AddLink(ctx, actor, p.Owner(), l); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) reload(ctx context.Context, p *Post) (*Post, error) {
	return s.repo.Find(ctx, p.ID, trashed.Any)
}

// Destroy trashes a post. Its attachments are left untouched and disappear
// from the public site with it.
func (s *Service) Destroy(ctx context.Context, actor auth.Actor, id int64) (*Post, error) {
	if err := s.authz.Authorize(actor, auth.AbilityManagePosts); err != nil {
		return nil, err
	}
	p, err := s.repo.Find(ctx, id, trashed.Active)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SoftDelete(ctx, p); err != nil {
		return nil, fmt.Errorf("trash post %d: %w", id, err)
	}
	s.record(actor, p, activity.PostTrashed)
	return p, nil
}

func (s *Service) Restore(ctx context.Context, actor auth.Actor, id int64) (*Post, error) {
	if err := s.authz.Authorize(actor, auth.AbilityManagePosts); err != nil {
		return nil, err
	}
	p, err := s.repo.Find(ctx, id, trashed.Only)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Restore(ctx, p); err != nil {
		return nil, fmt.Errorf("restore post %d: %w", id, err)
	}
	s.record(actor, p, activity.PostRestored)
	return p, nil
}

// ForceDelete removes a post and, before it, every attachment it owns.
func (s *Service) ForceDelete(ctx context.Context, actor auth.Actor, id int64) (*Post, error) {
	if err := s.authz.Authorize(actor, auth.AbilityManagePosts); err != nil {
		return nil, err
	}
	p, err := s.repo.Find(ctx, id, trashed.Any)
	if err != nil {
		return nil, err
	}

	n, err := s.attachments.ForceDeleteByOwner(ctx, actor, p.Owner())
	if err != nil {
		return nil, fmt.Errorf("delete attachments of post %d: %w", id, err)
	}
	if err := s.repo.ForceDelete(ctx, p); err != nil {
		return nil, fmt.Errorf("delete post %d: %w", id, err)
	}

	s.log.WithFields(logrus.Fields{"post_id": p.ID, "attachments": n}).Debug("post attachments removed")
	s.record(actor, p, activity.PostDeleted)
	return p, nil
}

// ListPublished returns the posts the public site shows now.
func (s *Service) ListPublished(ctx context.Context, categoryID int64, page pagination.Params) ([]Post, pagination.Meta, error) {
	items, total, err := s.repo.ListVisible(ctx, s.now().UTC(), categoryID, page)
	if err != nil {
		return nil, pagination.Meta{}, fmt.Errorf("list published posts: %w", err)
	}
	return items, pagination.NewMeta(page, total), nil
}

// ShowPublished loads a visible post with its active attachments. Posts that
// are hidden for any reason are NotFound.
func (s *Service) ShowPublished(ctx context.Context, id int64) (*Post, error) {
	return s.repo.FindVisible(ctx, id, s.now().UTC())
}

// RenderContent renders the post body for loc from Markdown to HTML.
func (s *Service) RenderContent(p *Post, loc string) (string, error) {
	return s.md.Render(p.Content.Get(loc))
}

func (s *Service) record(actor auth.Actor, p *Post, event string) {
	s.log.WithFields(logrus.Fields{
		"post_id":  p.ID,
		"actor_id": actor.ID,
	}).Info(event)

	s.events.Publish(activity.Event{
		Type:      event,
		Subject:   "post",
		SubjectID: p.ID,
		ActorID:   actor.ID,
	})
}

// compact trims values and drops empty locales.
func compact(t locale.Text) locale.Text {
	out := locale.Text{}
	for k, v := range t {
		if v = strings.TrimSpace(v); v != "" {
			out[k] = v
		}
	}
	return out
}
