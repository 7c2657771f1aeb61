package attachment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"csdept/internal/domain/activity"
	"csdept/internal/domain/auth"
	"csdept/internal/pkg/pagination"
	"csdept/internal/pkg/trashed"
	"csdept/internal/storage"
)

const DefaultMaxFileSize = 50 << 20

type Config struct {
	MaxFileSize int64
	// PurgeFiles removes stored bytes when a row is force-deleted.
	PurgeFiles bool
}

type Service struct {
	repo   Repository
	owners *Registry
	store  storage.Storage
	authz  auth.Authorizer
	events activity.Publisher
	log    logrus.FieldLogger
	cfg    Config
}

func NewService(
	repo Repository,
	owners *Registry,
	store storage.Storage,
	authz auth.Authorizer,
	events activity.Publisher,
	log logrus.FieldLogger,
	cfg Config,
) *Service {
	if cfg.MaxFileSize <= 0 {
		cfg.MaxFileSize = DefaultMaxFileSize
	}
	if events == nil {
		events = activity.Nop
	}
	return &Service{
		repo:   repo,
		owners: owners,
		store:  store,
		authz:  authz,
		events: events,
		log:    log.WithField("component", "attachments"),
		cfg:    cfg,
	}
}

type ListResult struct {
	Items   []Attachment
	Meta    pagination.Meta
	Filters AppliedFilters
	Options FilterOptions
}

func (s *Service) List(ctx context.Context, actor auth.Actor, f Filter) (*ListResult, error) {
	if err := s.authz.Authorize(actor, auth.AbilityManageAttachments); err != nil {
		return nil, err
	}

	items, total, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list attachments: %w", err)
	}
	ownerTypes, err := s.repo.DistinctAttachableTypes(ctx)
	if err != nil {
		return nil, fmt.Errorf("list attachable types: %w", err)
	}

	return &ListResult{
		Items:   items,
		Meta:    pagination.NewMeta(f.Page, total),
		Filters: f.Applied(),
		Options: FilterOptions{
			Types:           Types,
			AttachableTypes: ownerTypes,
			Trashed:         trashed.Options,
			PerPage:         pagination.PerPageOptions,
		},
	}, nil
}

func (s *Service) Show(ctx context.Context, actor auth.Actor, id int64) (*Attachment, error) {
	if err := s.authz.Authorize(actor, auth.AbilityManageAttachments); err != nil {
		return nil, err
	}
	return s.repo.Find(ctx, id, trashed.Any)
}

// ListByOwner returns an owner's attachments ordered by sort_order. It is a
// read used by owner domains and needs no ability.
func (s *Service) ListByOwner(ctx context.Context, owner OwnerRef, scope trashed.Scope) ([]Attachment, error) {
	return s.repo.ListByOwner(ctx, owner, scope)
}

// Destroy moves an active attachment to the trash. The stored file is kept.
func (s *Service) Destroy(ctx context.Context, actor auth.Actor, id int64) (*Attachment, error) {
	if err := s.authz.Authorize(actor, auth.AbilityManageAttachments); err != nil {
		return nil, err
	}
	a, err := s.repo.Find(ctx, id, trashed.Active)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SoftDelete(ctx, a); err != nil {
		return nil, fmt.Errorf("trash attachment %d: %w", id, err)
	}

	s.record(actor, a, activity.AttachmentTrashed)
	return a, nil
}

// Restore brings a trashed attachment back. Active ids are NotFound.
func (s *Service) Restore(ctx context.Context, actor auth.Actor, id int64) (*Attachment, error) {
	if err := s.authz.Authorize(actor, auth.AbilityManageAttachments); err != nil {
		return nil, err
	}
	a, err := s.repo.Find(ctx, id, trashed.Only)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Restore(ctx, a); err != nil {
		return nil, fmt.Errorf("restore attachment %d: %w", id, err)
	}

	s.record(actor, a, activity.AttachmentRestored)
	return a, nil
}

// ForceDelete removes the row whatever its state, then the stored file when
// purging is enabled.
func (s *Service) ForceDelete(ctx context.Context, actor auth.Actor, id int64) (*Attachment, error) {
	if err := s.authz.Authorize(actor, auth.AbilityManageAttachments); err != nil {
		return nil, err
	}
	a, err := s.repo.Find(ctx, id, trashed.Any)
	if err != nil {
		return nil, err
	}
	if err := s.forceDelete(ctx, actor, a); err != nil {
		return nil, err
	}
	return a, nil
}

// ForceDeleteByOwner permanently removes every attachment of owner.
func (s *Service) ForceDeleteByOwner(ctx context.Context, actor auth.Actor, owner OwnerRef) (int, error) {
	if err := s.authz.Authorize(actor, auth.AbilityManageAttachments); err != nil {
		return 0, err
	}
	items, err := s.repo.ListByOwner(ctx, owner, trashed.Any)
	if err != nil {
		return 0, err
	}
	return s.forceDeleteAll(ctx, actor, items)
}

// PurgeTrashed permanently removes attachments trashed before cutoff.
func (s *Service) PurgeTrashed(ctx context.Context, actor auth.Actor, cutoff time.Time) (int, error) {
	if err := s.authz.Authorize(actor, auth.AbilityManageAttachments); err != nil {
		return 0, err
	}
	items, err := s.repo.ListTrashedBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	return s.forceDeleteAll(ctx, actor, items)
}

func (s *Service) forceDeleteAll(ctx context.Context, actor auth.Actor, items []Attachment) (int, error) {
	n := 0
	for i := range items {
		err := s.forceDelete(ctx, actor, &items[i])
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

func (s *Service) forceDelete(ctx context.Context, actor auth.Actor, a *Attachment) error {
	if err := s.repo.ForceDelete(ctx, a); err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return fmt.Errorf("delete attachment %d: %w", a.ID, err)
	}

	if s.cfg.PurgeFiles {
		if path := a.StoredPath(); path != "" {
			if err := s.store.Delete(ctx, path); err != nil {
				s.log.WithError(err).WithFields(logrus.Fields{
					"attachment_id": a.ID,
					"path":          path,
				}).Error("failed to remove stored file")
			}
		}
	}

	s.record(actor, a, activity.AttachmentDeleted)
	return nil
}

func (s *Service) record(actor auth.Actor, a *Attachment, event string) {
	s.log.WithFields(logrus.Fields{
		"attachment_id": a.ID,
		"owner":         a.Owner().String(),
		"actor_id":      actor.ID,
	}).Info(event)

	s.events.Publish(activity.Event{
		Type:      event,
		Subject:   "attachment",
		SubjectID: a.ID,
		ActorID:   actor.ID,
	})
}

// ResolveURL turns a stored path into a client URL. Links are returned as is.
func (s *Service) ResolveURL(a *Attachment) string {
	if p := a.StoredPath(); p != "" {
		return s.store.URL(p)
	}
	return deref(a.ExternalURL)
}
