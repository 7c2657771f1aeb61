package contact

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"csdept/internal/domain/activity"
	"csdept/internal/domain/auth"
	"csdept/internal/pkg/pagination"
)

type Service struct {
	repo   Repository
	authz  auth.Authorizer
	events activity.Publisher
	log    logrus.FieldLogger
	now    func() time.Time
}

func NewService(repo Repository, authz auth.Authorizer, events activity.Publisher, log logrus.FieldLogger) *Service {
	if events == nil {
		events = activity.Nop
	}
	return &Service{
		repo:   repo,
		authz:  authz,
		events: events,
		log:    log.WithField("component", "contact"),
		now:    time.Now,
	}
}

// Submit stores a message from the public form. ip and userAgent are kept for
// spam triage.
func (s *Service) Submit(ctx context.Context, req SubmitRequest, ip, userAgent string) (*Message, error) {
	now := s.now().UTC()
	m := &Message{
		Name:      strings.TrimSpace(req.Name),
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		Subject:   strings.TrimSpace(req.Subject),
		Message:   strings.TrimSpace(req.Message),
		Status:    StatusNew,
		IPAddress: nullString(ip),
		UserAgent: nullString(truncate(userAgent, 512)),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, m); err != nil {
		return nil, fmt.Errorf("save contact message: %w", err)
	}

	s.log.WithFields(logrus.Fields{"message_id": m.ID, "ip": ip}).Info(activity.ContactReceived)
	s.events.Publish(activity.Event{
		Type:      activity.ContactReceived,
		Subject:   "contact_message",
		SubjectID: m.ID,
	})
	return m, nil
}

type ListResult struct {
	Items  []Message
	Meta   pagination.Meta
	Counts map[Status]int64
}

func (s *Service) List(ctx context.Context, actor auth.Actor, f Filter) (*ListResult, error) {
	if err := s.authz.Authorize(actor, auth.AbilityManageContact); err != nil {
		return nil, err
	}
	items, total, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list contact messages: %w", err)
	}
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("count contact messages: %w", err)
	}
	return &ListResult{Items: items, Meta: pagination.NewMeta(f.Page, total), Counts: counts}, nil
}

// Show returns a message and marks it read when it was new.
func (s *Service) Show(ctx context.Context, actor auth.Actor, id int64) (*Message, error) {
	if err := s.authz.Authorize(actor, auth.AbilityManageContact); err != nil {
		return nil, err
	}
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !m.IsNew() {
		return m, nil
	}

	now := s.now().UTC()
	if err := s.repo.MarkRead(ctx, id, now); err != nil {
		return nil, fmt.Errorf("mark contact message %d read: %w", id, err)
	}
	m.Status = StatusRead
	m.ReadAt = sql.NullTime{Time: now, Valid: true}
	m.UpdatedAt = now
	return m, nil
}

func (s *Service) UpdateStatus(ctx context.Context, actor auth.Actor, id int64, status Status) (*Message, error) {
	if err := s.authz.Authorize(actor, auth.AbilityManageContact); err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	if err := s.repo.UpdateStatus(ctx, id, status, s.now().UTC()); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Delete(ctx context.Context, actor auth.Actor, id int64) error {
	if err := s.authz.Authorize(actor, auth.AbilityManageContact); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.WithFields(logrus.Fields{"message_id": id, "actor_id": actor.ID}).Info("contact.deleted")
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	s = s[:n]
	for !utf8.ValidString(s) {
		s = s[:len(s)-1]
	}
	return s
}
