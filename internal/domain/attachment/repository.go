package attachment

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"csdept/internal/pkg/trashed"
)

type Repository interface {
	List(ctx context.Context, f Filter) ([]Attachment, int64, error)
	Find(ctx context.Context, id int64, scope trashed.Scope) (*Attachment, error)
	ListByOwner(ctx context.Context, owner OwnerRef, scope trashed.Scope) ([]Attachment, error)
	ListTrashedBefore(ctx context.Context, cutoff time.Time) ([]Attachment, error)
	DistinctAttachableTypes(ctx context.Context) ([]string, error)
	NextSortOrder(ctx context.Context, owner OwnerRef) (int, error)
	Create(ctx context.Context, a *Attachment) error
	SoftDelete(ctx context.Context, a *Attachment) error
	Restore(ctx context.Context, a *Attachment) error
	ForceDelete(ctx context.Context, a *Attachment) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

var searchColumns = []string{"title", "file_url", "external_url", "mime_type"}

func (r *repository) List(ctx context.Context, f Filter) ([]Attachment, int64, error) {
	q := f.Trashed.Apply(r.db.WithContext(ctx).Model(&Attachment{}))

	if f.Search != "" {
		term := "%" + escapeLike(lower(f.Search)) + "%"
		cond := r.db.Where("LOWER(title) LIKE ? ESCAPE '\\'", term)
		for _, col := range searchColumns[1:] {
			cond = cond.Or("LOWER("+col+") LIKE ? ESCAPE '\\'", term)
		}
		q = q.Where(cond)
	}
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	if f.AttachableType != "" {
		q = q.Where("attachable_type = ?", f.AttachableType)
	}
	if f.AttachableID > 0 {
		q = q.Where("attachable_id = ?", f.AttachableID)
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []Attachment
	err := q.Order("created_at DESC").Order("id DESC").
		Offset(f.Page.Offset()).
		Limit(f.Page.Limit()).
		Find(&items).Error
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *repository) Find(ctx context.Context, id int64, scope trashed.Scope) (*Attachment, error) {
	var a Attachment
	err := scope.Apply(r.db.WithContext(ctx)).First(&a, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *repository) ListByOwner(ctx context.Context, owner OwnerRef, scope trashed.Scope) ([]Attachment, error) {
	var items []Attachment
	err := scope.Apply(r.db.WithContext(ctx)).
		Where("attachable_type = ? AND attachable_id = ?", owner.Type, owner.ID).
		Order("sort_order ASC").Order("id ASC").
		Find(&items).Error
	return items, err
}

func (r *repository) ListTrashedBefore(ctx context.Context, cutoff time.Time) ([]Attachment, error) {
	var items []Attachment
	err := r.db.WithContext(ctx).Unscoped().
		Where("deleted_at IS NOT NULL AND deleted_at < ?", cutoff).
		Order("id ASC").
		Find(&items).Error
	return items, err
}

// DistinctAttachableTypes scans every row, trashed included.
func (r *repository) DistinctAttachableTypes(ctx context.Context) ([]string, error) {
	var types []string
	err := r.db.WithContext(ctx).Unscoped().Model(&Attachment{}).
		Where("attachable_type IS NOT NULL AND attachable_type <> ''").
		Distinct().
		Order("attachable_type").
		Pluck("attachable_type", &types).Error
	return types, err
}

func (r *repository) NextSortOrder(ctx context.Context, owner OwnerRef) (int, error) {
	var maxOrder int
	err := r.db.WithContext(ctx).Unscoped().Model(&Attachment{}).
		Where("attachable_type = ? AND attachable_id = ?", owner.Type, owner.ID).
		Select("COALESCE(MAX(sort_order), -1)").
		Row().Scan(&maxOrder)
	if err != nil {
		return 0, err
	}
	return maxOrder + 1, nil
}

func (r *repository) Create(ctx context.Context, a *Attachment) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *repository) SoftDelete(ctx context.Context, a *Attachment) error {
	if err := r.db.WithContext(ctx).Delete(a).Error; err != nil {
		return err
	}
	return r.reload(ctx, a)
}

func (r *repository) Restore(ctx context.Context, a *Attachment) error {
	err := r.db.WithContext(ctx).Unscoped().Model(a).Update("deleted_at", nil).Error
	if err != nil {
		return err
	}
	return r.reload(ctx, a)
}

func (r *repository) ForceDelete(ctx context.Context, a *Attachment) error {
	res := r.db.WithContext(ctx).Unscoped().Delete(a)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) reload(ctx context.Context, a *Attachment) error {
	return r.db.WithContext(ctx).Unscoped().First(a, a.ID).Error
}
