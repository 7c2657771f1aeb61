package post

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"csdept/internal/pkg/pagination"
	"csdept/internal/pkg/trashed"
)

type Repository interface {
	List(ctx context.Context, f Filter) ([]Post, int64, error)
	Find(ctx context.Context, id int64, scope trashed.Scope) (*Post, error)
	ListVisible(ctx context.Context, now time.Time, categoryID int64, page pagination.Params) ([]Post, int64, error)
	FindVisible(ctx context.Context, id int64, now time.Time) (*Post, error)
	OwnerExists(ctx context.Context, id int64) (bool, error)
	Create(ctx context.Context, p *Post) error
	Update(ctx context.Context, p *Post) error
	SoftDelete(ctx context.Context, p *Post) error
	Restore(ctx context.Context, p *Post) error
	ForceDelete(ctx context.Context, p *Post) error

	ListCategories(ctx context.Context) ([]Category, error)
	CategoryExists(ctx context.Context, id int64) (bool, error)
	CreateCategory(ctx context.Context, c *Category) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// Pinned posts first, then newest by publication date.
const listOrder = "pinned DESC, COALESCE(publish_at, created_at) DESC, id DESC"

// editable are the columns written by Update. Zero values are written too.
var editable = []string{"title", "content", "category_id", "status", "pinned", "publish_at", "expire_at"}

func (r *repository) List(ctx context.Context, f Filter) ([]Post, int64, error) {
	q := f.Trashed.Apply(r.db.WithContext(ctx).Model(&Post{}))

	if f.Search != "" {
		term := likeTerm(f.Search)
		q = q.Where(r.db.Where("LOWER(title) LIKE ? ESCAPE '\\'", term).
			Or("LOWER(content) LIKE ? ESCAPE '\\'", term))
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.CategoryID > 0 {
		q = q.Where("category_id = ?", f.CategoryID)
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []Post
	err := q.Preload("Category").
		Order(listOrder).
		Offset(f.Page.Offset()).
		Limit(f.Page.Limit()).
		Find(&items).Error
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *repository) Find(ctx context.Context, id int64, scope trashed.Scope) (*Post, error) {
	var p Post
	err := scope.Apply(r.db.WithContext(ctx)).Preload("Category").First(&p, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// visible narrows q to posts the public site may show at now. Trashed rows
// are already excluded by the soft-delete clause.
func visible(q *gorm.DB, now time.Time) *gorm.DB {
	return q.Where("status = ?", StatusPublished).
		Where("(publish_at IS NULL OR publish_at <= ?)", now).
		Where("(expire_at IS NULL OR expire_at > ?)", now)
}

func (r *repository) ListVisible(ctx context.Context, now time.Time, categoryID int64, page pagination.Params) ([]Post, int64, error) {
	q := visible(r.db.WithContext(ctx).Model(&Post{}), now)
	if categoryID > 0 {
		q = q.Where("category_id = ?", categoryID)
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []Post
	err := q.Preload("Category").
		Order(listOrder).
		Offset(page.Offset()).
		Limit(page.Limit()).
		Find(&items).Error
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// FindVisible loads a visible post with its category and active attachments.
func (r *repository) FindVisible(ctx context.Context, id int64, now time.Time) (*Post, error) {
	var p Post
	err := visible(r.db.WithContext(ctx), now).
		Preload("Category").
		Preload("Attachments", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC").Order("id ASC")
		}).
		First(&p, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// OwnerExists counts trashed posts too: a trashed post can still be restored
// and keeps its attachments.
func (r *repository) OwnerExists(ctx context.Context, id int64) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Unscoped().Model(&Post{}).Where("id = ?", id).Count(&n).Error
	return n > 0, err
}

func (r *repository) Create(ctx context.Context, p *Post) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(p).Error
}

func (r *repository) Update(ctx context.Context, p *Post) error {
	res := r.db.WithContext(ctx).Model(p).Select(editable).Updates(p)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) SoftDelete(ctx context.Context, p *Post) error {
	if err := r.db.WithContext(ctx).Delete(p).Error; err != nil {
		return err
	}
	return r.reload(ctx, p)
}

func (r *repository) Restore(ctx context.Context, p *Post) error {
	err := r.db.WithContext(ctx).Unscoped().Model(p).Update("deleted_at", nil).Error
	if err != nil {
		return err
	}
	return r.reload(ctx, p)
}

func (r *repository) ForceDelete(ctx context.Context, p *Post) error {
	res := r.db.WithContext(ctx).Unscoped().Delete(p)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) reload(ctx context.Context, p *Post) error {
	return r.db.WithContext(ctx).Unscoped().Preload("Category").First(p, p.ID).Error
}

func (r *repository) ListCategories(ctx context.Context) ([]Category, error) {
	var items []Category
	err := r.db.WithContext(ctx).Order("sort_order ASC").Order("id ASC").Find(&items).Error
	return items, err
}

func (r *repository) CategoryExists(ctx context.Context, id int64) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&Category{}).Where("id = ?", id).Count(&n).Error
	return n > 0, err
}

func (r *repository) CreateCategory(ctx context.Context, c *Category) error {
	return r.db.WithContext(ctx).Create(c).Error
}
