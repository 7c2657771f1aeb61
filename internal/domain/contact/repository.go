package contact

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
)

type Repository interface {
	Create(ctx context.Context, m *Message) error
	GetByID(ctx context.Context, id int64) (*Message, error)
	List(ctx context.Context, f Filter) ([]Message, int64, error)
	CountByStatus(ctx context.Context) (map[Status]int64, error)
	MarkRead(ctx context.Context, id int64, at time.Time) error
	UpdateStatus(ctx context.Context, id int64, status Status, at time.Time) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	db *sqlx.DB
}

// NewRepository returns a repository writing placeholders in the dialect of
// db's driver.
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const columns = `id, name, email, subject, message, status, ip_address, user_agent, read_at, created_at, updated_at`

func (r *repository) Create(ctx context.Context, m *Message) error {
	query := r.db.Rebind(`
		INSERT INTO contact_messages (
			name, email, subject, message, status,
			ip_address, user_agent, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`)

	return r.db.QueryRowContext(ctx, query,
		m.Name, m.Email, m.Subject, m.Message, m.Status,
		m.IPAddress, m.UserAgent, m.CreatedAt, m.UpdatedAt,
	).Scan(&m.ID)
}

func (r *repository) GetByID(ctx context.Context, id int64) (*Message, error) {
	var m Message
	query := r.db.Rebind(`SELECT ` + columns + ` FROM contact_messages WHERE id = ?`)
	if err := r.db.GetContext(ctx, &m, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *repository) List(ctx context.Context, f Filter) ([]Message, int64, error) {
	var (
		where []string
		args  []any
	)
	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, f.Status)
	}
	if f.Search != "" {
		term := likeTerm(f.Search)
		where = append(where, `(LOWER(name) LIKE ? ESCAPE '\' OR LOWER(email) LIKE ? ESCAPE '\' OR LOWER(subject) LIKE ? ESCAPE '\' OR LOWER(message) LIKE ? ESCAPE '\')`)
		args = append(args, term, term, term, term)
	}

	cond := ""
	if len(where) > 0 {
		cond = " WHERE " + strings.Join(where, " AND ")
	}

	var total int64
	if err := r.db.GetContext(ctx, &total, r.db.Rebind(`SELECT COUNT(*) FROM contact_messages`+cond), args...); err != nil {
		return nil, 0, err
	}

	items := []Message{}
	query := r.db.Rebind(`SELECT ` + columns + ` FROM contact_messages` + cond +
		` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`)
	args = append(args, f.Page.Limit(), f.Page.Offset())
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *repository) CountByStatus(ctx context.Context) (map[Status]int64, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM contact_messages GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[Status]int64, len(Statuses))
	for _, s := range Statuses {
		counts[s] = 0
	}
	for rows.Next() {
		var (
			status Status
			n      int64
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

// MarkRead moves a new message to read. Messages in any other status are left
// alone.
func (r *repository) MarkRead(ctx context.Context, id int64, at time.Time) error {
	query := r.db.Rebind(`
		UPDATE contact_messages
		SET status = ?, read_at = ?, updated_at = ?
		WHERE id = ? AND status = ?`)
	_, err := r.db.ExecContext(ctx, query, StatusRead, at, at, id, StatusNew)
	return err
}

// UpdateStatus sets status. read_at is stamped the first time a message
// leaves new.
func (r *repository) UpdateStatus(ctx context.Context, id int64, status Status, at time.Time) error {
	var readAt any
	if status != StatusNew {
		readAt = at
	}
	query := r.db.Rebind(`
		UPDATE contact_messages
		SET status = ?, read_at = COALESCE(read_at, ?), updated_at = ?
		WHERE id = ?`)
	res, err := r.db.ExecContext(ctx, query, status, readAt, at, id)
	if err != nil {
		return err
	}
	return expectOne(res)
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM contact_messages WHERE id = ?`), id)
	if err != nil {
		return err
	}
	return expectOne(res)
}

func expectOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
