// Package app wires configuration, storage and the domain services together.
// Both the HTTP server and cmsctl build on it.
package app

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"csdept/internal/config"
	"csdept/internal/database"
	"csdept/internal/domain/activity"
	"csdept/internal/domain/attachment"
	"csdept/internal/domain/auth"
	"csdept/internal/domain/contact"
	"csdept/internal/domain/post"
	"csdept/internal/pkg/jwt"
	"csdept/internal/pkg/markdown"
	"csdept/internal/storage"
)

type App struct {
	Config  *config.Config
	Log     *logrus.Logger
	DB      *gorm.DB
	SQL     *sqlx.DB
	Storage storage.Storage
	Tokens  *jwt.Service
	Policy  *auth.Policy
	Hub     *activity.Hub
	Owners  *attachment.Registry

	Users       auth.Repository
	Auth        *auth.Service
	Attachments *attachment.Service
	PostRepo    post.Repository
	Posts       *post.Service
	Contact     *contact.Service
}

// Models lists every gorm model, in migration order.
func Models() []any {
	return []any{
		&auth.User{},
		&post.Category{},
		&post.Post{},
		&attachment.Attachment{},
		&contact.Message{},
	}
}

func New(ctx context.Context, cfg *config.Config, log *logrus.Logger) (*App, error) {
	db, err := database.Connect(cfg.DatabaseURL, log)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	sqlDB, err := database.NewSQLX(db)
	if err != nil {
		return nil, fmt.Errorf("open sqlx: %w", err)
	}
	store, err := storage.New(ctx, cfg.Storage, log)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	a := &App{
		Config:  cfg,
		Log:     log,
		DB:      db,
		SQL:     sqlDB,
		Storage: store,
		Tokens:  jwt.New(cfg.JWT.Secret, cfg.JWT.TTL),
		Policy:  auth.NewPolicy(),
		Hub:     activity.NewHub(log),
		Owners:  attachment.NewRegistry(),
	}

	a.Users = auth.NewRepository(db)
	a.Auth = auth.NewService(a.Users, a.Tokens)

	a.Attachments = attachment.NewService(
		attachment.NewRepository(db),
		a.Owners,
		store,
		a.Policy,
		a.Hub,
		log,
		attachment.Config{
			MaxFileSize: cfg.Attachments.MaxFileSize,
			PurgeFiles:  cfg.PurgeFilesOnForceDelete(),
		},
	)

	a.PostRepo = post.NewRepository(db)
	a.Posts = post.NewService(a.PostRepo, a.Attachments, a.Policy, a.Hub, markdown.NewRenderer(), log)
	a.Owners.Register(attachment.OwnerPost, a.Posts.Resolver())

	a.Contact = contact.NewService(contact.NewRepository(sqlDB), a.Policy, a.Hub, log)
	return a, nil
}

func (a *App) Migrate() error {
	return database.Migrate(a.DB, Models()...)
}

func (a *App) Close() error {
	sqlDB, err := a.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
