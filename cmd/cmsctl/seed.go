package main

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"csdept/internal/app"
	"csdept/internal/config"
	"csdept/internal/domain/attachment"
	"csdept/internal/domain/auth"
	"csdept/internal/domain/post"
	"csdept/internal/pkg/locale"
	"csdept/internal/pkg/pagination"
	"csdept/internal/pkg/trashed"
)

var seedCategories = []post.Category{
	{Slug: "news", Name: locale.Text{locale.ZhTW: "系所公告", locale.En: "News"}, SortOrder: 1},
	{Slug: "events", Name: locale.Text{locale.ZhTW: "活動訊息", locale.En: "Events"}, SortOrder: 2},
	{Slug: "admissions", Name: locale.Text{locale.ZhTW: "招生資訊", locale.En: "Admissions"}, SortOrder: 3},
}

type seedPost struct {
	category string
	input    post.Input
}

func seedPosts(now time.Time) []seedPost {
	return []seedPost{
		{
			category: "news",
			input: post.Input{
				Title:   locale.Text{locale.ZhTW: "歡迎新生", locale.En: "Welcome, new students"},
				Content: locale.Text{locale.ZhTW: "新生說明會將於**系館大講堂**舉行。", locale.En: "Orientation takes place in the **main lecture hall**."},
				Status:  post.StatusPublished,
				Pinned:  true,
			},
		},
		{
			category: "events",
			input: post.Input{
				Title:     locale.Text{locale.ZhTW: "專題演講：分散式系統", locale.En: "Talk: distributed systems"},
				Content:   locale.Text{locale.En: "Slides and the recording are linked below."},
				Status:    post.StatusPublished,
				PublishAt: ptr(now.Add(-48 * time.Hour)),
				Links: []attachment.LinkInput{
					{Title: "Recording", URL: "https://example.edu/talks/distributed-systems"},
				},
			},
		},
		{
			category: "admissions",
			input: post.Input{
				Title:    locale.Text{locale.ZhTW: "碩士班招生簡章", locale.En: "Master's admissions brochure"},
				Content:  locale.Text{locale.ZhTW: "報名期間請見附件。"},
				Status:   post.StatusDraft,
				ExpireAt: ptr(now.AddDate(0, 3, 0)),
			},
		},
	}
}

func newSeedCmd(cfg *config.Config, log *logrus.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert sample categories and posts into an empty database",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, cfg, log, func(a *app.App) error {
				created, err := seed(cmd.Context(), a, time.Now().UTC())
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "seeded %d categories and %d posts\n", created.categories, created.posts)
				return err
			})
		},
	}
}

type seedResult struct {
	categories int
	posts      int
}

// seed creates missing categories by slug and adds sample posts only when no
// post exists yet, so running it twice is harmless.
func seed(ctx context.Context, a *app.App, now time.Time) (seedResult, error) {
	var res seedResult

	existing, err := a.PostRepo.ListCategories(ctx)
	if err != nil {
		return res, err
	}
	bySlug := make(map[string]int64, len(existing))
	for _, c := range existing {
		bySlug[c.Slug] = c.ID
	}
	for _, c := range seedCategories {
		if _, ok := bySlug[c.Slug]; ok {
			continue
		}
		c := c
		if err := a.PostRepo.CreateCategory(ctx, &c); err != nil {
			return res, fmt.Errorf("create category %s: %w", c.Slug, err)
		}
		bySlug[c.Slug] = c.ID
		res.categories++
	}

	_, total, err := a.PostRepo.List(ctx, post.Filter{Trashed: trashed.Any, Page: pagination.Parse("1", "1")})
	if err != nil {
		return res, err
	}
	if total > 0 {
		return res, nil
	}

	for _, sp := range seedPosts(now) {
		in := sp.input
		in.CategoryID = ptr(bySlug[sp.category])
		if _, err := a.Posts.Create(ctx, auth.System, in); err != nil {
			return res, fmt.Errorf("create post %q: %w", in.Title.Get(locale.En), err)
		}
		res.posts++
	}
	return res, nil
}

func ptr[T any](v T) *T { return &v }
