package attachment

import (
	"context"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"csdept/internal/domain/activity"
	"csdept/internal/domain/auth"
	"csdept/internal/pkg/validator"
)

// Ingest stores files under owner and creates one attachment per file, in
// order. Files are checked for size before anything is stored. A storage or
// database failure part way returns the attachments created so far together
// with a *PartialUploadError; those rows are not rolled back.
func (s *Service) Ingest(ctx context.Context, actor auth.Actor, owner OwnerRef, files []*multipart.FileHeader) ([]Attachment, error) {
	if err := s.authz.Authorize(actor, auth.AbilityManageAttachments); err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, ErrNoFiles
	}
	if err := s.owners.Resolve(ctx, owner); err != nil {
		return nil, err
	}
	if err := s.CheckFiles(files); err != nil {
		return nil, err
	}

	order, err := s.repo.NextSortOrder(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("next sort order: %w", err)
	}

	created := make([]Attachment, 0, len(files))
	for _, fh := range files {
		a, err := s.ingestOne(ctx, owner, fh, order)
		if err != nil {
			return created, &PartialUploadError{Created: created, Filename: fh.Filename, Err: err}
		}
		order++
		created = append(created, *a)
		s.record(actor, a, activity.AttachmentCreated)
	}
	return created, nil
}

// CheckFiles applies the per-file size rules without storing anything.
func (s *Service) CheckFiles(files []*multipart.FileHeader) error {
	for _, fh := range files {
		if fh.Size <= 0 {
			return fmt.Errorf("%w: %s", ErrEmptyFile, fh.Filename)
		}
		if fh.Size > s.cfg.MaxFileSize {
			return fmt.Errorf("%w: %s", ErrFileTooLarge, fh.Filename)
		}
	}
	return nil
}

func (s *Service) ingestOne(ctx context.Context, owner OwnerRef, fh *multipart.FileHeader, order int) (*Attachment, error) {
	file, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer file.Close()

	mimeType, err := detectMime(fh, file)
	if err != nil {
		return nil, err
	}

	key := storagePath(owner, fh.Filename, mimeType)
	if err := s.store.Save(ctx, key, file, mimeType); err != nil {
		return nil, fmt.Errorf("store file: %w", err)
	}

	a := &Attachment{
		AttachableType: string(owner.Type),
		AttachableID:   owner.ID,
		Type:           TypeForMime(mimeType),
		Title:          ptr(fh.Filename),
		FileURL:        ptr(key),
		MimeType:       ptr(mimeType),
		FileSize:       ptr(fh.Size),
		SortOrder:      order,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		if rmErr := s.store.Delete(ctx, key); rmErr != nil {
			s.log.WithError(rmErr).WithField("path", key).Warn("failed to remove file after insert error")
		}
		return nil, fmt.Errorf("save attachment record: %w", err)
	}
	return a, nil
}

type LinkInput struct {
	Title string `json:"title" validate:"required,max=255"`
	URL   string `json:"url" validate:"required,url,max=2048"`
}

// AddLink creates a link attachment pointing at an external http(s) URL.
func (s *Service) AddLink(ctx context.Context, actor auth.Actor, owner OwnerRef, in LinkInput) (*Attachment, error) {
	if err := s.authz.Authorize(actor, auth.AbilityManageAttachments); err != nil {
		return nil, err
	}
	in.Title = strings.TrimSpace(in.Title)
	in.URL = strings.TrimSpace(in.URL)
	if err := ValidateLink(in); err != nil {
		return nil, err
	}
	if err := s.owners.Resolve(ctx, owner); err != nil {
		return nil, err
	}

	order, err := s.repo.NextSortOrder(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("next sort order: %w", err)
	}
	a := &Attachment{
		AttachableType: string(owner.Type),
		AttachableID:   owner.ID,
		Type:           TypeLink,
		Title:          ptr(in.Title),
		ExternalURL:    ptr(in.URL),
		SortOrder:      order,
	}
	if err := validateContent(a); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("save link attachment: %w", err)
	}

	s.record(actor, a, activity.AttachmentCreated)
	return a, nil
}

// ValidateLink reports ErrInvalidLink unless in has a title and an absolute
// http(s) URL.
func ValidateLink(in LinkInput) error {
	if fields := validator.Validate(in); fields != nil {
		return fmt.Errorf("%w: %v", ErrInvalidLink, fields)
	}
	if err := validator.Var(in.URL, "http_url"); err != nil {
		return ErrInvalidLink
	}
	return nil
}

// validateContent enforces that a row carries either a stored file or an
// external URL, never both and never neither.
func validateContent(a *Attachment) error {
	hasFile := deref(a.FileURL) != ""
	hasLink := deref(a.ExternalURL) != ""
	if hasFile == hasLink {
		return ErrContentConflict
	}
	if (a.Type == TypeLink) != hasLink {
		return ErrContentConflict
	}
	return nil
}

// TypeForMime classifies a MIME type: image/* is an image, everything else a
// document.
func TypeForMime(mimeType string) Type {
	if strings.HasPrefix(strings.ToLower(mimeType), "image/") {
		return TypeImage
	}
	return TypeDocument
}

// detectMime prefers the part's declared Content-Type and falls back to
// sniffing the first 512 bytes when it is missing or generic. file is rewound
// afterwards.
func detectMime(fh *multipart.FileHeader, file multipart.File) (string, error) {
	if declared := fh.Header.Get("Content-Type"); declared != "" {
		if mt, _, err := mime.ParseMediaType(declared); err == nil && mt != "" && mt != "application/octet-stream" {
			return mt, nil
		}
	}

	buf := make([]byte, 512)
	n, err := file.Read(buf)
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("read file: %w", err)
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewind file: %w", err)
	}
	mt, _, _ := mime.ParseMediaType(http.DetectContentType(buf[:n]))
	if mt == "" {
		mt = "application/octet-stream"
	}
	return mt, nil
}

// storagePath builds attachments/<owner>/<id>/<uuid>_<name><ext>.
func storagePath(owner OwnerRef, filename, mimeType string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" || len(ext) > 10 {
		ext = mimeToExt(mimeType)
	}
	name := fmt.Sprintf("%s_%s%s", uuid.NewString(), sanitizeName(filename), ext)
	return path.Join("attachments", strings.ToLower(string(owner.Type)), fmt.Sprint(owner.ID), name)
}

func sanitizeName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.TrimSuffix(name, filepath.Ext(name))
	name = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' {
			return r
		}
		return '_'
	}, name)
	if len(name) > 40 {
		name = name[:40]
	}
	if strings.Trim(name, "_") == "" {
		return "file"
	}
	return name
}

func mimeToExt(mimeType string) string {
	switch mimeType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	case "image/svg+xml":
		return ".svg"
	case "application/pdf":
		return ".pdf"
	case "application/zip":
		return ".zip"
	case "text/plain":
		return ".txt"
	default:
		return ".bin"
	}
}
