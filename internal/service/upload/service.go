package upload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/splax/learnhub/internal/domain"
)

// sniffLen is how much of a file is read for content detection.
const sniffLen = 3072

var allowedTypes = []string{
	"image/png",
	"image/jpeg",
	"image/gif",
	"image/webp",
	"application/pdf",
	"application/zip",
	"text/plain",
}

// ErrTooLarge is returned when an upload exceeds the configured size.
var ErrTooLarge = errors.New("upload exceeds size limit")

// Repository persists upload metadata.
type Repository interface {
	CreateUpload(ctx context.Context, upload *domain.Upload) error
	GetUpload(ctx context.Context, id int64) (*domain.Upload, error)
	DeleteUpload(ctx context.Context, id int64) error
}

// Config controls where uploads land.
type Config struct {
	Dir        string
	MaxBytes   int64
	PublicPath string
}

// Service stores files in a flat directory under random names.
type Service struct {
	repo   Repository
	cfg    Config
	logger *slog.Logger
}

// New prepares the upload directory and returns the service.
func New(repo Repository, cfg Config, logger *slog.Logger) (Service, error) {
	if cfg.Dir == "" {
		return Service{}, errors.New("upload directory required")
	}
	if cfg.MaxBytes <= 0 {
		return Service{}, errors.New("upload size limit must be positive")
	}
	if cfg.PublicPath == "" {
		cfg.PublicPath = "/files"
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return Service{}, fmt.Errorf("create upload dir: %w", err)
	}
	return Service{repo: repo, cfg: cfg, logger: logger}, nil
}

// MaxBytes is the largest accepted file.
func (s Service) MaxBytes() int64 { return s.cfg.MaxBytes }

// Dir is the directory files are written to.
func (s Service) Dir() string { return s.cfg.Dir }

// Store detects the content type of r, rejects disallowed types and writes the
// file under a fresh UUID name.
func (s Service) Store(ctx context.Context, caller domain.Identity, filename string, r io.Reader) (*domain.Upload, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	head = head[:n]
	if n == 0 {
		return nil, domain.Invalid("file is empty")
	}

	mime := mimetype.Detect(head)
	if !Allowed(mime) {
		return nil, domain.Invalid("file type %s is not allowed", mime.String())
	}

	stored := uuid.NewString() + mime.Extension()
	target := filepath.Join(s.cfg.Dir, stored)
	size, err := s.write(target, io.MultiReader(bytes.NewReader(head), r))
	if err != nil {
		return nil, err
	}

	upload := &domain.Upload{
		UserID:       caller.ID,
		OriginalName: cleanName(filename),
		StoredName:   stored,
		ContentType:  mime.String(),
		Size:         size,
		URL:          path.Join(s.cfg.PublicPath, stored),
	}
	if err := s.repo.CreateUpload(ctx, upload); err != nil {
		_ = os.Remove(target)
		return nil, err
	}
	s.logger.Info("file uploaded", "upload_id", upload.ID, "user_id", caller.ID, "content_type", upload.ContentType, "size", size)
	return upload, nil
}

func (s Service) write(target string, r io.Reader) (int64, error) {
	f, err := os.OpenFile(target, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return 0, fmt.Errorf("create upload file: %w", err)
	}
	size, err := io.Copy(f, io.LimitReader(r, s.cfg.MaxBytes+1))
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err == nil && size > s.cfg.MaxBytes {
		err = ErrTooLarge
	}
	if err != nil {
		_ = os.Remove(target)
		return 0, err
	}
	return size, nil
}

// Get returns upload metadata to its owner or an admin.
func (s Service) Get(ctx context.Context, caller domain.Identity, id int64) (*domain.Upload, error) {
	upload, err := s.repo.GetUpload(ctx, id)
	if err != nil {
		return nil, err
	}
	if upload.UserID != caller.ID && !caller.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	return upload, nil
}

// Delete removes the metadata and the stored file.
func (s Service) Delete(ctx context.Context, caller domain.Identity, id int64) error {
	upload, err := s.Get(ctx, caller, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteUpload(ctx, id); err != nil {
		return err
	}
	target := filepath.Join(s.cfg.Dir, filepath.Base(upload.StoredName))
	if err := os.Remove(target); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.logger.Warn("remove upload file failed", "upload_id", id, "error", err)
	}
	return nil
}

// Allowed reports whether the detected type is accepted. Parents are not
// consulted, so markup detected as a child of text/plain stays rejected.
func Allowed(mime *mimetype.MIME) bool {
	for _, t := range allowedTypes {
		if mime.Is(t) {
			return true
		}
	}
	return false
}

func cleanName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" {
		return "upload"
	}
	return name
}
