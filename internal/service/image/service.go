// Package image stores uploaded images for embedding in documents.
package image

import (
	"encoding/hex"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"knowhub/internal/config"
	"knowhub/internal/domain"
)

// extensions maps the accepted content types to the stored file extension.
var extensions = map[string]string{
	"image/jpeg":    ".jpg",
	"image/png":     ".png",
	"image/gif":     ".gif",
	"image/webp":    ".webp",
	"image/svg+xml": ".svg",
}

// Service writes images under imagesDir, sharded into year/month
// directories, with random names so uploads never collide.
type Service struct {
	imagesDir string
	logger    *slog.Logger
}

func NewService(imagesDir string, logger *slog.Logger) *Service {
	return &Service{imagesDir: imagesDir, logger: logger}
}

// Image is one stored image in a listing.
type Image struct {
	Path       string    `json:"path"`
	Size       int64     `json:"size"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// Upload stores an image and returns its path relative to the images
// directory.
func (s *Service) Upload(contentType string, data []byte) (string, error) {
	ext, ok := extensions[strings.ToLower(contentType)]
	if !ok {
		return "", fmt.Errorf("%w: unsupported image type %q", domain.ErrValidation, contentType)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty image", domain.ErrValidation)
	}
	if len(data) > config.MaxImageSize {
		return "", fmt.Errorf("%w: image exceeds %d bytes", domain.ErrValidation, config.MaxImageSize)
	}

	now := time.Now().UTC()
	dir := filepath.Join(s.imagesDir, now.Format("2006"), now.Format("01"))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create images directory: %w", err)
	}

	id := uuid.New()
	name := hex.EncodeToString(id[:]) + ext
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}

	rel := filepath.ToSlash(filepath.Join(now.Format("2006"), now.Format("01"), name))
	s.logger.Info("image uploaded", "path", rel, "bytes", len(data))
	return rel, nil
}

// List returns all stored images, most recently uploaded first.
func (s *Service) List() ([]Image, error) {
	var images []Image
	err := filepath.WalkDir(s.imagesDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return filepath.SkipAll
			}
			return err
		}
		if d.IsDir() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(s.imagesDir, path)
		if err != nil {
			return err
		}

		images = append(images, Image{
			Path:       filepath.ToSlash(rel),
			Size:       info.Size(),
			UploadedAt: info.ModTime().UTC(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}

	sort.Slice(images, func(i, j int) bool {
		return images[i].UploadedAt.After(images[j].UploadedAt)
	})
	if images == nil {
		images = []Image{}
	}
	return images, nil
}
