package imagestore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"belekbox/internal/model"

	"github.com/rs/zerolog"
)

// ProductsDir is the sub-directory product images are written to.
const ProductsDir = "products"

// fileStore implements Store on the local file system.
type fileStore struct {
	dir       string
	urlPrefix string
	logger    zerolog.Logger
}

// NewFileStore creates a store writing to dir/products and serving files
// under urlPrefix/products/. The directory is created if needed.
func NewFileStore(dir, urlPrefix string, logger zerolog.Logger) (Store, error) {
	logger = logger.With().Str("component", "file-image-store").Logger()

	if err := os.MkdirAll(filepath.Join(dir, ProductsDir), 0o755); err != nil {
		logger.Error().Err(err).Str("dir", dir).Msg("failed to create upload directory")
		return nil, fmt.Errorf("failed to create upload directory %s: %w", dir, err)
	}

	return &fileStore{
		dir:       dir,
		urlPrefix: strings.TrimRight(urlPrefix, "/"),
		logger:    logger,
	}, nil
}

// Save writes img to disk.
func (s *fileStore) Save(ctx context.Context, img model.Image) (string, error) {
	name := objectName(img.Filename)
	filePath := filepath.Join(s.dir, ProductsDir, name)

	if err := os.WriteFile(filePath, img.Data, 0o644); err != nil {
		s.logger.Error().Err(err).Str("file", filePath).Msg("failed to write image")
		return "", fmt.Errorf("failed to write image %s: %w", filePath, err)
	}

	url := path.Join(s.urlPrefix, ProductsDir, name)
	s.logger.Info().Str("file", filePath).Int("bytes", len(img.Data)).Msg("image saved")
	return url, nil
}

// Delete removes the file behind url.
func (s *fileStore) Delete(ctx context.Context, url string) error {
	name, ok := s.nameFromURL(url)
	if !ok {
		return nil
	}

	filePath := filepath.Join(s.dir, ProductsDir, name)
	if err := os.Remove(filePath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.Debug().Str("file", filePath).Msg("image already removed")
			return nil
		}
		s.logger.Error().Err(err).Str("file", filePath).Msg("failed to remove image")
		return fmt.Errorf("failed to remove image %s: %w", filePath, err)
	}

	s.logger.Info().Str("file", filePath).Msg("image removed")
	return nil
}

func (s *fileStore) nameFromURL(url string) (string, bool) {
	prefix := s.urlPrefix + "/" + ProductsDir + "/"
	if !strings.HasPrefix(url, prefix) {
		return "", false
	}
	name := path.Base(strings.TrimPrefix(url, prefix))
	if name == "." || name == "/" || name == ".." {
		return "", false
	}
	return name, true
}
