package imagestore

import (
	"context"
	"errors"

	"belekbox/internal/model"

	"github.com/rs/zerolog"
)

// fallbackStore tries S3 first, then falls back to the local file system.
type fallbackStore struct {
	s3Store   Store
	fileStore Store
	s3Enabled bool
	logger    zerolog.Logger
}

// NewFallbackStore creates a store that saves to S3 when enabled and falls
// back to the local file system when S3 is disabled, missing or failing.
func NewFallbackStore(s3Store, fileStore Store, s3Enabled bool, logger zerolog.Logger) Store {
	return &fallbackStore{
		s3Store:   s3Store,
		fileStore: fileStore,
		s3Enabled: s3Enabled,
		logger:    logger.With().Str("component", "fallback-image-store").Logger(),
	}
}

// Save stores img on S3 or, failing that, locally.
func (s *fallbackStore) Save(ctx context.Context, img model.Image) (string, error) {
	if s.s3Enabled && s.s3Store != nil {
		url, err := s.s3Store.Save(ctx, img)
		if err == nil {
			return url, nil
		}

		s.logger.Warn().
			Err(err).
			Str("filename", img.Filename).
			Msg("failed to save image to S3, falling back to local file system")
	} else {
		s.logger.Debug().
			Bool("s3_enabled", s.s3Enabled).
			Bool("has_s3_store", s.s3Store != nil).
			Msg("S3 disabled or not configured, using local file system")
	}

	return s.fileStore.Save(ctx, img)
}

// Delete asks every configured store to remove url. Each store ignores URLs
// it does not own.
func (s *fallbackStore) Delete(ctx context.Context, url string) error {
	var errs []error
	if s.s3Store != nil {
		errs = append(errs, s.s3Store.Delete(ctx, url))
	}
	errs = append(errs, s.fileStore.Delete(ctx, url))
	return errors.Join(errs...)
}
