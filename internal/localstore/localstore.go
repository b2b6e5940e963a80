// Package localstore persists storefront state in a key-value blob store.
//
// A Backend stores opaque strings by key. Store layers typed accessors for
// the keys the storefront uses on top of any backend: the JSON-encoded cart
// and product cache, their timestamps, the season title and the admin token.
package localstore

import (
	"context"
	"fmt"
	"time"
)

// Keys used by the storefront.
const (
	KeyCart              = "cart"
	KeyCartLastUpdated   = "cart_last_updated"
	KeyProductsCache     = "products_cache"
	KeyProductsCacheTime = "products_cache_time"
	KeySeasonTitle       = "season_title"
	KeyAdminToken        = "admin_token"
)

// Backend is a persistent key-value blob store.
type Backend interface {
	// Get returns the value for key and whether it was present.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// Store provides typed access to storefront keys on top of a Backend.
type Store struct {
	backend Backend
}

// New creates a Store over backend.
func New(backend Backend) *Store {
	return &Store{backend: backend}
}

// Backend returns the underlying backend.
func (s *Store) Backend() Backend {
	return s.backend
}

// GetString returns the raw value for key; missing keys yield "".
func (s *Store) GetString(ctx context.Context, key string) (string, bool, error) {
	value, ok, err := s.backend.Get(ctx, key)
	if err != nil {
		return "", false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return value, ok, nil
}

// SetString stores a raw value.
func (s *Store) SetString(ctx context.Context, key, value string) error {
	if err := s.backend.Set(ctx, key, value); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// Delete removes key.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.backend.Delete(ctx, key); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// GetTime reads an RFC 3339 timestamp. A missing or unparsable value is
// reported as not present.
func (s *Store) GetTime(ctx context.Context, key string) (time.Time, bool, error) {
	value, ok, err := s.GetString(ctx, key)
	if err != nil || !ok {
		return time.Time{}, false, err
	}
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, false, nil
	}
	return t, true, nil
}

// SetTime stores t as an RFC 3339 timestamp.
func (s *Store) SetTime(ctx context.Context, key string, t time.Time) error {
	return s.SetString(ctx, key, t.UTC().Format(time.RFC3339Nano))
}

// SeasonTitle returns the stored season title or fallback.
func (s *Store) SeasonTitle(ctx context.Context, fallback string) (string, error) {
	title, ok, err := s.GetString(ctx, KeySeasonTitle)
	if err != nil {
		return fallback, err
	}
	if !ok || title == "" {
		return fallback, nil
	}
	return title, nil
}

// SetSeasonTitle stores the season title.
func (s *Store) SetSeasonTitle(ctx context.Context, title string) error {
	return s.SetString(ctx, KeySeasonTitle, title)
}

// AdminToken returns the saved admin bearer token, if any.
func (s *Store) AdminToken(ctx context.Context) (string, error) {
	token, _, err := s.GetString(ctx, KeyAdminToken)
	return token, err
}

// SetAdminToken saves the admin bearer token.
func (s *Store) SetAdminToken(ctx context.Context, token string) error {
	return s.SetString(ctx, KeyAdminToken, token)
}

// ClearAdminToken removes the saved admin bearer token.
func (s *Store) ClearAdminToken(ctx context.Context) error {
	return s.Delete(ctx, KeyAdminToken)
}
