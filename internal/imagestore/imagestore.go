// Package imagestore stores uploaded product images and hands back the URL
// under which each image is served.
package imagestore

import (
	"context"
	"path/filepath"
	"strings"

	"belekbox/internal/model"

	"github.com/google/uuid"
)

// Store saves and removes product images.
type Store interface {
	// Save stores img under a fresh unique name and returns its public URL.
	Save(ctx context.Context, img model.Image) (string, error)

	// Delete removes the image served at url. URLs the store does not own
	// and images that are already gone are ignored.
	Delete(ctx context.Context, url string) error
}

// objectName returns a random file name keeping the extension of filename,
// e.g. "3f2a...9c.jpg".
func objectName(filename string) string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return id + strings.ToLower(filepath.Ext(filename))
}
