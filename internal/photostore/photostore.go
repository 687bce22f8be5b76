package photostore

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"
)

// ErrNotFound is returned by Get when no image exists under the key.
var ErrNotFound = errors.New("image not found")

// PhotoStore holds path-referenced phone images. Keys are slash-separated
// paths relative to the image root, e.g. "phones/nokia-3310.jpg".
type PhotoStore interface {
	Save(ctx context.Context, dir, mimeType string, r io.Reader) (storageKey string, err error)
	Get(ctx context.Context, storageKey string) (io.ReadCloser, string, error)
}

// KeyFromPath turns an image path as stored on a phone ("/phones/x.jpg")
// into a storage key ("phones/x.jpg").
func KeyFromPath(p string) string {
	return strings.TrimPrefix(p, "/")
}

// PathFromKey is the inverse of KeyFromPath.
func PathFromKey(key string) string {
	return "/" + strings.TrimPrefix(key, "/")
}

// MimeTypeFromExt infers an image MIME type from the file extension,
// defaulting to JPEG.
func MimeTypeFromExt(name string) string {
	switch strings.ToLower(path.Ext(name)) {
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}

// ExtFromMimeType returns the file extension used when saving mimeType.
func ExtFromMimeType(mimeType string) string {
	switch mimeType {
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}
