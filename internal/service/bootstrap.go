package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"github.com/vbonduro/phonegallery/internal/photostore"
	"github.com/vbonduro/phonegallery/internal/seed"
)

// BackfillResult counts the outcome of an image backfill run.
type BackfillResult struct {
	Migrated int
	Failed   int
}

// Seed loads the starter catalog when the database is empty and returns the
// number of phones inserted. It does nothing once any phone exists.
func (s *PhoneService) Seed(ctx context.Context) (int, error) {
	count, err := s.phones.Count(ctx)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		s.logger.Debug("database already contains phones, skipping seed", "count", count)
		return 0, nil
	}

	phones := seed.Phones()
	if err := s.phones.CreateMany(ctx, phones); err != nil {
		return 0, fmt.Errorf("failed to seed phones: %w", err)
	}
	s.logger.Info("seeded starter phones", "count", len(phones))
	return len(phones), nil
}

// BackfillImages embeds the referenced image file into every phone that has
// no image data yet. Phones whose file cannot be read are logged and counted
// as failures; the run carries on with the next phone.
func (s *PhoneService) BackfillImages(ctx context.Context) (BackfillResult, error) {
	var result BackfillResult
	if s.images == nil {
		return result, fmt.Errorf("no image source configured")
	}

	refs, err := s.phones.ListMissingImageData(ctx)
	if err != nil {
		return result, err
	}
	s.logger.Info("image backfill started", "phones", len(refs))

	for _, ref := range refs {
		if ref.Path == "" {
			s.logger.Warn("phone has no image path", "phone_id", ref.ID)
			result.Failed++
			continue
		}

		dataURL, err := s.readDataURL(ctx, photostore.KeyFromPath(ref.Path))
		if err != nil {
			if errors.Is(err, photostore.ErrNotFound) {
				s.logger.Warn("image not found", "phone_id", ref.ID, "path", ref.Path)
			} else {
				s.logger.Error("failed to read image", "phone_id", ref.ID, "path", ref.Path, "error", err)
			}
			result.Failed++
			continue
		}

		if _, err := s.phones.SetImageData(ctx, ref.ID, dataURL); err != nil {
			s.logger.Error("failed to store image data", "phone_id", ref.ID, "error", err)
			result.Failed++
			continue
		}
		result.Migrated++
	}

	s.logger.Info("image backfill complete", "migrated", result.Migrated, "failed", result.Failed)
	return result, nil
}

func (s *PhoneService) readDataURL(ctx context.Context, key string) (string, error) {
	r, _, err := s.images.Get(ctx, key)
	if err != nil {
		return "", err
	}
	defer func() {
		if err := r.Close(); err != nil {
			s.logger.Error("failed to close image", "key", key, "error", err)
		}
	}()

	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", key, err)
	}
	return EncodeDataURL(photostore.MimeTypeFromExt(key), data), nil
}

// EncodeDataURL returns data as a base64 data URL of the given MIME type.
func EncodeDataURL(mimeType string, data []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// Initialize runs the one-time seed and image backfill. It is called once at
// startup, before any request is served. Failures are logged, not returned.
func (s *PhoneService) Initialize(ctx context.Context, seedPhones, backfill bool) {
	if seedPhones {
		if _, err := s.Seed(ctx); err != nil {
			s.logger.Error("seed failed", "error", err)
		}
	}
	if backfill {
		if _, err := s.BackfillImages(ctx); err != nil {
			s.logger.Error("image backfill failed", "error", err)
		}
	}
}
