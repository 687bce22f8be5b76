package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/vbonduro/phonegallery/internal/domain"
	"github.com/vbonduro/phonegallery/internal/photostore"
	"github.com/vbonduro/phonegallery/internal/stats"
	"github.com/vbonduro/phonegallery/internal/store"
)

// phoneRepository is the subset of store.PhoneStore that PhoneService requires.
type phoneRepository interface {
	Create(ctx context.Context, p *domain.Phone) (*domain.Phone, error)
	CreateMany(ctx context.Context, phones []*domain.Phone) error
	GetByID(ctx context.Context, id int64) (*domain.Phone, error)
	List(ctx context.Context) ([]*domain.Phone, error)
	Update(ctx context.Context, id int64, p *domain.Phone) (*domain.Phone, error)
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int, error)
	ListMissingImageData(ctx context.Context) ([]store.ImageRef, error)
	SetImageData(ctx context.Context, id int64, data string) (bool, error)
}

// ValidationError reports input that cannot be stored. Its message is safe to
// show to clients.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

const msgMissingFields = "Missing required fields: brand, name, yearStart, image"

// PhoneInput is a complete phone as submitted by a client. Create and Update
// both treat it as the full record: anything left out is stored as absent.
type PhoneInput struct {
	Brand     string
	Name      string
	YearStart int
	YearEnd   *int
	Kept      *bool
	Liked     *bool
	Image     string
	domain.Specs
}

type Options struct {
	// RequireImage rejects phones submitted without an image. When false an
	// empty image is stored as an empty path.
	RequireImage bool
}

type PhoneService struct {
	phones phoneRepository
	images photostore.PhotoStore
	opts   Options
	logger *slog.Logger
	now    func() time.Time
}

func NewPhoneService(phones phoneRepository, images photostore.PhotoStore, opts Options, logger *slog.Logger) *PhoneService {
	return &PhoneService{
		phones: phones,
		images: images,
		opts:   opts,
		logger: logger,
		now:    time.Now,
	}
}

func (s *PhoneService) ListPhones(ctx context.Context) ([]*domain.Phone, error) {
	return s.phones.List(ctx)
}

// GetPhone returns nil, nil when the phone does not exist.
func (s *PhoneService) GetPhone(ctx context.Context, id int64) (*domain.Phone, error) {
	return s.phones.GetByID(ctx, id)
}

func (s *PhoneService) CreatePhone(ctx context.Context, in PhoneInput) (*domain.Phone, error) {
	p, err := s.toPhone(in)
	if err != nil {
		return nil, err
	}

	created, err := s.phones.Create(ctx, p)
	if err != nil {
		return nil, err
	}
	s.logger.Info("phone created", "id", created.ID, "brand", created.Brand, "name", created.Name)
	return created, nil
}

// UpdatePhone replaces every field of the phone. It returns store.ErrNotFound
// when the phone does not exist.
func (s *PhoneService) UpdatePhone(ctx context.Context, id int64, in PhoneInput) (*domain.Phone, error) {
	p, err := s.toPhone(in)
	if err != nil {
		return nil, err
	}

	updated, err := s.phones.Update(ctx, id, p)
	if err != nil {
		return nil, err
	}
	s.logger.Info("phone updated", "id", id)
	return updated, nil
}

// DeletePhone returns store.ErrNotFound when the phone does not exist.
func (s *PhoneService) DeletePhone(ctx context.Context, id int64) error {
	if err := s.phones.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("phone deleted", "id", id)
	return nil
}

func (s *PhoneService) Statistics(ctx context.Context) (stats.Statistics, error) {
	phones, err := s.phones.List(ctx)
	if err != nil {
		return stats.Statistics{}, fmt.Errorf("failed to list phones: %w", err)
	}
	return stats.Compute(phones, s.now().Year()), nil
}

// toPhone validates in and routes the image to the column it belongs in: data
// URLs go to ImageData and clear the path, anything else is a path.
func (s *PhoneService) toPhone(in PhoneInput) (*domain.Phone, error) {
	brand := strings.TrimSpace(in.Brand)
	name := strings.TrimSpace(in.Name)
	image := strings.TrimSpace(in.Image)

	if brand == "" || name == "" || in.YearStart <= 0 || (image == "" && s.opts.RequireImage) {
		return nil, &ValidationError{Msg: msgMissingFields}
	}

	yearEnd := in.YearEnd
	if yearEnd != nil && *yearEnd == 0 {
		yearEnd = nil
	}
	if yearEnd != nil && *yearEnd < in.YearStart {
		return nil, &ValidationError{Msg: "yearEnd must not be before yearStart"}
	}

	p := &domain.Phone{
		Brand:     brand,
		Name:      name,
		YearStart: in.YearStart,
		YearEnd:   yearEnd,
		Kept:      in.Kept != nil && *in.Kept,
		Liked:     in.Liked == nil || *in.Liked,
		Specs:     in.Specs,
	}
	p.Specs.Normalize()

	if domain.IsDataURL(image) {
		p.ImageData = &image
	} else {
		p.ImagePath = image
	}
	return p, nil
}
