// Package readings records water-chemistry readings against the reading-type catalogue.
package readings

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"poolkeeper/internal/bootstrap/logging"
	"poolkeeper/internal/domain/pool"
	"poolkeeper/internal/errs"
	"poolkeeper/internal/ports"
)

const DefaultWindowDays = 90

type Service struct {
	repo  ports.ReadingRepository
	clock ports.Clock
}

func NewService(repo ports.ReadingRepository, clock ports.Clock) *Service {
	return &Service{repo: repo, clock: clock}
}

type TypeInput struct {
	Slug     string
	Name     string
	Unit     string
	Low      *float64
	High     *float64
	IsActive bool
}

type ReadingInput struct {
	Slug        string
	Value       float64
	ReadingDate time.Time
	Notes       string
}

func (s *Service) ListTypes(ctx context.Context) ([]pool.ReadingType, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	return s.repo.ListActiveTypes(ctx)
}

func (s *Service) CreateType(ctx context.Context, input TypeInput) (pool.ReadingType, error) {
	if err := s.check(ctx); err != nil {
		return pool.ReadingType{}, err
	}

	slug := strings.TrimSpace(input.Slug)
	if slug == "" {
		return pool.ReadingType{}, pool.ErrSlugRequired
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return pool.ReadingType{}, pool.ErrNameRequired
	}

	return s.repo.CreateType(ctx, pool.ReadingType{
		Slug:         slug,
		Name:         name,
		Unit:         strings.TrimSpace(input.Unit),
		Low:          input.Low,
		High:         input.High,
		IsActive:     input.IsActive,
		DisplayOrder: 99,
	})
}

// SeedTypes upserts the given catalogue entries by slug.
func (s *Service) SeedTypes(ctx context.Context, types []pool.ReadingType) error {
	if err := s.check(ctx); err != nil {
		return err
	}
	for _, rt := range types {
		if err := s.repo.UpsertType(ctx, rt); err != nil {
			return errs.Wrapf(err, "seed reading type %q", rt.Slug)
		}
	}
	logging.Info(logging.With(ctx, "usecase.readings"), "reading types seeded", slog.Int("count", len(types)))
	return nil
}

// CreateReading stores a reading for the type named by slug. An unknown slug is a
// validation error because it is part of the request body.
func (s *Service) CreateReading(ctx context.Context, ownerID uuid.UUID, input ReadingInput) (pool.Reading, error) {
	if err := s.check(ctx); err != nil {
		return pool.Reading{}, err
	}
	if input.ReadingDate.IsZero() {
		return pool.Reading{}, errs.Invalid("reading_date is required")
	}

	rt, err := s.repo.GetTypeBySlug(ctx, strings.TrimSpace(input.Slug))
	if err != nil {
		if errs.IsNotFound(err) {
			return pool.Reading{}, errs.Invalid("unknown reading type: %s", input.Slug)
		}
		return pool.Reading{}, err
	}

	var notes *string
	if trimmed := strings.TrimSpace(input.Notes); trimmed != "" {
		notes = &trimmed
	}

	return s.repo.CreateReading(ctx, pool.Reading{
		OwnerID:     ownerID,
		TypeID:      rt.ID,
		Value:       input.Value,
		ReadingDate: pool.DateOf(input.ReadingDate),
		Notes:       notes,
		TypeSlug:    rt.Slug,
		TypeName:    rt.Name,
		Unit:        rt.Unit,
	})
}

// ListReadings returns the owner's readings of one type from the last days days, oldest first.
func (s *Service) ListReadings(ctx context.Context, ownerID uuid.UUID, slug string, days int) ([]pool.Reading, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	if days < 0 {
		return nil, errs.Invalid("days must not be negative")
	}
	if days == 0 {
		days = DefaultWindowDays
	}

	rt, err := s.repo.GetTypeBySlug(ctx, strings.TrimSpace(slug))
	if err != nil {
		return nil, err
	}

	items, err := s.repo.ListReadings(ctx, ownerID, rt.ID, pool.AddDays(s.clock.Today(), -days))
	if err != nil {
		return nil, err
	}
	for i := range items {
		items[i].TypeSlug, items[i].TypeName, items[i].Unit = rt.Slug, rt.Name, rt.Unit
	}
	return items, nil
}

func (s *Service) DeleteReading(ctx context.Context, ownerID, readingID uuid.UUID) error {
	if err := s.check(ctx); err != nil {
		return err
	}
	return s.repo.DeleteReading(ctx, ownerID, readingID)
}

func (s *Service) check(ctx context.Context) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return errs.Wrap(err, "check context")
	}
	if s.repo == nil {
		return errors.New("reading repository is required")
	}
	if s.clock == nil {
		return errors.New("clock is required")
	}
	return nil
}
