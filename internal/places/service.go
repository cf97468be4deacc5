package places

import (
	"context"
	"strings"

	"care-attendance/internal/platform/apierr"
	"care-attendance/internal/platform/docstore"
	"care-attendance/internal/platform/ids"
)

type Service struct {
	places *docstore.Collection[Place]
	clock  ids.Clock
	id     ids.IDGen
}

func NewService(col *docstore.Collection[Place], clock ids.Clock, id ids.IDGen) *Service {
	return &Service{places: col, clock: clock, id: id}
}

func (s *Service) List() []Place {
	return s.places.Snapshot()
}

func (s *Service) FindByID(id string) (Place, bool) {
	return s.places.Find(func(p Place) bool { return p.ID == id })
}

// Get is FindByID with a NOT_FOUND error.
func (s *Service) Get(id string) (Place, error) {
	p, ok := s.FindByID(id)
	if !ok {
		return Place{}, apierr.ErrNotFound("place not found")
	}
	return p, nil
}

func (s *Service) Add(ctx context.Context, req CreatePlaceRequest) (Place, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Memo = strings.TrimSpace(req.Memo)
	if err := apierr.Validate(req); err != nil {
		return Place{}, err
	}

	id, err := s.id.New()
	if err != nil {
		return Place{}, apierr.Internal(err, "failed to generate id")
	}
	now := s.clock.Now()
	p := Place{
		ID:         id,
		Name:       req.Name,
		HourlyRate: req.HourlyRate,
		Memo:       req.Memo,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	err = s.places.Mutate(ctx, func(items []Place) ([]Place, error) {
		return append(items, p), nil
	})
	if err != nil {
		return Place{}, apierr.Internal(err, "failed to save places")
	}
	return p, nil
}

// Update merges the patch into the place with id. found=false means no such
// place and nothing was written.
func (s *Service) Update(ctx context.Context, id string, req UpdatePlaceRequest) (Place, bool, error) {
	if req.Name != nil {
		v := strings.TrimSpace(*req.Name)
		req.Name = &v
	}
	if req.Memo != nil {
		v := strings.TrimSpace(*req.Memo)
		req.Memo = &v
	}
	if err := apierr.Validate(req); err != nil {
		return Place{}, false, err
	}

	var (
		updated Place
		found   bool
	)
	err := s.places.Mutate(ctx, func(items []Place) ([]Place, error) {
		for i := range items {
			if items[i].ID != id {
				continue
			}
			if req.Name != nil {
				items[i].Name = *req.Name
			}
			if req.HourlyRate != nil {
				items[i].HourlyRate = *req.HourlyRate
			}
			if req.Memo != nil {
				items[i].Memo = *req.Memo
			}
			items[i].UpdatedAt = s.clock.Now()
			updated, found = items[i], true
			break
		}
		if !found {
			return nil, errNoChange
		}
		return items, nil
	})
	if err == errNoChange {
		return Place{}, false, nil
	}
	if err != nil {
		return Place{}, false, apierr.Internal(err, "failed to save places")
	}
	return updated, true, nil
}

// Delete removes the place only. Schedules and attendance that reference it
// keep the dangling id.
func (s *Service) Delete(ctx context.Context, id string) (bool, error) {
	found := false
	err := s.places.Mutate(ctx, func(items []Place) ([]Place, error) {
		out := items[:0]
		for _, p := range items {
			if p.ID == id {
				found = true
				continue
			}
			out = append(out, p)
		}
		if !found {
			return nil, errNoChange
		}
		return out, nil
	})
	if err == errNoChange {
		return false, nil
	}
	if err != nil {
		return false, apierr.Internal(err, "failed to save places")
	}
	return true, nil
}

func (s *Service) Exclusive(ctx context.Context, fn func() error) error {
	return s.places.Exclusive(ctx, fn)
}
