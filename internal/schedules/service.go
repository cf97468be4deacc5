package schedules

import (
	"context"
	"errors"
	"sort"
	"time"

	"care-attendance/internal/platform/apierr"
	"care-attendance/internal/platform/docstore"
	"care-attendance/internal/platform/ids"
)

var errNoChange = errors.New("no change")

type Service struct {
	schedules *docstore.Collection[Schedule]
	places    PlaceLookup
	clock     ids.Clock
	id        ids.IDGen
}

func NewService(col *docstore.Collection[Schedule], places PlaceLookup, clock ids.Clock, id ids.IDGen) *Service {
	return &Service{schedules: col, places: places, clock: clock, id: id}
}

// List filters by place and/or weekday; a weekday filter only returns active entries.
func (s *Service) List(q ListQuery) []Schedule {
	out := []Schedule{}
	for _, sc := range s.schedules.Snapshot() {
		if q.PlaceID != "" && sc.PlaceID != q.PlaceID {
			continue
		}
		if q.DayOfWeek != nil && (sc.DayOfWeek != *q.DayOfWeek || !sc.IsActive) {
			continue
		}
		out = append(out, sc)
	}
	return out
}

func (s *Service) ListByPlace(placeID string) []Schedule {
	return s.List(ListQuery{PlaceID: placeID})
}

func (s *Service) ListByDay(dayOfWeek int) []Schedule {
	return s.List(ListQuery{DayOfWeek: &dayOfWeek})
}

func (s *Service) FindByID(id string) (Schedule, bool) {
	return s.schedules.Find(func(sc Schedule) bool { return sc.ID == id })
}

func (s *Service) Add(ctx context.Context, req CreateScheduleRequest) (Schedule, error) {
	if err := apierr.Validate(req); err != nil {
		return Schedule{}, err
	}
	if _, ok := s.places.FindByID(req.PlaceID); !ok {
		return Schedule{}, apierr.ErrNotFound("place not found")
	}
	sc, err := s.newSchedule(req)
	if err != nil {
		return Schedule{}, err
	}
	err = s.schedules.Mutate(ctx, func(items []Schedule) ([]Schedule, error) {
		return append(items, sc), nil
	})
	if err != nil {
		return Schedule{}, apierr.Internal(err, "failed to save schedules")
	}
	return sc, nil
}

func (s *Service) newSchedule(req CreateScheduleRequest) (Schedule, error) {
	id, err := s.id.New()
	if err != nil {
		return Schedule{}, apierr.Internal(err, "failed to generate id")
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	now := s.clock.Now()
	return Schedule{
		ID:        id,
		PlaceID:   req.PlaceID,
		DayOfWeek: req.DayOfWeek,
		StartTime: normalizeClock(req.StartTime),
		EndTime:   normalizeClock(req.EndTime),
		IsActive:  active,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *Service) Update(ctx context.Context, id string, req UpdateScheduleRequest) (Schedule, bool, error) {
	if err := apierr.Validate(req); err != nil {
		return Schedule{}, false, err
	}
	var (
		updated Schedule
		found   bool
	)
	err := s.schedules.Mutate(ctx, func(items []Schedule) ([]Schedule, error) {
		for i := range items {
			if items[i].ID == id {
				applyPatch(&items[i], req, s.clock.Now())
				updated, found = items[i], true
				return items, nil
			}
		}
		return nil, errNoChange
	})
	if errors.Is(err, errNoChange) {
		return Schedule{}, false, nil
	}
	if err != nil {
		return Schedule{}, false, apierr.Internal(err, "failed to save schedules")
	}
	return updated, found, nil
}

func applyPatch(sc *Schedule, req UpdateScheduleRequest, now time.Time) {
	if req.StartTime != nil {
		sc.StartTime = normalizeClock(*req.StartTime)
	}
	if req.EndTime != nil {
		sc.EndTime = normalizeClock(*req.EndTime)
	}
	if req.IsActive != nil {
		sc.IsActive = *req.IsActive
	}
	sc.UpdatedAt = now
}

// normalizeClock zero-pads "9:00" to "09:00" so start times sort as strings.
func normalizeClock(v string) string {
	t, err := time.Parse(TimeLayout, v)
	if err != nil {
		return v
	}
	return t.Format(TimeLayout)
}

// ValidateClock accepts only zero-padded HH:MM.
func ValidateClock(v string) error {
	if len(v) != len(TimeLayout) {
		return apierr.ErrInvalid("time must be HH:MM")
	}
	if _, err := time.Parse(TimeLayout, v); err != nil {
		return apierr.ErrInvalid("time must be HH:MM")
	}
	return nil
}

func (s *Service) Delete(ctx context.Context, id string) (bool, error) {
	found := false
	err := s.schedules.Mutate(ctx, func(items []Schedule) ([]Schedule, error) {
		out := items[:0]
		for _, sc := range items {
			if sc.ID == id {
				found = true
				continue
			}
			out = append(out, sc)
		}
		if !found {
			return nil, errNoChange
		}
		return out, nil
	})
	if errors.Is(err, errNoChange) {
		return false, nil
	}
	if err != nil {
		return false, apierr.Internal(err, "failed to save schedules")
	}
	return true, nil
}

// UpsertForDay updates the entry for (placeID, dayOfWeek) in place, or creates
// it. created reports which happened.
func (s *Service) UpsertForDay(ctx context.Context, placeID string, dayOfWeek int, req UpdateScheduleRequest) (Schedule, bool, error) {
	if err := apierr.Validate(req); err != nil {
		return Schedule{}, false, err
	}
	if dayOfWeek < 0 || dayOfWeek > 6 {
		return Schedule{}, false, apierr.ErrInvalid("dayOfWeek must be between 0 and 6")
	}
	if _, ok := s.places.FindByID(placeID); !ok {
		return Schedule{}, false, apierr.ErrNotFound("place not found")
	}

	var (
		result  Schedule
		created bool
	)
	err := s.schedules.Mutate(ctx, func(items []Schedule) ([]Schedule, error) {
		for i := range items {
			if items[i].PlaceID == placeID && items[i].DayOfWeek == dayOfWeek {
				applyPatch(&items[i], req, s.clock.Now())
				result = items[i]
				return items, nil
			}
		}

		create := CreateScheduleRequest{PlaceID: placeID, DayOfWeek: dayOfWeek, IsActive: req.IsActive}
		if req.StartTime != nil {
			create.StartTime = *req.StartTime
		}
		if req.EndTime != nil {
			create.EndTime = *req.EndTime
		}
		if err := apierr.Validate(create); err != nil {
			return nil, err
		}
		sc, err := s.newSchedule(create)
		if err != nil {
			return nil, err
		}
		result, created = sc, true
		return append(items, sc), nil
	})
	if err != nil {
		return Schedule{}, false, apierr.Internal(err, "failed to save schedules")
	}
	return result, created, nil
}

// ActiveForToday returns today's active schedules joined with their places,
// skipping deleted places, ordered by start time.
func (s *Service) ActiveForToday() []ScheduledVisit {
	today := int(s.clock.Now().Weekday())
	out := []ScheduledVisit{}
	for _, sc := range s.ListByDay(today) {
		p, ok := s.places.FindByID(sc.PlaceID)
		if !ok {
			continue
		}
		out = append(out, ScheduledVisit{Schedule: sc, Place: p})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartTime < out[j].StartTime })
	return out
}

func (s *Service) Exclusive(ctx context.Context, fn func() error) error {
	return s.schedules.Exclusive(ctx, fn)
}
