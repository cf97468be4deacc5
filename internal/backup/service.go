package backup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/tidwall/jsonc"

	"care-attendance/internal/attendance"
	"care-attendance/internal/places"
	"care-attendance/internal/platform/apierr"
	"care-attendance/internal/platform/docstore"
	"care-attendance/internal/platform/ids"
	"care-attendance/internal/platform/kv"
	"care-attendance/internal/schedules"
)

const exportDateLayout = "2006-01-02T15:04:05.000Z"

// Dataset is a service holding one stored dataset in memory. Exclusive
// blocks its mutations while fn runs and reloads the dataset afterwards.
type Dataset interface {
	Exclusive(ctx context.Context, fn func() error) error
}

type Service struct {
	store    kv.Store
	clock    ids.Clock
	datasets []Dataset
}

// NewService takes the datasets in lock order. A dataset whose mutations
// read another one must come before it.
func NewService(store kv.Store, clock ids.Clock, datasets ...Dataset) *Service {
	return &Service{store: store, clock: clock, datasets: datasets}
}

// Export snapshots the three stored documents; a dataset never written
// exports as "[]".
func (s *Service) Export(ctx context.Context) (Document, error) {
	docs := make(map[string]string, len(kv.AllKeys))
	for _, key := range kv.AllKeys {
		body, err := s.store.Get(ctx, key)
		switch {
		case errors.Is(err, kv.ErrNotFound) || (err == nil && len(body) == 0):
			docs[key] = "[]"
		case err != nil:
			return Document{}, apierr.Internal(err, "failed to read "+key)
		default:
			docs[key] = string(body)
		}
	}
	return Document{
		Places:     docs[kv.KeyPlaces],
		Schedules:  docs[kv.KeySchedules],
		Attendance: docs[kv.KeyAttendance],
		ExportDate: s.clock.Now().UTC().Format(exportDateLayout),
		Version:    Version,
	}, nil
}

// Filename is the attachment name for an export made now.
func (s *Service) Filename() string {
	return "care-attendance-backup_" + s.clock.Now().Format(attendance.DateLayout) + ".json"
}

// Import replaces every dataset with the ones in body. Comments and
// trailing commas are tolerated. Nothing is written unless all three
// datasets are present and well formed.
func (s *Service) Import(ctx context.Context, body []byte) (ImportResult, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(jsonc.ToJSON(body), &top); err != nil {
		return ImportResult{}, apierr.ErrInvalid("backup is not valid JSON: " + err.Error())
	}

	docs := make(map[string][]byte, len(kv.AllKeys))
	for _, key := range kv.AllKeys {
		raw, ok := top[key]
		if !ok {
			return ImportResult{}, apierr.ErrInvalid(fmt.Sprintf("backup has no %q dataset", key))
		}
		var encoded string
		if err := json.Unmarshal(raw, &encoded); err != nil {
			return ImportResult{}, apierr.ErrInvalid(fmt.Sprintf("%q must be a JSON string", key))
		}
		if encoded == "" {
			encoded = "[]"
		}
		docs[key] = []byte(encoded)
	}

	placeList, err := decode[places.Place](docs, kv.KeyPlaces)
	if err != nil {
		return ImportResult{}, err
	}
	scheduleList, err := decode[schedules.Schedule](docs, kv.KeySchedules)
	if err != nil {
		return ImportResult{}, err
	}
	if err := checkSchedules(scheduleList); err != nil {
		return ImportResult{}, err
	}
	records, err := decode[attendance.Record](docs, kv.KeyAttendance)
	if err != nil {
		return ImportResult{}, err
	}
	if err := checkRecords(records); err != nil {
		return ImportResult{}, err
	}
	res := ImportResult{Places: len(placeList), Schedules: len(scheduleList), Attendance: len(records)}

	err = s.exclusive(ctx, func() error {
		if err := s.store.SetAll(ctx, docs); err != nil {
			return apierr.Internal(err, "failed to store backup")
		}
		return nil
	})
	if err != nil {
		return ImportResult{}, err
	}
	log.Printf("[INFO] backup imported: %d places, %d schedules, %d attendance records", res.Places, res.Schedules, res.Attendance)
	return res, nil
}

// Reset deletes every dataset. confirm must be true.
func (s *Service) Reset(ctx context.Context, confirm bool) error {
	if !confirm {
		return apierr.ErrInvalid("reset must be confirmed")
	}
	err := s.exclusive(ctx, func() error {
		for _, key := range kv.AllKeys {
			if err := s.store.Delete(ctx, key); err != nil {
				return apierr.Internal(err, "failed to delete "+key)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	log.Printf("[WARN] all data was reset")
	return nil
}

// exclusive runs fn while every dataset is locked; each one reloads from
// the store on the way out.
func (s *Service) exclusive(ctx context.Context, fn func() error) error {
	return lockAll(ctx, s.datasets, fn)
}

func lockAll(ctx context.Context, datasets []Dataset, fn func() error) error {
	if len(datasets) == 0 {
		return fn()
	}
	err := datasets[0].Exclusive(ctx, func() error {
		return lockAll(ctx, datasets[1:], fn)
	})
	return apierr.Internal(err, "failed to reload data")
}

func decode[T any](docs map[string][]byte, key string) ([]T, error) {
	items, err := docstore.Unmarshal[T](docs[key])
	if err != nil {
		return nil, apierr.ErrInvalid(fmt.Sprintf("%q is not a valid %s list: %v", key, key, err))
	}
	return items, nil
}

func checkSchedules(list []schedules.Schedule) error {
	for i, sc := range list {
		if sc.DayOfWeek < 0 || sc.DayOfWeek > 6 {
			return apierr.ErrInvalid(fmt.Sprintf("schedules[%d]: dayOfWeek must be 0-6", i))
		}
		if err := schedules.ValidateClock(sc.StartTime); err != nil {
			return apierr.ErrInvalid(fmt.Sprintf("schedules[%d]: startTime must be HH:MM", i))
		}
		if err := schedules.ValidateClock(sc.EndTime); err != nil {
			return apierr.ErrInvalid(fmt.Sprintf("schedules[%d]: endTime must be HH:MM", i))
		}
	}
	return nil
}

func checkRecords(list []attendance.Record) error {
	for i, r := range list {
		if err := attendance.ValidateDate(r.Date); err != nil {
			return apierr.ErrInvalid(fmt.Sprintf("attendance[%d]: date must be YYYY-MM-DD", i))
		}
	}
	return nil
}
