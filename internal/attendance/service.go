package attendance

import (
	"context"
	"errors"
	"log"
	"sort"
	"time"

	"care-attendance/internal/payroll"
	"care-attendance/internal/platform/apierr"
	"care-attendance/internal/platform/docstore"
	"care-attendance/internal/platform/ids"
)

var (
	errNoChange = errors.New("no change")

	ErrAlreadyCheckedOut = apierr.ErrConflict("already checked out")
)

type Service struct {
	records *docstore.Collection[Record]
	places  PlaceLookup
	clock   ids.Clock
	id      ids.IDGen
}

func NewService(col *docstore.Collection[Record], places PlaceLookup, clock ids.Clock, id ids.IDGen) *Service {
	return &Service{records: col, places: places, clock: clock, id: id}
}

// All returns every record in storage order.
func (s *Service) All() []Record {
	return s.records.Snapshot()
}

func (s *Service) FindByID(id string) (Record, bool) {
	return s.records.Find(func(r Record) bool { return r.ID == id })
}

func (s *Service) today() string {
	return s.clock.Now().Format(DateLayout)
}

// ===== reads =====

func (s *Service) List(q ListQuery) ([]Entry, error) {
	switch {
	case q.Date != "":
		return s.RecordsForDate(q.Date)
	case q.From != "" || q.To != "":
		recs, err := s.RecordsInRange(q.From, q.To)
		if err != nil {
			return nil, err
		}
		return s.join(recs), nil
	case q.Year != 0 || q.Month != 0:
		return s.MonthRecords(q.Year, q.Month)
	default:
		recs := s.All()
		sortByDate(recs)
		return s.join(recs), nil
	}
}

// RecordsForDate returns every record on date joined with its place.
func (s *Service) RecordsForDate(date string) ([]Entry, error) {
	if err := ValidateDate(date); err != nil {
		return nil, err
	}
	var out []Record
	for _, r := range s.All() {
		if r.Date == date {
			out = append(out, r)
		}
	}
	return s.join(out), nil
}

// RecordForDate returns the first record stored for date.
func (s *Service) RecordForDate(date string) (Record, bool) {
	return s.records.Find(func(r Record) bool { return r.Date == date })
}

// RecordsInRange compares the fixed-width YYYY-MM-DD strings directly;
// both bounds are inclusive.
func (s *Service) RecordsInRange(start, end string) ([]Record, error) {
	if err := ValidateDate(start); err != nil {
		return nil, apierr.ErrInvalid("from must be YYYY-MM-DD")
	}
	if err := ValidateDate(end); err != nil {
		return nil, apierr.ErrInvalid("to must be YYYY-MM-DD")
	}
	if end < start {
		return nil, apierr.ErrInvalid("to must be >= from")
	}
	return FilterRange(s.All(), start, end), nil
}

// MonthRecords returns the completed records of the month, ascending by date.
func (s *Service) MonthRecords(year, month int) ([]Entry, error) {
	start, end, err := MonthBounds(year, month)
	if err != nil {
		return nil, err
	}
	var out []Record
	for _, r := range FilterRange(s.All(), start, end) {
		if r.Completed() {
			out = append(out, r)
		}
	}
	sortByDate(out)
	return s.join(out), nil
}

func (s *Service) TodayRecords() []Entry {
	entries, _ := s.RecordsForDate(s.today())
	return entries
}

func (s *Service) TodayRecordBySchedule(scheduleID string) (Record, bool) {
	today := s.today()
	return s.records.Find(func(r Record) bool { return r.ScheduleID == scheduleID && r.Date == today })
}

func (s *Service) join(recs []Record) []Entry {
	out := make([]Entry, 0, len(recs))
	for _, r := range recs {
		e := Entry{Record: r, IsCompleted: r.Completed()}
		if p, ok := s.places.FindByID(r.PlaceID); ok {
			e.Place = &p
		}
		out = append(out, e)
	}
	return out
}

// ===== manual entries =====

// AddForDate appends a new manual record; several may share one date.
func (s *Service) AddForDate(ctx context.Context, date string, req EntryRequest) (Record, error) {
	if err := ValidateDate(date); err != nil {
		return Record{}, err
	}
	if err := apierr.Validate(req); err != nil {
		return Record{}, err
	}
	rate, err := s.rateFor(req.PlaceID)
	if err != nil {
		return Record{}, err
	}
	rec, err := s.newRecord(KindManual, date, req.PlaceID)
	if err != nil {
		return Record{}, err
	}
	applyEntry(&rec, req, rate)

	err = s.records.Mutate(ctx, func(items []Record) ([]Record, error) {
		return append(items, rec), nil
	})
	if err != nil {
		return Record{}, apierr.Internal(err, "failed to save attendance")
	}
	return rec, nil
}

// Update rewrites a manual record and recomputes its pay from the place's
// current rate.
func (s *Service) Update(ctx context.Context, id string, req EntryRequest) (Record, error) {
	if err := apierr.Validate(req); err != nil {
		return Record{}, err
	}
	rate, err := s.rateFor(req.PlaceID)
	if err != nil {
		return Record{}, err
	}

	var updated Record
	err = s.records.Mutate(ctx, func(items []Record) ([]Record, error) {
		for i := range items {
			if items[i].ID != id {
				continue
			}
			if items[i].IsClock() {
				return nil, apierr.ErrConflict("checked-time records cannot be edited")
			}
			items[i].PlaceID = req.PlaceID
			applyEntry(&items[i], req, rate)
			items[i].UpdatedAt = s.clock.Now()
			updated = items[i]
			return items, nil
		}
		return nil, apierr.ErrNotFound("attendance record not found")
	})
	if err != nil {
		return Record{}, apierr.Internal(err, "failed to save attendance")
	}
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id string) (bool, error) {
	found := false
	err := s.records.Mutate(ctx, func(items []Record) ([]Record, error) {
		out := items[:0]
		for _, r := range items {
			if r.ID == id {
				found = true
				continue
			}
			out = append(out, r)
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
		return false, apierr.Internal(err, "failed to save attendance")
	}
	return true, nil
}

// UpsertForDate keeps at most one manual record per (date, placeId): an
// existing one is overwritten and repriced, otherwise one is created.
func (s *Service) UpsertForDate(ctx context.Context, date string, req UpsertRequest) (Record, bool, error) {
	if err := ValidateDate(date); err != nil {
		return Record{}, false, err
	}
	if err := apierr.Validate(req); err != nil {
		return Record{}, false, err
	}
	worked := req.Worked == nil || *req.Worked

	var rate float64
	if worked {
		entry := EntryRequest{
			PlaceID:             req.PlaceID,
			Hours:               req.Hours,
			AdditionalAllowance: req.AdditionalAllowance,
			IsHoliday:           req.IsHoliday,
		}
		if err := apierr.Validate(entry); err != nil {
			return Record{}, false, err
		}
		r, err := s.rateFor(req.PlaceID)
		if err != nil {
			return Record{}, false, err
		}
		rate = r
	}

	var (
		result  Record
		created bool
	)
	err := s.records.Mutate(ctx, func(items []Record) ([]Record, error) {
		idx := -1
		for i := range items {
			if !items[i].IsClock() && items[i].Date == date && items[i].PlaceID == req.PlaceID {
				idx = i
				break
			}
		}
		if idx < 0 {
			rec, err := s.newRecord(KindManual, date, req.PlaceID)
			if err != nil {
				return nil, err
			}
			items = append(items, rec)
			idx = len(items) - 1
			created = true
		}

		rec := &items[idx]
		if worked {
			applyEntry(rec, EntryRequest{
				PlaceID:             req.PlaceID,
				Hours:               req.Hours,
				AdditionalAllowance: req.AdditionalAllowance,
				IsHoliday:           req.IsHoliday,
			}, rate)
		} else {
			rec.Worked = false
			rec.Hours = 0
			rec.AdditionalAllowance = 0
			rec.IsHoliday = false
			rec.HourlyRate = 0
			rec.DailyPay = 0
		}
		rec.UpdatedAt = s.clock.Now()
		result = *rec
		return items, nil
	})
	if err != nil {
		return Record{}, false, apierr.Internal(err, "failed to save attendance")
	}
	return result, created, nil
}

func applyEntry(rec *Record, req EntryRequest, rate float64) {
	rec.Worked = true
	rec.Hours = req.Hours
	rec.AdditionalAllowance = req.AdditionalAllowance
	rec.IsHoliday = req.IsHoliday
	rec.HourlyRate = rate
	rec.DailyPay = payroll.DailyPay(rate, req.Hours, req.IsHoliday, req.AdditionalAllowance)
}

// ===== check-in / check-out =====

// CheckIn opens a checked-time record stamped with the current moment.
func (s *Service) CheckIn(ctx context.Context, req CheckInRequest) (Record, error) {
	if err := apierr.Validate(req); err != nil {
		return Record{}, err
	}
	if _, ok := s.places.FindByID(req.PlaceID); !ok {
		return Record{}, apierr.ErrNotFound("place not found")
	}
	now := s.clock.Now()
	rec, err := s.newRecord(KindClock, now.Format(DateLayout), req.PlaceID)
	if err != nil {
		return Record{}, err
	}
	rec.ScheduleID = req.ScheduleID
	rec.ScheduledStart = req.ScheduledStart
	rec.ScheduledEnd = req.ScheduledEnd
	rec.CheckInAt = &now

	err = s.records.Mutate(ctx, func(items []Record) ([]Record, error) {
		return append(items, rec), nil
	})
	if err != nil {
		return Record{}, apierr.Internal(err, "failed to save attendance")
	}
	return rec, nil
}

// CheckOut closes an open record: hours are the elapsed time since check-in
// and pay is frozen at hourlyRate (the place's current rate when nil).
// An unknown id is NOT_FOUND; a completed record is returned unchanged
// together with ErrAlreadyCheckedOut.
func (s *Service) CheckOut(ctx context.Context, id string, hourlyRate *float64) (Record, error) {
	var result Record
	err := s.records.Mutate(ctx, func(items []Record) ([]Record, error) {
		for i := range items {
			if items[i].ID != id {
				continue
			}
			rec := &items[i]
			if !rec.IsClock() || rec.CheckInAt == nil {
				return nil, apierr.ErrInvalid("record was not created by check-in")
			}
			if rec.CheckOutAt != nil {
				result = *rec
				return nil, ErrAlreadyCheckedOut
			}

			rate := 0.0
			if hourlyRate != nil {
				rate = *hourlyRate
			} else if p, ok := s.places.FindByID(rec.PlaceID); ok {
				rate = p.HourlyRate
			} else {
				log.Printf("[WARN] check-out %s: place %s no longer exists, pay frozen at 0", rec.ID, rec.PlaceID)
			}

			now := s.clock.Now()
			rec.CheckOutAt = &now
			rec.Worked = true
			rec.Hours = payroll.WorkHours(*rec.CheckInAt, now)
			rec.HourlyRate = rate
			rec.DailyPay = payroll.DailyPay(rate, rec.Hours, false, 0)
			rec.UpdatedAt = now
			result = *rec
			return items, nil
		}
		return nil, apierr.ErrNotFound("attendance record not found")
	})
	if err != nil {
		return result, apierr.Internal(err, "failed to save attendance")
	}
	return result, nil
}

// ===== helpers =====

func (s *Service) rateFor(placeID string) (float64, error) {
	p, ok := s.places.FindByID(placeID)
	if !ok {
		return 0, apierr.ErrNotFound("place not found")
	}
	return p.HourlyRate, nil
}

func (s *Service) newRecord(kind Kind, date, placeID string) (Record, error) {
	id, err := s.id.New()
	if err != nil {
		return Record{}, apierr.Internal(err, "failed to generate id")
	}
	now := s.clock.Now()
	return Record{
		ID:        id,
		Kind:      kind,
		Date:      date,
		PlaceID:   placeID,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *Service) Exclusive(ctx context.Context, fn func() error) error {
	return s.records.Exclusive(ctx, fn)
}

// ValidateDate accepts exactly YYYY-MM-DD.
func ValidateDate(date string) error {
	if len(date) != len(DateLayout) {
		return apierr.ErrInvalid("date must be YYYY-MM-DD")
	}
	if _, err := time.Parse(DateLayout, date); err != nil {
		return apierr.ErrInvalid("date must be YYYY-MM-DD")
	}
	return nil
}

// MonthBounds returns the first and last calendar day of the month.
func MonthBounds(year, month int) (string, string, error) {
	if month < 1 || month > 12 {
		return "", "", apierr.ErrInvalid("month must be 1-12")
	}
	if year < 1 || year > 9999 {
		return "", "", apierr.ErrInvalid("year out of range")
	}
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	last := time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC)
	return first.Format(DateLayout), last.Format(DateLayout), nil
}

// FilterRange keeps records with start <= date <= end; input is not modified.
func FilterRange(recs []Record, start, end string) []Record {
	out := []Record{}
	for _, r := range recs {
		if r.Date >= start && r.Date <= end {
			out = append(out, r)
		}
	}
	return out
}

func sortByDate(recs []Record) {
	sort.SliceStable(recs, func(i, j int) bool { return recs[i].Date < recs[j].Date })
}
