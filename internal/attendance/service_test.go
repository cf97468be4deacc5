package attendance

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"care-attendance/internal/places"
	"care-attendance/internal/platform/apierr"
	"care-attendance/internal/platform/docstore"
	"care-attendance/internal/platform/ids"
	"care-attendance/internal/platform/kv"
)

type placeMap map[string]places.Place

func (m placeMap) FindByID(id string) (places.Place, bool) {
	p, ok := m[id]
	return p, ok
}

type fixture struct {
	svc    *Service
	clock  *ids.FixedClock
	places placeMap
	store  *kv.MemoryStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := kv.NewMemoryStore()
	col, err := docstore.Load[Record](context.Background(), store, kv.KeyAttendance)
	if err != nil {
		t.Fatal(err)
	}
	pm := placeMap{
		"a": {ID: "a", Name: "Grandma Kim", HourlyRate: 15000},
		"b": {ID: "b", Name: "Mr. Lee", HourlyRate: 12000},
	}
	clock := ids.NewFixedClock(time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC))
	return &fixture{
		svc:    NewService(col, pm, clock, &ids.SeqGen{Prefix: "rec"}),
		clock:  clock,
		places: pm,
		store:  store,
	}
}

func TestAddForDatePricing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name string
		req  EntryRequest
		want int64
	}{
		{"regular", EntryRequest{PlaceID: "a", Hours: 8}, 120000},
		{"holiday", EntryRequest{PlaceID: "a", Hours: 8, IsHoliday: true}, 180000},
		{"holiday with allowance", EntryRequest{PlaceID: "a", Hours: 8, IsHoliday: true, AdditionalAllowance: 5000}, 185000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := f.svc.AddForDate(ctx, "2025-03-10", tt.req)
			if err != nil {
				t.Fatalf("AddForDate: %v", err)
			}
			if rec.DailyPay != tt.want {
				t.Errorf("DailyPay = %d, want %d", rec.DailyPay, tt.want)
			}
			if rec.HourlyRate != 15000 || !rec.Worked || rec.Kind != KindManual {
				t.Errorf("unexpected record %+v", rec)
			}
		})
	}

	// several records may share one date
	entries, err := f.svc.RecordsForDate("2025-03-10")
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 {
		t.Errorf("RecordsForDate = %d, want 3", len(entries))
	}
	if first, ok := f.svc.RecordForDate("2025-03-10"); !ok || first.ID != entries[0].ID {
		t.Errorf("RecordForDate = %+v, %v", first, ok)
	}
	if _, ok := f.svc.RecordForDate("2025-03-11"); ok {
		t.Error("RecordForDate found a record on an empty day")
	}
}

func TestAddForDateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name string
		date string
		req  EntryRequest
		code apierr.Code
	}{
		{"bad date", "2025-3-1", EntryRequest{PlaceID: "a", Hours: 1}, apierr.CodeInvalidArgument},
		{"impossible date", "2025-02-30", EntryRequest{PlaceID: "a", Hours: 1}, apierr.CodeInvalidArgument},
		{"missing hours", "2025-03-01", EntryRequest{PlaceID: "a"}, apierr.CodeInvalidArgument},
		{"negative allowance", "2025-03-01", EntryRequest{PlaceID: "a", Hours: 1, AdditionalAllowance: -1}, apierr.CodeInvalidArgument},
		{"missing place", "2025-03-01", EntryRequest{Hours: 1}, apierr.CodeInvalidArgument},
		{"more than a day", "2025-03-01", EntryRequest{PlaceID: "a", Hours: 25}, apierr.CodeInvalidArgument},
		{"allowance too large", "2025-03-01", EntryRequest{PlaceID: "a", Hours: 1, AdditionalAllowance: 1e19}, apierr.CodeInvalidArgument},
		{"unknown place", "2025-03-01", EntryRequest{PlaceID: "zzz", Hours: 1}, apierr.CodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.AddForDate(ctx, tt.date, tt.req)
			if !apierr.Is(err, tt.code) {
				t.Errorf("err = %v, want %s", err, tt.code)
			}
		})
	}
	if n := len(f.svc.All()); n != 0 {
		t.Errorf("%d records stored after rejected adds", n)
	}
}

func TestUpdateRepricesAtCurrentRate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rec, err := f.svc.AddForDate(ctx, "2025-03-10", EntryRequest{PlaceID: "a", Hours: 2})
	if err != nil {
		t.Fatal(err)
	}

	p := f.places["a"]
	p.HourlyRate = 20000
	f.places["a"] = p

	// untouched records keep their frozen pay
	if got, _ := f.svc.FindByID(rec.ID); got.DailyPay != 30000 {
		t.Errorf("frozen pay drifted to %d", got.DailyPay)
	}

	updated, err := f.svc.Update(ctx, rec.ID, EntryRequest{PlaceID: "a", Hours: 3})
	if err != nil {
		t.Fatal(err)
	}
	if updated.DailyPay != 60000 || updated.HourlyRate != 20000 {
		t.Errorf("Update pay = %d at %v, want 60000 at 20000", updated.DailyPay, updated.HourlyRate)
	}

	if _, err := f.svc.Update(ctx, "nope", EntryRequest{PlaceID: "a", Hours: 1}); !apierr.Is(err, apierr.CodeNotFound) {
		t.Errorf("Update(nope) = %v", err)
	}
}

func TestUpsertForDate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, created, err := f.svc.UpsertForDate(ctx, "2025-03-11", UpsertRequest{PlaceID: "a", Hours: 4})
	if err != nil || !created {
		t.Fatalf("first upsert = %v, %v", created, err)
	}
	second, created, err := f.svc.UpsertForDate(ctx, "2025-03-11", UpsertRequest{PlaceID: "a", Hours: 6, IsHoliday: true})
	if err != nil || created {
		t.Fatalf("second upsert = %v, %v", created, err)
	}
	if second.ID != first.ID || second.DailyPay != 135000 {
		t.Errorf("second upsert = %+v", second)
	}

	no := false
	marker, created, err := f.svc.UpsertForDate(ctx, "2025-03-11", UpsertRequest{Worked: &no, PlaceID: "a", Hours: 6, AdditionalAllowance: 1000, IsHoliday: true})
	if err != nil || created {
		t.Fatalf("did-not-work upsert = %v, %v", created, err)
	}
	if marker.ID != first.ID || marker.Worked || marker.Hours != 0 || marker.AdditionalAllowance != 0 || marker.IsHoliday || marker.DailyPay != 0 {
		t.Errorf("did-not-work marker = %+v", marker)
	}
	if n := len(f.svc.All()); n != 1 {
		t.Errorf("record count = %d, want 1 (marker retained, not duplicated)", n)
	}

	// another place on the same date is a separate entry
	if _, created, _ := f.svc.UpsertForDate(ctx, "2025-03-11", UpsertRequest{PlaceID: "b", Hours: 1}); !created {
		t.Error("upsert for another place should create")
	}
}

func TestCheckInCheckOut(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	open, err := f.svc.CheckIn(ctx, CheckInRequest{PlaceID: "a", ScheduleID: "s1", ScheduledStart: "09:00", ScheduledEnd: "17:30"})
	if err != nil {
		t.Fatal(err)
	}
	if !open.Open() || open.Completed() || open.Date != "2025-03-10" || open.Hours != 0 {
		t.Fatalf("check-in record = %+v", open)
	}
	if got, ok := f.svc.TodayRecordBySchedule("s1"); !ok || got.ID != open.ID {
		t.Errorf("TodayRecordBySchedule = %+v, %v", got, ok)
	}

	f.clock.Advance(8*time.Hour + 30*time.Minute)
	done, err := f.svc.CheckOut(ctx, open.ID, nil)
	if err != nil {
		t.Fatal(err)
	}
	if done.Hours != 8.5 || done.DailyPay != 127500 || !done.Completed() {
		t.Errorf("check-out = hours %v pay %d", done.Hours, done.DailyPay)
	}

	// a second check-out leaves the record untouched
	f.clock.Advance(time.Hour)
	again, err := f.svc.CheckOut(ctx, open.ID, nil)
	if !errors.Is(err, ErrAlreadyCheckedOut) {
		t.Errorf("second CheckOut err = %v, want ErrAlreadyCheckedOut", err)
	}
	stored, _ := f.svc.FindByID(open.ID)
	if !reflect.DeepEqual(stored, done) || !reflect.DeepEqual(again, done) {
		t.Errorf("completed record changed:\n got %+v\nwant %+v", stored, done)
	}

	before := f.svc.All()
	if _, err := f.svc.CheckOut(ctx, "missing", nil); !apierr.Is(err, apierr.CodeNotFound) {
		t.Errorf("CheckOut(missing) = %v", err)
	}
	if !reflect.DeepEqual(before, f.svc.All()) {
		t.Error("CheckOut(missing) modified the ledger")
	}
}

func TestCheckOutExplicitRate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	open, err := f.svc.CheckIn(ctx, CheckInRequest{PlaceID: "b"})
	if err != nil {
		t.Fatal(err)
	}
	f.clock.Advance(90 * time.Minute)
	rate := 10000.0
	done, err := f.svc.CheckOut(ctx, open.ID, &rate)
	if err != nil {
		t.Fatal(err)
	}
	if done.DailyPay != 15000 || done.HourlyRate != 10000 {
		t.Errorf("pay = %d at %v", done.DailyPay, done.HourlyRate)
	}
}

func TestDeletedPlaceLeavesRecordIntact(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rec, err := f.svc.AddForDate(ctx, "2025-03-12", EntryRequest{PlaceID: "b", Hours: 2})
	if err != nil {
		t.Fatal(err)
	}
	delete(f.places, "b")

	entries, err := f.svc.RecordsForDate("2025-03-12")
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("entries = %d", len(entries))
	}
	if entries[0].Place != nil {
		t.Errorf("Place = %+v, want nil for a deleted place", entries[0].Place)
	}
	if !reflect.DeepEqual(entries[0].Record, rec) {
		t.Errorf("record changed after place deletion: %+v", entries[0].Record)
	}
}

func TestRecordsInRange(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for _, d := range []string{"2025-02-28", "2025-03-01", "2025-03-15", "2025-03-31", "2025-04-01"} {
		if _, err := f.svc.AddForDate(ctx, d, EntryRequest{PlaceID: "a", Hours: 1}); err != nil {
			t.Fatal(err)
		}
	}
	got, err := f.svc.RecordsInRange("2025-03-01", "2025-03-31")
	if err != nil {
		t.Fatal(err)
	}
	var dates []string
	for _, r := range got {
		dates = append(dates, r.Date)
	}
	want := []string{"2025-03-01", "2025-03-15", "2025-03-31"}
	if !reflect.DeepEqual(dates, want) {
		t.Errorf("dates = %v, want %v", dates, want)
	}

	if _, err := f.svc.RecordsInRange("2025-04-01", "2025-03-01"); !apierr.Is(err, apierr.CodeInvalidArgument) {
		t.Errorf("reversed range err = %v", err)
	}
}

func TestMonthBounds(t *testing.T) {
	tests := []struct {
		year, month int
		first, last string
	}{
		{2024, 2, "2024-02-01", "2024-02-29"},
		{2025, 2, "2025-02-01", "2025-02-28"},
		{1900, 2, "1900-02-01", "1900-02-28"},
		{2000, 2, "2000-02-01", "2000-02-29"},
		{2025, 4, "2025-04-01", "2025-04-30"},
		{2025, 12, "2025-12-01", "2025-12-31"},
	}
	for _, tt := range tests {
		first, last, err := MonthBounds(tt.year, tt.month)
		if err != nil {
			t.Fatal(err)
		}
		if first != tt.first || last != tt.last {
			t.Errorf("MonthBounds(%d, %d) = %s..%s, want %s..%s", tt.year, tt.month, first, last, tt.first, tt.last)
		}
	}
	if _, _, err := MonthBounds(2025, 13); err == nil {
		t.Error("month 13 accepted")
	}
}
