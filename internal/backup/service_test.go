package backup

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"care-attendance/internal/attendance"
	"care-attendance/internal/places"
	"care-attendance/internal/platform/apierr"
	"care-attendance/internal/platform/docstore"
	"care-attendance/internal/platform/ids"
	"care-attendance/internal/platform/kv"
	"care-attendance/internal/schedules"
)

type fixture struct {
	store      kv.Store
	clock      *ids.FixedClock
	places     *places.Service
	schedules  *schedules.Service
	attendance *attendance.Service
	svc        *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWith(t, kv.NewMemoryStore())
}

func newFixtureWith(t *testing.T, store kv.Store) *fixture {
	t.Helper()
	ctx := context.Background()
	clock := ids.NewFixedClock(time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC))

	pc, err := docstore.Load[places.Place](ctx, store, kv.KeyPlaces)
	if err != nil {
		t.Fatal(err)
	}
	sc, err := docstore.Load[schedules.Schedule](ctx, store, kv.KeySchedules)
	if err != nil {
		t.Fatal(err)
	}
	ac, err := docstore.Load[attendance.Record](ctx, store, kv.KeyAttendance)
	if err != nil {
		t.Fatal(err)
	}

	f := &fixture{store: store, clock: clock}
	f.places = places.NewService(pc, clock, &ids.SeqGen{Prefix: "place"})
	f.schedules = schedules.NewService(sc, f.places, clock, &ids.SeqGen{Prefix: "sched"})
	f.attendance = attendance.NewService(ac, f.places, clock, &ids.SeqGen{Prefix: "rec"})
	f.svc = NewService(store, clock, f.attendance, f.schedules, f.places)
	return f
}

func (f *fixture) seed(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	p, err := f.places.Add(ctx, places.CreatePlaceRequest{Name: "Grandma Kim", HourlyRate: 15000})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.schedules.Add(ctx, schedules.CreateScheduleRequest{PlaceID: p.ID, DayOfWeek: 1, StartTime: "09:00", EndTime: "17:30"}); err != nil {
		t.Fatal(err)
	}
	if _, err := f.attendance.AddForDate(ctx, "2025-03-10", attendance.EntryRequest{PlaceID: p.ID, Hours: 8, IsHoliday: true, AdditionalAllowance: 5000}); err != nil {
		t.Fatal(err)
	}
}

func marshal(t *testing.T, doc any) []byte {
	t.Helper()
	b, err := json.Marshal(doc)
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func TestExportEmpty(t *testing.T) {
	f := newFixture(t)
	doc, err := f.svc.Export(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	want := Document{Places: "[]", Schedules: "[]", Attendance: "[]", ExportDate: "2025-03-10T09:00:00.000Z", Version: "1.0"}
	if doc != want {
		t.Errorf("Export() = %+v, want %+v", doc, want)
	}
	if got := f.svc.Filename(); got != "care-attendance-backup_2025-03-10.json" {
		t.Errorf("Filename() = %q", got)
	}
}

func TestRoundTrip(t *testing.T) {
	f := newFixture(t)
	f.seed(t)
	ctx := context.Background()

	doc, err := f.svc.Export(ctx)
	if err != nil {
		t.Fatal(err)
	}
	wantPlaces, wantSchedules, wantRecords := f.places.List(), f.schedules.List(schedules.ListQuery{}), f.attendance.All()

	if err := f.svc.Reset(ctx, true); err != nil {
		t.Fatal(err)
	}
	if len(f.places.List()) != 0 || len(f.attendance.All()) != 0 {
		t.Fatal("reset left data behind")
	}

	res, err := f.svc.Import(ctx, marshal(t, doc))
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if res != (ImportResult{Places: 1, Schedules: 1, Attendance: 1}) {
		t.Errorf("result = %+v", res)
	}
	if !reflect.DeepEqual(f.places.List(), wantPlaces) {
		t.Errorf("places = %+v, want %+v", f.places.List(), wantPlaces)
	}
	if !reflect.DeepEqual(f.schedules.List(schedules.ListQuery{}), wantSchedules) {
		t.Error("schedules differ after round trip")
	}
	got := f.attendance.All()
	if !reflect.DeepEqual(got, wantRecords) {
		t.Errorf("attendance = %+v, want %+v", got, wantRecords)
	}
	if got[0].DailyPay != 185000 {
		t.Errorf("derived pay lost: %d", got[0].DailyPay)
	}

	again, err := f.svc.Export(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if again != doc {
		t.Error("second export differs from the first")
	}
}

func TestImportRejected(t *testing.T) {
	valid := `{"places":"[]","schedules":"[]","attendance":"[]","version":"1.0"}`
	tests := []struct {
		name string
		body string
	}{
		{"not json", `{places:`},
		{"missing attendance", `{"places":"[]","schedules":"[]"}`},
		{"dataset not a string", `{"places":[],"schedules":"[]","attendance":"[]"}`},
		{"dataset not an array", `{"places":"{}","schedules":"[]","attendance":"[]"}`},
		{"wrong entity shape", `{"places":"[]","schedules":"[]","attendance":"[{\"hours\":\"eight\"}]"}`},
		{"top level array", `[` + valid + `]`},
		{"attendance date not padded", `{"places":"[]","schedules":"[]","attendance":"[{\"id\":\"r1\",\"date\":\"2025-3-5\",\"hours\":2}]"}`},
		{"attendance date missing", `{"places":"[]","schedules":"[]","attendance":"[{\"id\":\"r1\",\"hours\":2}]"}`},
		{"schedule day out of range", `{"places":"[]","schedules":"[{\"id\":\"s1\",\"dayOfWeek\":7,\"startTime\":\"09:00\",\"endTime\":\"12:00\"}]","attendance":"[]"}`},
		{"schedule day negative", `{"places":"[]","schedules":"[{\"id\":\"s1\",\"dayOfWeek\":-1,\"startTime\":\"09:00\",\"endTime\":\"12:00\"}]","attendance":"[]"}`},
		{"schedule start not HH:MM", `{"places":"[]","schedules":"[{\"id\":\"s1\",\"dayOfWeek\":1,\"startTime\":\"9:00\",\"endTime\":\"12:00\"}]","attendance":"[]"}`},
		{"schedule end out of range", `{"places":"[]","schedules":"[{\"id\":\"s1\",\"dayOfWeek\":1,\"startTime\":\"09:00\",\"endTime\":\"25:00\"}]","attendance":"[]"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.seed(t)
			before, err := f.svc.Export(context.Background())
			if err != nil {
				t.Fatal(err)
			}

			_, err = f.svc.Import(context.Background(), []byte(tt.body))
			if !apierr.Is(err, apierr.CodeInvalidArgument) {
				t.Fatalf("err = %v, want INVALID_ARGUMENT", err)
			}
			after, err := f.svc.Export(context.Background())
			if err != nil {
				t.Fatal(err)
			}
			if after != before {
				t.Error("stored data changed after a rejected import")
			}
			if len(f.attendance.All()) != 1 {
				t.Error("in-memory attendance changed after a rejected import")
			}
		})
	}
}

func TestImportLenient(t *testing.T) {
	f := newFixture(t)
	body := `{
		// written by hand
		"places": "[{\"id\":\"p1\",\"name\":\"Mr. Lee\",\"hourlyRate\":12000}]",
		"schedules": "[]",
		"attendance": "[{\"id\":\"r1\",\"date\":\"2025-03-01\",\"placeId\":\"p1\",\"worked\":true,\"hours\":2,\"dailyPay\":24000}]",
		"version": "1.0",
	}`
	res, err := f.svc.Import(context.Background(), []byte(body))
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if res.Places != 1 || res.Attendance != 1 {
		t.Errorf("result = %+v", res)
	}
	p, ok := f.places.FindByID("p1")
	if !ok || p.Name != "Mr. Lee" {
		t.Errorf("place = %+v, %v", p, ok)
	}
	// records from the browser app have no kind and count as manual entries
	rec, ok := f.attendance.FindByID("r1")
	if !ok || rec.IsClock() || !rec.Completed() {
		t.Errorf("record = %+v, %v", rec, ok)
	}
}

// gatedStore holds SetAll until release is closed.
type gatedStore struct {
	*kv.MemoryStore
	entered chan struct{}
	release chan struct{}
}

func (g *gatedStore) SetAll(ctx context.Context, docs map[string][]byte) error {
	close(g.entered)
	<-g.release
	return g.MemoryStore.SetAll(ctx, docs)
}

func TestImportHoldsMutations(t *testing.T) {
	ctx := context.Background()
	gate := &gatedStore{MemoryStore: kv.NewMemoryStore(), entered: make(chan struct{}), release: make(chan struct{})}
	f := newFixtureWith(t, gate)
	body := `{"places":"[{\"id\":\"p1\",\"name\":\"Mr. Lee\",\"hourlyRate\":12000}]","schedules":"[]","attendance":"[]"}`

	imported := make(chan error, 1)
	go func() {
		_, err := f.svc.Import(ctx, []byte(body))
		imported <- err
	}()
	<-gate.entered

	added := make(chan error, 1)
	go func() {
		_, err := f.places.Add(ctx, places.CreatePlaceRequest{Name: "Grandma Kim", HourlyRate: 15000})
		added <- err
	}()
	select {
	case err := <-added:
		t.Fatalf("Add finished while the import was writing: %v", err)
	case <-time.After(50 * time.Millisecond):
	}

	close(gate.release)
	if err := <-imported; err != nil {
		t.Fatalf("Import: %v", err)
	}
	if err := <-added; err != nil {
		t.Fatalf("Add: %v", err)
	}

	if got := len(f.places.List()); got != 2 {
		t.Errorf("in-memory places = %d, want 2", got)
	}
	stored, err := docstore.Decode[places.Place](ctx, gate, kv.KeyPlaces)
	if err != nil {
		t.Fatal(err)
	}
	if len(stored) != 2 {
		t.Errorf("stored places = %+v, want the imported one and the added one", stored)
	}
	if _, ok := f.places.FindByID("p1"); !ok {
		t.Error("imported place was overwritten")
	}
}

func TestResetRequiresConfirm(t *testing.T) {
	f := newFixture(t)
	f.seed(t)
	if err := f.svc.Reset(context.Background(), false); !apierr.Is(err, apierr.CodeInvalidArgument) {
		t.Fatalf("err = %v", err)
	}
	if len(f.places.List()) != 1 {
		t.Error("unconfirmed reset removed data")
	}
}

func TestHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	f := newFixture(t)
	f.seed(t)
	r := gin.New()
	RegisterRoutes(r.Group("/api/v1"), f.svc)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/backup/export", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("export status = %d", w.Code)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "care-attendance-backup_2025-03-10.json") {
		t.Errorf("Content-Disposition = %q", cd)
	}
	exported := w.Body.String()

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/backup/reset", nil))
	if w.Code != http.StatusBadRequest {
		t.Errorf("unconfirmed reset status = %d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/backup/reset?confirm=true", nil))
	if w.Code != http.StatusNoContent {
		t.Errorf("reset status = %d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/backup/import", strings.NewReader(exported)))
	if w.Code != http.StatusOK {
		t.Fatalf("import status = %d body=%s", w.Code, w.Body)
	}
	if len(f.attendance.All()) != 1 {
		t.Error("import did not restore attendance")
	}
}
