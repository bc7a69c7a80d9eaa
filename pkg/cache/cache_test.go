package cache

import (
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/bFollon/farmacias-de-guardia-segovia/pkg/schedule"
)

func sampleSchedules() []*schedule.PharmacySchedule {
	return []*schedule.PharmacySchedule{
		{
			Date: schedule.DutyDate{DayOfWeek: "viernes", Day: 14, Month: "marzo", Year: 2025},
			Shifts: []schedule.ShiftAssignment{
				{Span: schedule.SpanFullDay, Pharmacies: []schedule.Pharmacy{
					{Name: "Farmacia Fernando Redondo", Address: "Av. Camilo José Cela 10", Phone: "921 140 000"},
				}},
			},
		},
	}
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("NewStore() error: %v", err)
	}
	return store
}

func TestEvaluateStates(t *testing.T) {
	store := newTestStore(t)
	location := schedule.LocationID("cuellar")
	modified := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	if state := store.Evaluate(location, modified); state != StateMissing {
		t.Fatalf("state before Put = %v, want missing", state)
	}

	if err := store.Put(location, modified, sampleSchedules()); err != nil {
		t.Fatalf("Put() error: %v", err)
	}
	if state := store.Evaluate(location, modified); state != StateValid {
		t.Errorf("state after Put = %v, want valid", state)
	}
	if state := store.Evaluate(location, modified.Add(time.Hour)); state != StateStaleTimestamp {
		t.Errorf("state after source change = %v, want stale-timestamp", state)
	}
	// An earlier source timestamp must not invalidate the entry.
	if state := store.Evaluate(location, modified.Add(-time.Hour)); state != StateValid {
		t.Errorf("state with older source = %v, want valid", state)
	}
}

func TestEvaluateStaleVersion(t *testing.T) {
	store := newTestStore(t)
	location := schedule.LocationID("cuellar")
	modified := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	// Write a file in the previous format directly, as a leftover from an
	// older binary would.
	old := Entry{
		Version:        FormatVersion - 1,
		SourceModified: modified,
		StoredAt:       modified,
		Schedules:      sampleSchedules(),
	}
	data, err := json.Marshal(old)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := os.WriteFile(store.pathFor(location), data, 0o644); err != nil {
		t.Fatalf("writing stale file: %v", err)
	}

	state := store.Evaluate(location, modified)
	if state != StateStaleVersion {
		t.Errorf("state = %v, want stale-version", state)
	}
	if state.Usable() {
		t.Error("stale-version entries must not be usable")
	}
}

func TestStateUsable(t *testing.T) {
	for state, want := range map[State]bool{
		StateMissing:        false,
		StateValid:          true,
		StateStaleVersion:   false,
		StateStaleTimestamp: false,
	} {
		if got := state.Usable(); got != want {
			t.Errorf("Usable(%v) = %v, want %v", state, got, want)
		}
	}
}

func TestDiskRoundTrip(t *testing.T) {
	dir := t.TempDir()
	location := schedule.LocationID("el-espinar")
	modified := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	first, err := NewStore(dir, nil)
	if err != nil {
		t.Fatalf("NewStore() error: %v", err)
	}
	if err := first.Put(location, modified, sampleSchedules()); err != nil {
		t.Fatalf("Put() error: %v", err)
	}

	// A fresh store sharing the directory simulates a restart: the entry
	// must come back from disk and be promoted into memory.
	second, err := NewStore(dir, nil)
	if err != nil {
		t.Fatalf("NewStore() error: %v", err)
	}
	entry, ok := second.Get(location)
	if !ok {
		t.Fatal("entry not recovered from disk")
	}
	if entry.Version != FormatVersion {
		t.Errorf("recovered version = %d, want %d", entry.Version, FormatVersion)
	}
	if len(entry.Schedules) != 1 {
		t.Fatalf("recovered %d schedules, want 1", len(entry.Schedules))
	}
	got := entry.Schedules[0]
	if got.Date.Day != 14 || got.Date.Month != "marzo" || got.Date.Year != 2025 {
		t.Errorf("recovered date = %s", got.Date)
	}
	if got.Shifts[0].Pharmacies[0].Name != "Farmacia Fernando Redondo" {
		t.Errorf("recovered pharmacy = %q", got.Shifts[0].Pharmacies[0].Name)
	}
	if !entry.SourceModified.Equal(modified) {
		t.Errorf("recovered SourceModified = %v, want %v", entry.SourceModified, modified)
	}
}

func TestCorruptDiskFileDiscarded(t *testing.T) {
	store := newTestStore(t)
	location := schedule.LocationID("cuellar")
	path := store.pathFor(location)

	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("writing corrupt file: %v", err)
	}

	if _, ok := store.Get(location); ok {
		t.Error("corrupt file must not produce an entry")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("corrupt file must be removed")
	}
}

func TestInvalidateRuralFansOut(t *testing.T) {
	store := newTestStore(t)
	modified := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	rural := schedule.LocationID(schedule.RegionSegoviaRural)
	zones := schedule.ZBSLocationIDs()
	for _, location := range append([]schedule.LocationID{rural, "cuellar"}, zones...) {
		if err := store.Put(location, modified, sampleSchedules()); err != nil {
			t.Fatalf("Put(%s) error: %v", location, err)
		}
	}

	store.Invalidate(rural)

	if _, ok := store.Get(rural); ok {
		t.Error("rural entry survived invalidation")
	}
	for _, zone := range zones {
		if _, ok := store.Get(zone); ok {
			t.Errorf("zone %s survived rural invalidation", zone)
		}
	}
	if _, ok := store.Get(schedule.LocationID("cuellar")); !ok {
		t.Error("unrelated entry dropped by rural invalidation")
	}
}

func TestInvalidateSingleLocation(t *testing.T) {
	store := newTestStore(t)
	modified := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	for _, location := range []schedule.LocationID{"cuellar", "el-espinar"} {
		if err := store.Put(location, modified, sampleSchedules()); err != nil {
			t.Fatalf("Put(%s) error: %v", location, err)
		}
	}

	store.Invalidate(schedule.LocationID("cuellar"))

	if _, ok := store.Get(schedule.LocationID("cuellar")); ok {
		t.Error("invalidated entry still present")
	}
	if _, ok := store.Get(schedule.LocationID("el-espinar")); !ok {
		t.Error("sibling entry dropped by single invalidation")
	}
}

func TestClear(t *testing.T) {
	store := newTestStore(t)
	modified := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	for _, location := range []schedule.LocationID{"cuellar", "el-espinar", "segovia-capital"} {
		if err := store.Put(location, modified, sampleSchedules()); err != nil {
			t.Fatalf("Put(%s) error: %v", location, err)
		}
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("Clear() error: %v", err)
	}
	for _, location := range []schedule.LocationID{"cuellar", "el-espinar", "segovia-capital"} {
		if _, ok := store.Get(location); ok {
			t.Errorf("entry %s survived Clear", location)
		}
	}
}

func TestMemoryOnlyStore(t *testing.T) {
	store, err := NewStore("", nil)
	if err != nil {
		t.Fatalf("NewStore() error: %v", err)
	}
	location := schedule.LocationID("cuellar")
	modified := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	if err := store.Put(location, modified, sampleSchedules()); err != nil {
		t.Fatalf("Put() error: %v", err)
	}
	if _, ok := store.Get(location); !ok {
		t.Error("entry missing from memory-only store")
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("Clear() error: %v", err)
	}
	if _, ok := store.Get(location); ok {
		t.Error("entry survived Clear in memory-only store")
	}
}
