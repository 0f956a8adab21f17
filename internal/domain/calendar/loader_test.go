package calendar

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/praxis-legal/docketcalc/pkg/errors"
)

const bankruptcyCalendarYAML = `
code: bankruptcy
name: Bankruptcy Court
holidays:
  - name: New Year's Day
    kind: fixed
    month: 1
    day: 1
    observe: true
  - name: Thanksgiving Day
    kind: nth_weekday
    month: 11
    weekday: 4
    nth: 4
`

func TestLoadFile_RegistersCalendar(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bankruptcy.yaml")
	if err := os.WriteFile(path, []byte(bankruptcyCalendarYAML), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	reg := NewRegistry()
	if err := reg.LoadFile(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cal, err := reg.Get("bankruptcy")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cal.Name() != "Bankruptcy Court" {
		t.Errorf("name = %q", cal.Name())
	}

	// Thanksgiving 2024 is November 28.
	name, ok, err := cal.HolidayName(time.Date(2024, time.November, 28, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok || name != "Thanksgiving Day" {
		t.Errorf("holiday lookup = %q, %v", name, ok)
	}
}

func TestLoadDir_KeepsBuiltins(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "bankruptcy.yaml"), []byte(bankruptcyCalendarYAML), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	reg := NewRegistry()
	if err := reg.LoadDir(dir); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"bankruptcy", "federal", "state"}
	got := reg.Codes()
	if len(got) != len(want) {
		t.Fatalf("codes = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("codes = %v, want %v", got, want)
		}
	}
}

func TestLoadFile_RejectsMalformedPattern(t *testing.T) {
	dir := t.TempDir()
	bad := `
code: broken
name: Broken
holidays:
  - name: Phantom Day
    kind: nth_weekday
    month: 3
`
	path := filepath.Join(dir, "broken.yaml")
	if err := os.WriteFile(path, []byte(bad), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	reg := NewRegistry()
	err := reg.LoadFile(path)
	if !errors.IsCode(err, errors.CodeHolidayPattern) {
		t.Fatalf("expected CodeHolidayPattern, got %v", err)
	}
	if _, err := reg.Get("broken"); !errors.IsCode(err, errors.CodeJurisdictionNotFound) {
		t.Error("invalid calendar must not be registered")
	}
}
