package calendar

import (
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/praxis-legal/docketcalc/pkg/errors"
)

// CalendarDocument is the YAML form of a jurisdiction calendar: a code, a
// display name, and the holiday rules that define its non-business days.
//
//	code: ninth_circuit
//	name: Ninth Circuit Court of Appeals
//	holidays:
//	  - name: New Year's Day
//	    kind: fixed
//	    month: 1
//	    day: 1
//	    observe: true
type CalendarDocument struct {
	Code     string        `yaml:"code"`
	Name     string        `yaml:"name"`
	Holidays []HolidayRule `yaml:"holidays"`
}

// LoadDir registers every YAML calendar in a directory.  The first failing
// file aborts the load; calendar authoring errors should be fixed, not
// skipped.
func (r *Registry) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return errors.Wrap(err, errors.CodeInternal, "reading calendar dir "+dir)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml") {
			continue
		}
		if err := r.LoadFile(filepath.Join(dir, name)); err != nil {
			return err
		}
	}
	return nil
}

// LoadFile loads, validates, and registers a single calendar YAML file.
func (r *Registry) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, errors.CodeInternal, "reading calendar file "+path)
	}

	var doc CalendarDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return errors.Wrap(err, errors.CodeHolidayPattern, "parsing calendar file "+path)
	}

	cal, err := NewCalendar(doc.Code, doc.Name, doc.Holidays)
	if err != nil {
		return errors.Wrap(err, errors.CodeUnknown, "loading calendar file "+path)
	}
	return r.Register(cal)
}
