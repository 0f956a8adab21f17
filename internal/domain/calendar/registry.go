package calendar

import (
	"sort"
	"sync"

	"github.com/praxis-legal/docketcalc/pkg/errors"
)

// Registry resolves jurisdiction codes to immutable calendars.  Built-in
// federal and state calendars are registered on construction; additional
// jurisdictions (loaded from configuration data) can be registered before
// the registry is handed to the engine.
//
// Registration happens during setup; lookups at calculation time are
// read-only, so a registry shared across concurrent calculations needs no
// external locking once populated.
type Registry struct {
	mu        sync.RWMutex
	calendars map[string]*JurisdictionCalendar
}

// NewRegistry creates a registry pre-populated with the built-in federal
// and state calendars.
func NewRegistry() *Registry {
	r := &Registry{calendars: make(map[string]*JurisdictionCalendar)}
	r.mustRegister(NewFederalCalendar())
	r.mustRegister(NewStateCalendar())
	return r
}

// Register adds or replaces a calendar under its own code.
func (r *Registry) Register(c *JurisdictionCalendar) error {
	if c == nil || c.Code() == "" {
		return errors.Validation("calendar has no code").WithField("code")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calendars[c.Code()] = c
	return nil
}

func (r *Registry) mustRegister(c *JurisdictionCalendar) {
	if err := r.Register(c); err != nil {
		panic(err)
	}
}

// Get returns the calendar for a jurisdiction code.
func (r *Registry) Get(code string) (*JurisdictionCalendar, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.calendars[code]
	if !ok {
		return nil, errors.Newf(errors.CodeJurisdictionNotFound,
			"no calendar registered for jurisdiction %q", code)
	}
	return c, nil
}

// Codes lists the registered jurisdiction codes, sorted.
func (r *Registry) Codes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.calendars))
	for code := range r.calendars {
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}
