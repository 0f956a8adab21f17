// Package docket implements the deadline engine's application services:
// deadline calculation with audit trails, rule evaluation over trigger
// events, and cascade propagation across dependent deadlines.
package docket

import (
	"time"

	"github.com/praxis-legal/docketcalc/pkg/types/common"
)

// Logger abstracts structured logging.
// Shared by Calculator, Evaluator, and Cascade services.
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
}

// nopLogger discards everything; the default when no logger is injected.
type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Debug(string, ...interface{}) {}

// TriggerEvent is the immutable input describing the event that starts a
// deadline chain (service of a complaint, entry of an order, a filing).
type TriggerEvent struct {
	Date          time.Time       `json:"date"`
	Type          string          `json:"type"`
	Jurisdiction  string          `json:"jurisdiction"`
	ServiceMethod string          `json:"service_method"`
	Context       common.Metadata `json:"context,omitempty"`
}

// InstanceStatus tracks a deadline instance's cascade-relevant state.
type InstanceStatus string

const (
	// StatusAutoManaged instances follow cascades.
	StatusAutoManaged InstanceStatus = "auto_managed"

	// StatusOverridden instances carry a human correction and are terminal
	// with respect to cascades; only an explicit user action outside this
	// engine can return one to auto management.
	StatusOverridden InstanceStatus = "overridden"

	// StatusCompleted instances are done; cascades skip them via
	// AutoRecalculate=false set by the caller.
	StatusCompleted InstanceStatus = "completed"
)

// DeadlineInstance is the caller-persisted deadline entity.  The engine
// computes new field values and reports them; it never persists.
type DeadlineInstance struct {
	ID                   common.ID      `json:"id"`
	ParentDeadlineID     common.ID      `json:"parent_deadline_id,omitempty"`
	Date                 time.Time      `json:"date"`
	IsManuallyOverridden bool           `json:"is_manually_overridden"`
	AutoRecalculate      bool           `json:"auto_recalculate"`
	TriggerDate          time.Time      `json:"trigger_date"`
	Status               InstanceStatus `json:"status"`
}

// Protected reports whether a cascade must leave this instance untouched.
// This is the override invariant: no configuration or flag can cause a
// protected instance's date to change.
func (d DeadlineInstance) Protected() bool {
	return d.IsManuallyOverridden || !d.AutoRecalculate
}
