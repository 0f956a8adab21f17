package rules

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/praxis-legal/docketcalc/pkg/errors"
)

// Registry manages rule definitions loaded from YAML documents, keyed by
// trigger type.  Every rule passes Validate before registration, so a
// registry never holds a rule that could fail structurally at evaluation
// time.
type Registry struct {
	mu    sync.RWMutex
	rules map[string]*RuleDefinition
}

// NewRegistry creates an empty rule registry.
func NewRegistry() *Registry {
	return &Registry{rules: make(map[string]*RuleDefinition)}
}

// LoadDir loads all YAML rule files from a directory.  The first failing
// file aborts the load; rule authoring errors should be fixed, not
// skipped.
func (r *Registry) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return errors.Wrap(err, errors.CodeInternal, "reading rule dir "+dir)
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

// LoadFile loads and validates a single rule YAML file.
func (r *Registry) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, errors.CodeInternal, "reading rule file "+path)
	}

	var rule RuleDefinition
	if err := yaml.Unmarshal(data, &rule); err != nil {
		return errors.Wrap(err, errors.CodeRuleSchema, "parsing rule file "+path)
	}

	if err := r.Register(&rule); err != nil {
		return errors.Wrap(err, errors.CodeUnknown, "loading rule file "+path)
	}
	return nil
}

// Register validates a rule and adds it under its trigger type, replacing
// any previous rule for the same trigger.
func (r *Registry) Register(rule *RuleDefinition) error {
	if rule == nil {
		return errors.RuleSchema("rule must not be nil")
	}
	if err := rule.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rules[rule.Trigger.Type] = rule
	return nil
}

// Get returns the rule registered for a trigger type.
func (r *Registry) Get(triggerType string) (*RuleDefinition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rule, ok := r.rules[triggerType]
	if !ok {
		return nil, errors.Newf(errors.CodeRuleNotFound,
			"no rule registered for trigger type %q", triggerType)
	}
	return rule, nil
}

// TriggerTypes lists the registered trigger types, sorted.
func (r *Registry) TriggerTypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.rules))
	for t := range r.rules {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
