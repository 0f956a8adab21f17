package rules

import (
	"sort"
	"strings"

	"github.com/praxis-legal/docketcalc/pkg/errors"
)

// EvaluationOrder resolves the order in which deadline specs must be
// computed so that every spec's DependsOn anchor is computed before the
// spec itself.  Specs are held in an index arena with integer edges and
// ordered by iterative Kahn topological sort — no recursion, bounded by
// the spec count.
//
// Ties (specs that become ready in the same round) break on declaration
// index, so the order is deterministic for a given rule document.
//
// A cycle yields a CodeCycle error naming the specs left unordered.
func EvaluationOrder(specs []DeadlineSpec) ([]int, error) {
	n := len(specs)
	indexByID := make(map[string]int, n)
	for i, s := range specs {
		indexByID[s.ID] = i
	}

	// dependents[i] lists spec indices anchored on spec i.
	dependents := make([][]int, n)
	indegree := make([]int, n)
	for i, s := range specs {
		if s.DependsOn == "" {
			continue
		}
		parent, ok := indexByID[s.DependsOn]
		if !ok {
			return nil, errors.RuleSchema("deadline " + s.ID + " depends on unknown spec " + s.DependsOn).
				WithField("depends_on")
		}
		dependents[parent] = append(dependents[parent], i)
		indegree[i]++
	}

	ready := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if indegree[i] == 0 {
			ready = append(ready, i)
		}
	}

	order := make([]int, 0, n)
	for len(ready) > 0 {
		sort.Ints(ready)
		next := ready[0]
		ready = ready[1:]
		order = append(order, next)
		for _, d := range dependents[next] {
			indegree[d]--
			if indegree[d] == 0 {
				ready = append(ready, d)
			}
		}
	}

	if len(order) != n {
		var stuck []string
		for i := 0; i < n; i++ {
			if indegree[i] > 0 {
				stuck = append(stuck, specs[i].ID)
			}
		}
		return nil, errors.Cycle("deadline specs form a dependency cycle").
			WithDetail("unordered specs: " + strings.Join(stuck, ", "))
	}
	return order, nil
}
