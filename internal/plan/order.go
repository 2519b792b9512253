package plan

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fancybread-com/cursor-plans/internal/types"
)

// ExecutionOrder resolves the phases into execution order using Kahn's
// algorithm. Among phases whose dependencies are satisfied, ascending
// priority runs first and priority ties break on declaration order, so the
// result is deterministic across runs.
//
// A dependency naming an undeclared phase is a PLAN_SCHEMA_INVALID error.
// A dependency cycle is a PHASE_CYCLE error carrying one stable cycle
// witness in its message. The validator pipeline reports both conditions
// as diagnostics before execution ever gets here.
func (d *Document) ExecutionOrder() ([]*Phase, error) {
	phases := d.Phases.All()

	indeg := make(map[string]int, len(phases))
	dependents := make(map[string][]*Phase, len(phases))
	for _, ph := range phases {
		for _, dep := range ph.Dependencies {
			if !d.Phases.Has(dep) {
				return nil, types.WrapError(types.PLAN_SCHEMA_INVALID,
					"cannot order phases",
					&SchemaError{
						Field:  "phases." + ph.Name + ".dependencies",
						Reason: "references unknown phase " + dep,
					})
			}
			indeg[ph.Name]++
			dependents[dep] = append(dependents[dep], ph)
		}
	}

	var ready []*Phase
	for _, ph := range phases {
		if indeg[ph.Name] == 0 {
			ready = append(ready, ph)
		}
	}

	order := make([]*Phase, 0, len(phases))
	for len(ready) > 0 {
		sort.SliceStable(ready, func(i, j int) bool {
			if ready[i].Priority != ready[j].Priority {
				return ready[i].Priority < ready[j].Priority
			}
			return ready[i].declIndex < ready[j].declIndex
		})

		next := ready[0]
		ready = ready[1:]
		order = append(order, next)

		for _, dep := range dependents[next.Name] {
			indeg[dep.Name]--
			if indeg[dep.Name] == 0 {
				ready = append(ready, dep)
			}
		}
	}

	if len(order) != len(phases) {
		witness := d.PhaseCycle()
		return nil, types.NewError(types.PHASE_CYCLE,
			fmt.Sprintf("phase dependencies form a cycle: %s", strings.Join(witness, " -> ")))
	}
	return order, nil
}

// PhaseCycle returns one dependency cycle among the declared phases as an
// ordered witness (first element repeated at the end), or nil when the
// graph is acyclic. The DFS runs in declaration order so the witness is
// stable across runs. Dependencies naming undeclared phases are skipped;
// reference checking is a separate concern.
func (d *Document) PhaseCycle() []string {
	const (
		white = 0
		gray  = 1
		black = 2
	)

	phases := d.Phases.All()
	color := make(map[string]int, len(phases))
	parent := make(map[string]string, len(phases))

	var cycle []string

	var dfs func(ph *Phase) bool
	dfs = func(ph *Phase) bool {
		color[ph.Name] = gray
		for _, dep := range ph.Dependencies {
			depPhase, ok := d.Phases.Get(dep)
			if !ok {
				continue
			}
			switch color[dep] {
			case white:
				parent[dep] = ph.Name
				if dfs(depPhase) {
					return true
				}
			case gray:
				// Back-edge ph -> dep. Reconstruct cycle dep ... ph -> dep.
				cycle = append(cycle, dep)
				cur := ph.Name
				for cur != "" && cur != dep {
					cycle = append(cycle, cur)
					cur = parent[cur]
				}
				cycle = append(cycle, dep)
				// Reverse so the walk reads in dependency direction.
				for i, j := 0, len(cycle)-1; i < j; i, j = i+1, j-1 {
					cycle[i], cycle[j] = cycle[j], cycle[i]
				}
				return true
			}
		}
		color[ph.Name] = black
		return false
	}

	for _, ph := range phases {
		if color[ph.Name] == white {
			if dfs(ph) {
				break
			}
		}
	}
	return cycle
}
