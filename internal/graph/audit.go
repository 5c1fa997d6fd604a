package graph

import (
	"slices"

	"github.com/dandori/dandori/internal/task"
)

// The auditor is the read-only batch counterpart to the store's
// per-mutation guards. It runs over any node table - the store's own
// working copy or a graph deserialized from an import - and reports
// findings instead of failing. It sits off the hot mutation path; the
// per-edge cycle guard in cycle.go stays authoritative for live links.

// DFS colors for cycle detection.
const (
	white = iota
	gray
	black
)

// FindCycles reports every directed cycle in the children relation. Each
// cycle is the path from the first occurrence of the repeated node up to
// the point of recurrence, plus the recurrence itself, e.g. [a b c a].
//
// Nodes are visited in ID order so the report is deterministic.
func FindCycles(tasks map[string]*task.Task) [][]string {
	var cycles [][]string

	color := make(map[string]int, len(tasks))

	var dfs func(id string, path []string)

	dfs = func(id string, path []string) {
		switch color[id] {
		case gray:
			start := slices.Index(path, id)
			cycle := append(slices.Clone(path[start:]), id)
			cycles = append(cycles, cycle)

			return
		case black:
			return
		}

		color[id] = gray
		path = append(path, id)

		if t, ok := tasks[id]; ok {
			for _, childID := range t.Children {
				if _, ok := tasks[childID]; ok {
					dfs(childID, slices.Clone(path))
				}
			}
		}

		color[id] = black
	}

	for _, id := range sortedIDs(tasks) {
		if color[id] == white {
			dfs(id, nil)
		}
	}

	return cycles
}

// Issue kinds reported by FindInconsistencies.
const (
	// MissingChild: the task lists a parent that does not list it back in
	// children.
	MissingChild = "missing_child"

	// MissingParent: the task lists a child that does not list it back in
	// depends_on.
	MissingParent = "missing_parent"
)

// Inconsistency is one broken half of a mirrored edge pair.
type Inconsistency struct {
	TaskID    string
	Kind      string
	RelatedID string
}

// FindInconsistencies checks edge-list symmetry for every pair of tasks
// that both exist: each depends_on entry must be mirrored in the parent's
// children and vice versa. References to IDs absent from the table are
// ignored - the audit flags only disagreements between two live tasks.
func FindInconsistencies(tasks map[string]*task.Task) []Inconsistency {
	var issues []Inconsistency

	for _, id := range sortedIDs(tasks) {
		t := tasks[id]

		for _, parentID := range t.DependsOn {
			parent, ok := tasks[parentID]
			if !ok {
				continue
			}

			if !slices.Contains(parent.Children, id) {
				issues = append(issues, Inconsistency{TaskID: id, Kind: MissingChild, RelatedID: parentID})
			}
		}

		for _, childID := range t.Children {
			child, ok := tasks[childID]
			if !ok {
				continue
			}

			if !slices.Contains(child.DependsOn, id) {
				issues = append(issues, Inconsistency{TaskID: id, Kind: MissingParent, RelatedID: childID})
			}
		}
	}

	return issues
}

func sortedIDs(tasks map[string]*task.Task) []string {
	ids := make([]string, 0, len(tasks))
	for id := range tasks {
		ids = append(ids, id)
	}

	slices.Sort(ids)

	return ids
}
