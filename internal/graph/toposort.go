package graph

import (
	"time"

	"github.com/dandori/dandori/internal/task"
)

// Order returns a total order of the given subset that respects the DAG
// edges restricted to it (Kahn's algorithm over the induced subgraph).
// Edges leaving the subset are ignored, so a filtered view is always
// orderable even when the full graph is not.
//
// Ties among simultaneously available nodes break on the default task sort
// key. If nodes remain after the queue drains - only possible when the
// subset itself contains a cycle, which a correctly maintained store never
// produces - they are appended at the end in key order rather than
// crashing or being dropped.
func Order(tasks map[string]*task.Task, now time.Time) []*task.Task {
	indeg := make(map[string]int, len(tasks))
	for id := range tasks {
		indeg[id] = 0
	}

	// Count only edges whose source is also in the subset.
	for _, t := range tasks {
		for _, childID := range t.Children {
			if _, ok := tasks[childID]; ok {
				indeg[childID]++
			}
		}
	}

	var queue []*task.Task

	for id, d := range indeg {
		if d == 0 {
			queue = append(queue, tasks[id])
		}
	}

	task.Sort(queue, now)

	result := make([]*task.Task, 0, len(tasks))

	for len(queue) > 0 {
		t := queue[0]
		queue = queue[1:]
		result = append(result, t)

		for _, childID := range t.Children {
			if _, ok := indeg[childID]; !ok {
				continue
			}

			indeg[childID]--
			if indeg[childID] == 0 {
				queue = append(queue, tasks[childID])
			}
		}
	}

	// Leftovers mean the subset held a cycle; order them by key and move on.
	if len(result) < len(tasks) {
		placed := make(map[string]bool, len(result))
		for _, t := range result {
			placed[t.ID] = true
		}

		var remains []*task.Task

		for id, t := range tasks {
			if !placed[id] {
				remains = append(remains, t)
			}
		}

		task.Sort(remains, now)
		result = append(result, remains...)
	}

	return result
}
