package graph

import "github.com/dandori/dandori/internal/task"

// ComponentOf returns every task weakly connected to start, including
// start itself: a depth-first walk that follows both children and
// depends_on edges, treating the graph as undirected. Pure connectivity;
// no DAG or symmetry checks.
//
// Fails with NotFound if start does not exist, or if the walk reaches an
// edge referencing a task that is gone - the store's own API never
// produces such a state, but imported graphs can.
func (s *Store) ComponentOf(start string) ([]*task.Task, error) {
	var visited []*task.Task

	seen := map[string]bool{}
	stack := []string{start}

	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if seen[cur] {
			continue
		}

		seen[cur] = true

		t, err := s.Get(cur)
		if err != nil {
			return nil, err
		}

		visited = append(visited, t)
		stack = append(stack, t.Children...)
		stack = append(stack, t.DependsOn...)
	}

	return visited, nil
}
