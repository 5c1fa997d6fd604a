package graph

// wouldCycle reports whether adding the edge parent -> child would close a
// directed cycle. The new edge cycles iff parent is already reachable from
// child through existing children edges, so the guard walks forward from
// child and looks for parent. The visited set terminates the walk even on
// graphs that are already cyclic or merge-heavy.
//
// Read-only against the working copy. IDs that resolve to no task are
// skipped; existence checks belong to the caller.
func (s *Store) wouldCycle(parentID, childID string) bool {
	seen := map[string]bool{}
	stack := []string{childID}

	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if seen[cur] {
			continue
		}

		seen[cur] = true

		if cur == parentID {
			return true
		}

		if t, ok := s.working[cur]; ok {
			stack = append(stack, t.Children...)
		}
	}

	return false
}
