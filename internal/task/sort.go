package task

import (
	"cmp"
	"slices"
	"time"
)

// Compare orders two tasks by the default list key: priority descending
// (nil sorts after any concrete value), then start time ascending (tasks
// without a start time sort as if starting now, so unscheduled work lands
// among currently-due work), then creation time ascending, then ID.
//
// The same key breaks ties in topological ordering.
func Compare(a, b *Task, now time.Time) int {
	if c := comparePriority(a.Priority, b.Priority); c != 0 {
		return c
	}

	if c := startOrNow(a, now).Compare(startOrNow(b, now)); c != 0 {
		return c
	}

	if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
		return c
	}

	return cmp.Compare(a.ID, b.ID)
}

// comparePriority sorts higher priorities first and nil last.
func comparePriority(a, b *int) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	default:
		return cmp.Compare(*b, *a)
	}
}

func startOrNow(t *Task, now time.Time) time.Time {
	if t.StartAt != nil {
		return *t.StartAt
	}

	return now
}

// Sort sorts tasks in place by the default list key.
func Sort(tasks []*Task, now time.Time) {
	slices.SortStableFunc(tasks, func(a, b *Task) int {
		return Compare(a, b, now)
	})
}
