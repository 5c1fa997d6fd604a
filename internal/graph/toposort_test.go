package graph

import (
	"slices"
	"testing"
	"time"

	"github.com/dandori/dandori/internal/task"
)

func orderIDs(tasks map[string]*task.Task, now time.Time) []string {
	ordered := Order(tasks, now)

	ids := make([]string, 0, len(ordered))
	for _, t := range ordered {
		ids = append(ids, t.ID)
	}

	return ids
}

func tableOf(tasks ...*task.Task) map[string]*task.Task {
	out := make(map[string]*task.Task, len(tasks))
	for _, t := range tasks {
		out[t.ID] = t
	}

	return out
}

func Test_Order_Respects_Edges_Within_Subset(t *testing.T) {
	a := task.New("a", "alice", "root")
	b := task.New("b", "alice", "middle")
	c := task.New("c", "alice", "leaf")
	a.Children = []string{"b"}
	b.DependsOn = []string{"a"}
	b.Children = []string{"c"}
	c.DependsOn = []string{"b"}

	got := orderIDs(tableOf(a, b, c), task.Now())

	if !slices.Equal(got, []string{"a", "b", "c"}) {
		t.Fatalf("order = %v, want [a b c]", got)
	}
}

func Test_Order_Ignores_Edges_Leaving_Subset(t *testing.T) {
	// b depends on a, but a is filtered out of the subset; b must still be
	// orderable as a root of the induced subgraph.
	b := task.New("b", "alice", "filtered parent")
	b.DependsOn = []string{"a"}
	c := task.New("c", "alice", "leaf")
	b.Children = []string{"c"}
	c.DependsOn = []string{"b"}

	got := orderIDs(tableOf(b, c), task.Now())

	if !slices.Equal(got, []string{"b", "c"}) {
		t.Fatalf("order = %v, want [b c]", got)
	}
}

func Test_Order_Breaks_Ties_By_Priority(t *testing.T) {
	now := task.Now()
	high, low := 9, 1

	a := task.New("a", "alice", "low priority root")
	a.Priority = &low
	b := task.New("b", "alice", "high priority root")
	b.Priority = &high
	a.CreatedAt, b.CreatedAt = now, now

	got := orderIDs(tableOf(a, b), now)

	if !slices.Equal(got, []string{"b", "a"}) {
		t.Fatalf("order = %v, want [b a]", got)
	}
}

func Test_Order_Appends_Cycle_Members_Instead_Of_Dropping(t *testing.T) {
	// A hand-built cyclic table; the store never produces one, but Order
	// must not lose nodes when given one anyway.
	a := task.New("a", "alice", "in cycle")
	b := task.New("b", "alice", "in cycle")
	a.Children, a.DependsOn = []string{"b"}, []string{"b"}
	b.Children, b.DependsOn = []string{"a"}, []string{"a"}
	free := task.New("free", "alice", "orderable")

	got := orderIDs(tableOf(a, b, free), task.Now())

	if len(got) != 3 {
		t.Fatalf("order dropped nodes: %v", got)
	}

	if got[0] != "free" {
		t.Fatalf("order = %v, want the acyclic node first", got)
	}
}

func Test_Order_Handles_Empty_Subset(t *testing.T) {
	got := Order(map[string]*task.Task{}, task.Now())

	if len(got) != 0 {
		t.Fatalf("order of empty subset = %v, want empty", got)
	}
}
