package task

import (
	"testing"
	"time"
)

func stamp(s string) time.Time {
	at, err := time.Parse(Stamp, s)
	if err != nil {
		panic(err)
	}

	return at
}

func Test_SetStatus_Sets_StartAt_When_Pending_Becomes_InProgress(t *testing.T) {
	tk := New("t1", "alice", "build")
	now := stamp("2026-08-24T10:00:00")

	tk.SetStatus(StatusInProgress, now)

	if tk.Status != StatusInProgress {
		t.Fatalf("status = %s, want %s", tk.Status, StatusInProgress)
	}

	if tk.StartAt == nil || !tk.StartAt.Equal(now) {
		t.Fatalf("StartAt = %v, want %v", tk.StartAt, now)
	}
}

func Test_SetStatus_Clears_StartAt_When_Task_Returns_To_Pending(t *testing.T) {
	tk := New("t1", "alice", "build")

	tk.SetStatus(StatusInProgress, stamp("2026-08-24T10:00:00"))
	tk.SetStatus(StatusPending, stamp("2026-08-24T11:00:00"))

	if tk.StartAt != nil {
		t.Fatalf("StartAt = %v, want nil", tk.StartAt)
	}
}

func Test_SetStatus_Sets_DoneAt_When_Entering_Done(t *testing.T) {
	tk := New("t1", "alice", "build")
	now := stamp("2026-08-24T10:00:00")

	tk.SetStatus(StatusDone, now)

	if tk.DoneAt == nil || !tk.DoneAt.Equal(now) {
		t.Fatalf("DoneAt = %v, want %v", tk.DoneAt, now)
	}
}

func Test_SetStatus_Keeps_DoneAt_When_Already_Done(t *testing.T) {
	tk := New("t1", "alice", "build")
	first := stamp("2026-08-24T10:00:00")

	tk.SetStatus(StatusDone, first)
	tk.SetStatus(StatusDone, stamp("2026-08-24T12:00:00"))

	if tk.DoneAt == nil || !tk.DoneAt.Equal(first) {
		t.Fatalf("DoneAt = %v, want %v", tk.DoneAt, first)
	}
}

func Test_SetStatus_Clears_DoneAt_When_Leaving_Done(t *testing.T) {
	tk := New("t1", "alice", "build")

	tk.SetStatus(StatusDone, stamp("2026-08-24T10:00:00"))
	tk.SetStatus(StatusInProgress, stamp("2026-08-24T11:00:00"))

	if tk.DoneAt != nil {
		t.Fatalf("DoneAt = %v, want nil", tk.DoneAt)
	}
}

func Test_IsValidStatus_Rejects_Unknown_Values(t *testing.T) {
	for _, s := range []Status{StatusPending, StatusInProgress, StatusDone, StatusRequested, StatusRemoved} {
		if !IsValidStatus(s) {
			t.Fatalf("IsValidStatus(%s) = false, want true", s)
		}
	}

	if IsValidStatus("cancelled") {
		t.Fatal("IsValidStatus(cancelled) = true, want false")
	}
}

func Test_Clone_Isolates_Slices_And_Pointers_From_Original(t *testing.T) {
	p := 3
	tk := New("t1", "alice", "build")
	tk.DependsOn = []string{"p1"}
	tk.Children = []string{"c1"}
	tk.Tags = []string{"infra"}
	tk.Priority = &p
	tk.Metadata = map[string]any{"nested": map[string]any{"k": "v"}}

	c := tk.Clone()
	c.DependsOn[0] = "other"
	c.Children = append(c.Children, "c2")
	*c.Priority = 9
	c.Metadata["nested"].(map[string]any)["k"] = "w"

	if tk.DependsOn[0] != "p1" {
		t.Fatalf("DependsOn leaked through clone: %v", tk.DependsOn)
	}

	if len(tk.Children) != 1 {
		t.Fatalf("Children leaked through clone: %v", tk.Children)
	}

	if *tk.Priority != 3 {
		t.Fatalf("Priority leaked through clone: %d", *tk.Priority)
	}

	if tk.Metadata["nested"].(map[string]any)["k"] != "v" {
		t.Fatalf("Metadata leaked through clone: %v", tk.Metadata)
	}
}

func Test_Compare_Orders_By_Priority_Descending_With_Nil_Last(t *testing.T) {
	now := stamp("2026-08-24T10:00:00")
	high, low := 5, 1

	a := New("a", "alice", "high")
	a.Priority = &high
	b := New("b", "alice", "low")
	b.Priority = &low
	c := New("c", "alice", "unset")

	tasks := []*Task{c, b, a}
	Sort(tasks, now)

	got := []string{tasks[0].ID, tasks[1].ID, tasks[2].ID}
	want := []string{"a", "b", "c"}

	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func Test_Compare_Breaks_Priority_Ties_On_StartAt_Then_CreatedAt_Then_ID(t *testing.T) {
	now := stamp("2026-08-24T10:00:00")
	early := stamp("2026-08-24T08:00:00")

	a := New("a", "alice", "scheduled early")
	a.StartAt = &early
	a.CreatedAt = now

	// No StartAt sorts as if starting now, after the early task.
	b := New("b", "alice", "unscheduled")
	b.CreatedAt = now

	c := New("c", "alice", "unscheduled, same created")
	c.CreatedAt = now

	tasks := []*Task{c, b, a}
	Sort(tasks, now)

	if tasks[0].ID != "a" || tasks[1].ID != "b" || tasks[2].ID != "c" {
		t.Fatalf("order = [%s %s %s], want [a b c]", tasks[0].ID, tasks[1].ID, tasks[2].ID)
	}
}
