package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/dandori/dandori/internal/task"
)

var timeComparer = cmp.Comparer(func(a, b time.Time) bool { return a.Equal(b) })

func stamp(t *testing.T, s string) time.Time {
	t.Helper()

	at, err := time.Parse(task.Stamp, s)
	if err != nil {
		t.Fatalf("parse stamp %q: %v", s, err)
	}

	return at
}

func sampleTable(t *testing.T) map[string]*task.Task {
	t.Helper()

	priority := 2
	due := stamp(t, "2026-09-01T00:00:00")

	a := &task.Task{
		ID:        "a",
		Owner:     "alice",
		Title:     "root task",
		Status:    task.StatusPending,
		CreatedAt: stamp(t, "2026-08-24T10:00:00"),
		UpdatedAt: stamp(t, "2026-08-24T10:05:00"),
		Priority:  &priority,
		DueDate:   &due,
		DependsOn: []string{},
		Children:  []string{"b"},
		Tags:      []string{"infra", "urgent"},
		Metadata:  map[string]any{"source": "manual"},
	}

	b := &task.Task{
		ID:          "b",
		Owner:       "alice",
		Title:       "child task",
		Description: "does the real work",
		Status:      task.StatusInProgress,
		CreatedAt:   stamp(t, "2026-08-24T10:01:00"),
		UpdatedAt:   stamp(t, "2026-08-24T10:05:00"),
		DependsOn:   []string{"a"},
		Children:    []string{},
	}

	return map[string]*task.Task{"a": a, "b": b}
}

func Test_YAML_Load_Returns_Empty_Table_When_File_Missing(t *testing.T) {
	backend := NewYAML(filepath.Join(t.TempDir(), "tasks.yaml"))

	got, err := backend.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if len(got) != 0 {
		t.Fatalf("got %d tasks from missing file, want 0", len(got))
	}
}

func Test_YAML_Save_Then_Load_Roundtrips_Tasks(t *testing.T) {
	backend := NewYAML(filepath.Join(t.TempDir(), "tasks.yaml"))
	want := sampleTable(t)

	if err := backend.Save(want); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := backend.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if diff := cmp.Diff(want, got, timeComparer); diff != "" {
		t.Fatalf("roundtrip mismatch (-want +got):\n%s", diff)
	}
}

func Test_YAML_Save_Creates_Parent_Directories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deep", "tasks.yaml")
	backend := NewYAML(path)

	if err := backend.Save(sampleTable(t)); err != nil {
		t.Fatalf("save: %v", err)
	}

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("stat after save: %v", err)
	}
}

func Test_YAML_Load_Fails_On_Malformed_Document(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.yaml")
	if err := os.WriteFile(path, []byte("tasks: [not a map"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	if _, err := NewYAML(path).Load(); err == nil {
		t.Fatal("load of malformed yaml succeeded, want error")
	}
}

func Test_ForPath_Selects_Backend_By_Extension(t *testing.T) {
	cases := []struct {
		path    string
		wantErr bool
	}{
		{path: "tasks.yaml"},
		{path: "tasks.yml"},
		{path: "tasks.db"},
		{path: "tasks.sqlite"},
		{path: "tasks.json", wantErr: true},
		{path: "tasks", wantErr: true},
	}

	for _, tc := range cases {
		_, err := ForPath(tc.path)

		if tc.wantErr && err == nil {
			t.Fatalf("ForPath(%s) succeeded, want error", tc.path)
		}

		if !tc.wantErr && err != nil {
			t.Fatalf("ForPath(%s): %v", tc.path, err)
		}
	}
}
