// Package task defines the task entity and its field-level rules: status
// transitions, timestamp bookkeeping, and deep-copy semantics. Graph
// structure (edges, cycles, components) lives in internal/graph.
package task

import (
	"slices"
	"time"
)

// Status is the lifecycle state of a task.
type Status string

// Valid task statuses.
const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
	StatusRequested  Status = "requested"
	StatusRemoved    Status = "removed"
)

// validStatuses are the allowed status values.
var validStatuses = []Status{
	StatusPending,
	StatusInProgress,
	StatusDone,
	StatusRequested,
	StatusRemoved,
}

// IsValidStatus checks if the status is valid.
func IsValidStatus(s Status) bool {
	return slices.Contains(validStatuses, s)
}

// Stamp is the timestamp layout used everywhere a task timestamp is
// rendered or persisted. Second precision, no zone suffix.
const Stamp = "2006-01-02T15:04:05"

// Now returns the current time truncated to Stamp precision.
func Now() time.Time {
	return time.Now().Truncate(time.Second)
}

// Task is a node in the dependency graph. Edges are stored as ID lists on
// both endpoints: DependsOn holds parent IDs (edges into this task),
// Children holds child IDs (edges out of it). The two lists are kept
// mirrored by the graph store.
type Task struct {
	ID          string     `yaml:"id" json:"id"`
	Owner       string     `yaml:"owner" json:"owner"`
	Title       string     `yaml:"title" json:"title"`
	Description string     `yaml:"description" json:"description"`
	CreatedAt   time.Time  `yaml:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `yaml:"updated_at" json:"updated_at"`
	StartAt     *time.Time `yaml:"start_at,omitempty" json:"start_at,omitempty"`
	DueDate     *time.Time `yaml:"due_date,omitempty" json:"due_date,omitempty"`
	DoneAt      *time.Time `yaml:"done_at,omitempty" json:"done_at,omitempty"`

	// Priority is optional; nil is distinct from zero and sorts after any
	// concrete value.
	Priority *int `yaml:"priority,omitempty" json:"priority,omitempty"`

	Status     Status   `yaml:"status" json:"status"`
	IsArchived bool     `yaml:"is_archived" json:"is_archived"`
	DependsOn  []string `yaml:"depends_on" json:"depends_on"`
	Children   []string `yaml:"children" json:"children"`

	// Request metadata, populated only via the request mutation.
	AssignedTo    string     `yaml:"assigned_to,omitempty" json:"assigned_to,omitempty"`
	RequestedBy   string     `yaml:"requested_by,omitempty" json:"requested_by,omitempty"`
	RequestedAt   *time.Time `yaml:"requested_at,omitempty" json:"requested_at,omitempty"`
	RequestedNote string     `yaml:"requested_note,omitempty" json:"requested_note,omitempty"`

	Tags []string `yaml:"tags,omitempty" json:"tags,omitempty"`

	// Metadata is an opaque document; the core never interprets it.
	Metadata map[string]any `yaml:"metadata,omitempty" json:"metadata,omitempty"`
}

// New creates a pending task with creation timestamps set.
func New(id, owner, title string) *Task {
	now := Now()

	return &Task{
		ID:        id,
		Owner:     owner,
		Title:     title,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
		DependsOn: []string{},
		Children:  []string{},
	}
}

// Touch refreshes the update timestamp.
func (t *Task) Touch(now time.Time) {
	t.UpdatedAt = now
}

// SetStatus transitions the task and maintains the derived timestamps:
// StartAt is set on entering in_progress from pending (or an unset status)
// and cleared on returning to pending; DoneAt is set on entering done and
// cleared on leaving it.
func (t *Task) SetStatus(next Status, now time.Time) {
	prev := t.Status

	switch {
	case next == StatusInProgress && (prev == StatusPending || prev == ""):
		at := now
		t.StartAt = &at
	case next == StatusPending:
		t.StartAt = nil
	}

	if next == StatusDone && prev != StatusDone {
		at := now
		t.DoneAt = &at
	}

	if next != StatusDone && prev == StatusDone {
		t.DoneAt = nil
	}

	t.Status = next
	t.UpdatedAt = now
}

// Clone returns a deep copy. Slices, optional timestamps, and the metadata
// document are all copied, so mutating the clone never perturbs the
// original. The graph store relies on this when snapshotting between its
// committed and working generations.
func (t *Task) Clone() *Task {
	c := *t

	c.DependsOn = slices.Clone(t.DependsOn)
	c.Children = slices.Clone(t.Children)
	c.Tags = slices.Clone(t.Tags)
	c.StartAt = cloneTime(t.StartAt)
	c.DueDate = cloneTime(t.DueDate)
	c.DoneAt = cloneTime(t.DoneAt)
	c.RequestedAt = cloneTime(t.RequestedAt)
	c.Priority = clonePtr(t.Priority)

	if t.Metadata != nil {
		c.Metadata = cloneDoc(t.Metadata)
	}

	return &c
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}

	c := *t

	return &c
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}

	c := *p

	return &c
}

// cloneDoc deep-copies an opaque metadata document. Nested maps and slices
// are copied; scalar leaves are shared (they are immutable values).
func cloneDoc(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}

	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return cloneDoc(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}

		return out
	default:
		return val
	}
}
