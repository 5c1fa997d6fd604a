// Package ops is the use-case layer: each operation loads nothing (the
// session loaded at open), mutates the store's working copy, and ends with
// commit-and-save on success or rollback on failure. The CLI and the API
// server both sit on top of it.
package ops

import (
	"fmt"
	"strings"
	"time"

	"github.com/dandori/dandori/internal/config"
	"github.com/dandori/dandori/internal/graph"
	"github.com/dandori/dandori/internal/ids"
	"github.com/dandori/dandori/internal/storage"
	"github.com/dandori/dandori/internal/task"
)

// requestNotePrefix marks notes attached via the request operation.
const requestNotePrefix = "[request-note]"

// Session owns one graph store bound to one backend for the lifetime of a
// command or server. Single-writer: no two sessions should mutate the same
// data path concurrently.
type Session struct {
	cfg   config.Config
	store *graph.Store
}

// Open selects the backend from the configured data path and loads the
// store. Both store generations start equal to the persisted state.
func Open(cfg config.Config) (*Session, error) {
	backend, err := storage.ForPath(cfg.DataPath)
	if err != nil {
		return nil, err
	}

	return OpenWith(cfg, backend)
}

// OpenWith opens a session on an explicit backend. Tests use this to
// inject in-memory or temp-file backends.
func OpenWith(cfg config.Config, backend graph.Backend) (*Session, error) {
	store := graph.New(backend)

	err := store.Load()
	if err != nil {
		return nil, err
	}

	return &Session{cfg: cfg, store: store}, nil
}

// Store exposes the underlying graph store for read-side callers (audit,
// API listings).
func (s *Session) Store() *graph.Store {
	return s.store
}

// Username returns the operating principal.
func (s *Session) Username() string {
	return s.cfg.Username
}

// finish commits the working copy and persists it. Mutating operations
// call this on success.
func (s *Session) finish() error {
	s.store.Commit()

	return s.store.Save()
}

// fail rolls the working copy back and passes the failure through.
func (s *Session) fail(err error) error {
	s.store.Rollback()

	return err
}

// ResolveID maps user input (full or shortened ID) to a known task ID.
func (s *Session) ResolveID(input string) (string, error) {
	known := make([]string, 0, s.store.Len())
	for id := range s.store.All() {
		known = append(known, id)
	}

	return ids.Resolve(input, known)
}

// ListFilter selects and orders tasks for display.
type ListFilter struct {
	// Status filters to one status when non-empty.
	Status task.Status

	// Archived filters on the archive flag; nil means both.
	Archived *bool

	// RequestedOnly keeps only requested tasks, independent of Status.
	RequestedOnly bool

	// Query keeps tasks whose title or description contains the string
	// (case-insensitive).
	Query string

	// Topo orders the result topologically instead of by the default key.
	Topo bool
}

// List returns the filtered tasks in the requested order. The returned
// tasks are the live working-copy records; callers must not mutate them.
func (s *Session) List(f ListFilter) []*task.Task {
	selected := map[string]*task.Task{}

	for id, t := range s.store.All() {
		if f.Status != "" && t.Status != f.Status {
			continue
		}

		if f.Archived != nil && t.IsArchived != *f.Archived {
			continue
		}

		if f.RequestedOnly && t.Status != task.StatusRequested {
			continue
		}

		if f.Query != "" && !matchesQuery(t, f.Query) {
			continue
		}

		selected[id] = t
	}

	now := task.Now()

	if f.Topo {
		return graph.Order(selected, now)
	}

	out := make([]*task.Task, 0, len(selected))
	for _, t := range selected {
		out = append(out, t)
	}

	task.Sort(out, now)

	return out
}

// Component lists only the tasks weakly connected to the given one, in
// default sort order.
func (s *Session) Component(id string) ([]*task.Task, error) {
	comp, err := s.store.ComponentOf(id)
	if err != nil {
		return nil, err
	}

	task.Sort(comp, task.Now())

	return comp, nil
}

// Get returns a single task.
func (s *Session) Get(id string) (*task.Task, error) {
	return s.store.Get(id)
}

// Deps returns the parents a task depends on, best effort: parents that
// were partially deleted are omitted rather than failing the display.
func (s *Session) Deps(id string) ([]*task.Task, error) {
	t, err := s.store.Get(id)
	if err != nil {
		return nil, err
	}

	return s.store.GetMany(t.DependsOn), nil
}

// Children returns a task's children, best effort like Deps.
func (s *Session) Children(id string) ([]*task.Task, error) {
	t, err := s.store.Get(id)
	if err != nil {
		return nil, err
	}

	return s.store.GetMany(t.Children), nil
}

// Reason summarizes why a task exists in the graph: its title plus the
// titles of everything it depends on and everything that depends on it.
// Dangling references render as a placeholder instead of failing.
type Reason struct {
	Task      string
	DependsOn []string
	Children  []string
}

// Reason builds the dependency summary for one task.
func (s *Session) Reason(id string) (Reason, error) {
	t, err := s.store.Get(id)
	if err != nil {
		return Reason{}, err
	}

	return Reason{
		Task:      t.Title,
		DependsOn: s.titlesOf(t.DependsOn),
		Children:  s.titlesOf(t.Children),
	}, nil
}

func (s *Session) titlesOf(taskIDs []string) []string {
	out := make([]string, 0, len(taskIDs))

	for _, id := range taskIDs {
		if t, err := s.store.Get(id); err == nil {
			out = append(out, t.Title)
		} else {
			out = append(out, fmt.Sprintf("<%s not found>", id))
		}
	}

	return out
}

// AddParams describes a new task. Zero values mean "unset".
type AddParams struct {
	Title       string
	Description string
	Priority    *int
	StartAt     *time.Time
	DueDate     *time.Time
	Tags        []string
	ParentIDs   []string

	// OverwriteID forces a caller-supplied ID instead of a generated one.
	OverwriteID string
}

// Add creates a task owned by the session user and links it under the
// given parents. A root task has no parents. Any failure rolls the whole
// creation back.
func (s *Session) Add(p AddParams) (*task.Task, error) {
	id := p.OverwriteID
	if id == "" {
		id = ids.New(s.cfg.Username)
	}

	t := task.New(id, s.cfg.Username, p.Title)
	t.Description = p.Description
	t.Priority = p.Priority
	t.StartAt = p.StartAt
	t.DueDate = p.DueDate
	t.Tags = p.Tags

	if err := s.store.Add(t); err != nil {
		return nil, s.fail(err)
	}

	for _, parentID := range p.ParentIDs {
		if err := s.store.Link(parentID, t.ID); err != nil {
			return nil, s.fail(err)
		}
	}

	t.Touch(task.Now())

	return t, s.finish()
}

// UpdateParams is the desired post-update state of a task's basic fields
// and edge sets. Title nil keeps the current title; every other field is
// applied as given, so callers merge current values first. ParentIDs and
// ChildIDs are reconciled as sets: missing edges are added (cycle-guarded)
// and extra ones removed.
type UpdateParams struct {
	Title       *string
	Description string
	Priority    *int
	StartAt     *time.Time
	DueDate     *time.Time
	Tags        []string
	ParentIDs   []string
	ChildIDs    []string
}

// Update applies the desired state to one task. Status and request fields
// have their own operations.
func (s *Session) Update(id string, p UpdateParams) (*task.Task, error) {
	t, err := s.store.Get(id)
	if err != nil {
		return nil, err
	}

	if p.Title != nil {
		t.Title = *p.Title
	}

	t.Description = p.Description
	t.Priority = p.Priority
	t.StartAt = p.StartAt
	t.DueDate = p.DueDate
	t.Tags = p.Tags

	if err := s.reconcileParents(t, p.ParentIDs); err != nil {
		return nil, s.fail(err)
	}

	if err := s.reconcileChildren(t, p.ChildIDs); err != nil {
		return nil, s.fail(err)
	}

	t.Touch(task.Now())

	return t, s.finish()
}

func (s *Session) reconcileParents(t *task.Task, want []string) error {
	current := toSet(t.DependsOn)
	desired := toSet(want)

	for parentID := range desired {
		if !current[parentID] {
			if err := s.store.Link(parentID, t.ID); err != nil {
				return err
			}
		}
	}

	for parentID := range current {
		if !desired[parentID] {
			if err := s.store.Unlink(parentID, t.ID); err != nil {
				return err
			}
		}
	}

	return nil
}

func (s *Session) reconcileChildren(t *task.Task, want []string) error {
	current := toSet(t.Children)
	desired := toSet(want)

	for childID := range desired {
		if !current[childID] {
			if err := s.store.Link(t.ID, childID); err != nil {
				return err
			}
		}
	}

	for childID := range current {
		if !desired[childID] {
			if err := s.store.Unlink(t.ID, childID); err != nil {
				return err
			}
		}
	}

	return nil
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}

	return set
}

// SetStatus transitions a task's status, maintaining start/done stamps.
func (s *Session) SetStatus(id string, status task.Status) (*task.Task, error) {
	if !task.IsValidStatus(status) {
		return nil, fmt.Errorf("invalid status: %s", status)
	}

	t, err := s.store.Get(id)
	if err != nil {
		return nil, err
	}

	t.SetStatus(status, task.Now())

	return t, s.finish()
}

// RequestParams carries the handoff details for SetRequested.
type RequestParams struct {
	// To is the principal the task is handed to; empty keeps the current
	// assignee.
	To string

	// Due overrides the due date as an SLA when set.
	Due *time.Time

	// Note is attached with the request-note prefix when non-empty.
	Note string

	// By defaults to the session user.
	By string
}

// SetRequested marks a task as requested: status flips to requested, the
// assignee and requester are recorded, and requested_at is set once (a
// re-request keeps the original time).
func (s *Session) SetRequested(id string, p RequestParams) (*task.Task, error) {
	t, err := s.store.Get(id)
	if err != nil {
		return nil, err
	}

	now := task.Now()

	if p.To != "" {
		t.AssignedTo = p.To
	}

	if p.Note != "" {
		t.RequestedNote = fmt.Sprintf("%s %s", requestNotePrefix, p.Note)
	}

	if p.Due != nil {
		t.DueDate = p.Due
	}

	t.RequestedBy = p.By
	if t.RequestedBy == "" {
		t.RequestedBy = s.cfg.Username
	}

	t.Status = task.StatusRequested
	if t.RequestedAt == nil {
		t.RequestedAt = &now
	}

	t.Touch(now)

	return t, s.finish()
}

// ArchiveTree archives the whole weakly connected component containing id
// and returns the touched task IDs.
func (s *Session) ArchiveTree(id string) ([]string, error) {
	archived, err := s.store.Archive(id)
	if err != nil {
		return nil, s.fail(err)
	}

	return archived, s.finish()
}

// UnarchiveTree is the symmetric restore.
func (s *Session) UnarchiveTree(id string) ([]string, error) {
	restored, err := s.store.Unarchive(id)
	if err != nil {
		return nil, s.fail(err)
	}

	return restored, s.finish()
}

// Remove deletes a task after severing all its edges.
func (s *Session) Remove(id string) error {
	if err := s.store.Remove(id); err != nil {
		return s.fail(err)
	}

	return s.finish()
}

// InsertParams describes the task created by InsertBetween.
type InsertParams struct {
	Title       string
	Description string
	Priority    *int
	Tags        []string
	OverwriteID string
}

// InsertBetween creates a task and splices it between parent and child,
// rewiring a direct parent -> child edge when one exists. On failure the
// working copy rolls back to the last committed state, which also cleans
// up the orphan left by the both-links-failed edge case.
func (s *Session) InsertBetween(parentID, childID string, p InsertParams) (*task.Task, error) {
	id := p.OverwriteID
	if id == "" {
		id = ids.New(s.cfg.Username)
	}

	t := task.New(id, s.cfg.Username, p.Title)
	t.Description = p.Description
	t.Priority = p.Priority
	t.Tags = p.Tags

	if err := s.store.InsertBetween(parentID, childID, t); err != nil {
		return nil, s.fail(err)
	}

	t.Touch(task.Now())

	return t, s.finish()
}

// LinkParents links the given parents above an existing task and returns
// the refreshed child.
func (s *Session) LinkParents(childID string, parentIDs []string) (*task.Task, error) {
	if _, err := s.store.Get(childID); err != nil {
		return nil, err
	}

	for _, parentID := range parentIDs {
		if _, err := s.store.Get(parentID); err != nil {
			return nil, err
		}
	}

	for _, parentID := range parentIDs {
		if err := s.store.Link(parentID, childID); err != nil {
			return nil, s.fail(err)
		}
	}

	if err := s.finish(); err != nil {
		return nil, err
	}

	return s.store.Get(childID)
}

// RemoveParent severs the edge parent -> child.
func (s *Session) RemoveParent(childID, parentID string) error {
	if err := s.store.Unlink(parentID, childID); err != nil {
		return s.fail(err)
	}

	return s.finish()
}

// LinkChildren links the given children below an existing task and
// returns the refreshed parent.
func (s *Session) LinkChildren(parentID string, childIDs []string) (*task.Task, error) {
	if _, err := s.store.Get(parentID); err != nil {
		return nil, err
	}

	for _, childID := range childIDs {
		if _, err := s.store.Get(childID); err != nil {
			return nil, err
		}
	}

	for _, childID := range childIDs {
		if err := s.store.Link(parentID, childID); err != nil {
			return nil, s.fail(err)
		}
	}

	if err := s.finish(); err != nil {
		return nil, err
	}

	return s.store.Get(parentID)
}

// RemoveChild severs the edge parent -> child.
func (s *Session) RemoveChild(parentID, childID string) error {
	if err := s.store.Unlink(parentID, childID); err != nil {
		return s.fail(err)
	}

	return s.finish()
}

func matchesQuery(t *task.Task, query string) bool {
	return containsFold(t.Title, query) || containsFold(t.Description, query)
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
