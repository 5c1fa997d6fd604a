package ops

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"

	"github.com/dandori/dandori/internal/graph"
	"github.com/dandori/dandori/internal/task"
)

// ExportJSON writes the full working node table as a flat id -> task JSON
// document. An existing file is never overwritten.
func (s *Session) ExportJSON(path string) error {
	_, err := os.Stat(path)
	if err == nil {
		return fmt.Errorf("export: file already exists: %s", path)
	}

	if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("export: %w", err)
	}

	raw, err := json.MarshalIndent(s.store.All(), "", "  ")
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}

	err = os.WriteFile(path, raw, 0o600)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}

	return nil
}

// ImportReport lists what an import did.
type ImportReport struct {
	// Imported holds the IDs added to the store.
	Imported []string

	// Skipped holds incoming IDs that collided with existing tasks and
	// were left untouched (existing data wins).
	Skipped []string
}

// ImportJSON merges a previously exported document into the store.
// Colliding IDs are skipped, imported tasks keep their external IDs, and
// the whole import rolls back if any add fails. Imported graphs bypass the
// store's mutation guards, so callers should run Check afterwards.
func (s *Session) ImportJSON(path string) (ImportReport, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return ImportReport{}, fmt.Errorf("import: %w", err)
	}

	var incoming map[string]*task.Task

	err = json.Unmarshal(raw, &incoming)
	if err != nil {
		return ImportReport{}, fmt.Errorf("import: parse %s: %w", path, err)
	}

	var report ImportReport

	for _, id := range sortedKeys(incoming) {
		if _, err := s.store.Get(id); err == nil {
			report.Skipped = append(report.Skipped, id)

			continue
		}

		if err := s.store.AddWithID(incoming[id], id); err != nil {
			return ImportReport{}, s.fail(fmt.Errorf("import: %w", err))
		}

		report.Imported = append(report.Imported, id)
	}

	return report, s.finish()
}

// AuditReport is the outcome of a consistency check.
type AuditReport struct {
	Cycles          [][]string
	Inconsistencies []graph.Inconsistency
}

// Clean reports whether the audit found nothing.
func (r AuditReport) Clean() bool {
	return len(r.Cycles) == 0 && len(r.Inconsistencies) == 0
}

// Check runs the whole-graph consistency audit against the working copy.
// Read-only; it reports findings instead of failing.
func (s *Session) Check() AuditReport {
	tasks := s.store.All()

	return AuditReport{
		Cycles:          graph.FindCycles(tasks),
		Inconsistencies: graph.FindInconsistencies(tasks),
	}
}

func sortedKeys(m map[string]*task.Task) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	slices.Sort(keys)

	return keys
}
