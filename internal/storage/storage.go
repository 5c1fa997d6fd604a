// Package storage provides the persistence backends behind the graph
// store's Load/Save contract: a YAML file for the default profile and a
// SQLite database for larger graphs. Which one serves a session is decided
// by the data path suffix.
package storage

import (
	"fmt"
	"strings"

	"github.com/dandori/dandori/internal/graph"
)

// ForPath selects a backend by data path suffix: .yaml / .yml for the YAML
// file backend, .db / .sqlite for SQLite.
func ForPath(path string) (graph.Backend, error) {
	switch {
	case strings.HasSuffix(path, ".yaml"), strings.HasSuffix(path, ".yml"):
		return NewYAML(path), nil
	case strings.HasSuffix(path, ".db"), strings.HasSuffix(path, ".sqlite"):
		return NewSQLite(path), nil
	default:
		return nil, fmt.Errorf("storage: unsupported data path: %s", path)
	}
}
