package storage

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"
	"gopkg.in/yaml.v3"

	"github.com/dandori/dandori/internal/task"
)

// YAML persists the node table as a single YAML document:
//
//	tasks:
//	  <id>: {task fields...}
//
// Saves go through an atomic rename so a crash mid-write never leaves a
// truncated file behind.
type YAML struct {
	path string
}

// NewYAML creates a YAML backend for the given file path. The file may not
// exist yet; Load treats that as an empty table.
func NewYAML(path string) *YAML {
	return &YAML{path: path}
}

// document is the on-disk layout.
type document struct {
	Tasks map[string]*task.Task `yaml:"tasks"`
}

// Load reads the full node table, or returns an empty one when no prior
// state exists.
func (y *YAML) Load() (map[string]*task.Task, error) {
	raw, err := os.ReadFile(y.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]*task.Task{}, nil
	}

	if err != nil {
		return nil, fmt.Errorf("load yaml: %w", err)
	}

	var doc document

	err = yaml.Unmarshal(raw, &doc)
	if err != nil {
		return nil, fmt.Errorf("load yaml: parse %s: %w", y.path, err)
	}

	if doc.Tasks == nil {
		doc.Tasks = map[string]*task.Task{}
	}

	return doc.Tasks, nil
}

// Save durably writes the given generation of the node table.
func (y *YAML) Save(tasks map[string]*task.Task) error {
	raw, err := yaml.Marshal(document{Tasks: tasks})
	if err != nil {
		return fmt.Errorf("save yaml: %w", err)
	}

	err = os.MkdirAll(filepath.Dir(y.path), 0o750)
	if err != nil {
		return fmt.Errorf("save yaml: %w", err)
	}

	err = atomic.WriteFile(y.path, bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("save yaml: %w", err)
	}

	return nil
}
