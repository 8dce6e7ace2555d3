package source

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tank0226/current-task/internal/state"
)

// Source abstracts the collaborator tasks are fetched from.
type Source interface {
	Fetch(ctx context.Context) ([]state.Task, error)
	Name() string
}

// FileSource reads tasks from a YAML document of the form:
//
//	tasks:
//	  - title: Write report
//	    dueDate: 2020-08-14
//	    markedCurrent: true
type FileSource struct {
	path string
}

// NewFileSource creates a source backed by the given file path.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

func (f *FileSource) Name() string {
	return fmt.Sprintf("file(%s)", f.path)
}

// Fetch reads and decodes the task list. Every call re-reads the file so
// edits show up on the next refresh.
func (f *FileSource) Fetch(ctx context.Context) ([]state.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("read tasks file: %w", err)
	}
	var doc struct {
		Tasks []state.Task `yaml:"tasks"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode tasks file: %w", err)
	}
	return doc.Tasks, nil
}
