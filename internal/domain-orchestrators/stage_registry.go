// Package orchestrators coordinates workflows across multiple domain services.
package orchestrators

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ochairo/stagerunner/internal/domain/entities"
)

// InvalidStageError reports a requested stage name that is not registered
type InvalidStageError struct {
	Name  string
	Valid []string
}

func (e *InvalidStageError) Error() string {
	quoted := make([]string, len(e.Valid))
	for i, name := range e.Valid {
		quoted[i] = "'" + name + "'"
	}
	return fmt.Sprintf("Invalid stage '%s' (choose from [%s])", e.Name, strings.Join(quoted, ", "))
}

// Registry holds the stage catalogue in its declared order
type Registry struct {
	order  []string
	stages map[string]entities.Stage
}

// NewRegistry creates a registry. Stage names must be unique and non-empty.
func NewRegistry(stages ...entities.Stage) (*Registry, error) {
	r := &Registry{
		order:  make([]string, 0, len(stages)),
		stages: make(map[string]entities.Stage, len(stages)),
	}
	for _, stage := range stages {
		if strings.TrimSpace(stage.Name) == "" {
			return nil, errors.New("stage name must not be empty")
		}
		if _, exists := r.stages[stage.Name]; exists {
			return nil, fmt.Errorf("duplicate stage %q", stage.Name)
		}
		if stage.Action.Kind == entities.ActionCheck && stage.Action.Check == nil {
			return nil, fmt.Errorf("stage %q has no check function", stage.Name)
		}
		r.order = append(r.order, stage.Name)
		r.stages[stage.Name] = stage
	}
	return r, nil
}

// Names returns the stage names in catalogue order
func (r *Registry) Names() []string {
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// Lookup returns the named stage
func (r *Registry) Lookup(name string) (entities.Stage, bool) {
	stage, ok := r.stages[name]
	return stage, ok
}

// Validate checks every requested name before anything runs
func (r *Registry) Validate(names []string) error {
	for _, name := range names {
		if _, ok := r.stages[name]; !ok {
			return &InvalidStageError{Name: name, Valid: r.Names()}
		}
	}
	return nil
}
