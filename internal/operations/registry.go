package operations

import "fmt"

// Registry holds the pipeline steps in registration order, which is also
// the order they run in. It is filled once at startup and read-only after.
type Registry struct {
	steps []Step
	index map[string]int
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{index: make(map[string]int)}
}

// Register appends step. IDs must be non-empty and unique.
func (r *Registry) Register(step Step) error {
	switch {
	case step == nil:
		return fmt.Errorf("cannot register a nil step")
	case step.ID() == "":
		return fmt.Errorf("step %q has an empty ID", step.Name())
	}
	if _, dup := r.index[step.ID()]; dup {
		return fmt.Errorf("step %s registered twice", step.ID())
	}
	r.index[step.ID()] = len(r.steps)
	r.steps = append(r.steps, step)
	return nil
}

// Get returns the step with id, or a not-found OperationError.
func (r *Registry) Get(id string) (Step, error) {
	i, ok := r.index[id]
	if !ok {
		return nil, NewNotFoundError(id)
	}
	return r.steps[i], nil
}

// Has reports whether id is registered.
func (r *Registry) Has(id string) bool {
	_, ok := r.index[id]
	return ok
}

// List returns every step in run order.
func (r *Registry) List() []Step {
	return append([]Step(nil), r.steps...)
}

// ListIDs returns every step ID in run order.
func (r *Registry) ListIDs() []string {
	ids := make([]string, len(r.steps))
	for i, s := range r.steps {
		ids[i] = s.ID()
	}
	return ids
}

// Count returns the number of registered steps.
func (r *Registry) Count() int { return len(r.steps) }

// Select returns the steps named by ids in run order, whatever order ids
// come in. Empty ids selects every step; an unknown ID is an error.
func (r *Registry) Select(ids []string) ([]Step, error) {
	if len(ids) == 0 {
		return r.List(), nil
	}

	wanted := make([]bool, len(r.steps))
	for _, id := range ids {
		i, ok := r.index[id]
		if !ok {
			return nil, NewNotFoundError(id)
		}
		wanted[i] = true
	}

	var steps []Step
	for i, s := range r.steps {
		if wanted[i] {
			steps = append(steps, s)
		}
	}
	return steps, nil
}
