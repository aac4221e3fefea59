package operations

import (
	"sync"
	"time"
)

// OperationStatusValue is the status of a whole run.
type OperationStatusValue string

const (
	OperationStatusPending   OperationStatusValue = "pending"
	OperationStatusRunning   OperationStatusValue = "running"
	OperationStatusCompleted OperationStatusValue = "completed"
	OperationStatusFailed    OperationStatusValue = "failed"
	OperationStatusCancelled OperationStatusValue = "cancelled"
)

// OperationState tracks one run: its status, every selected step and the
// files written so far.
type OperationState struct {
	mu sync.RWMutex

	ID        string               `json:"id"`
	Status    OperationStatusValue `json:"status"`
	StartTime time.Time            `json:"start_time"`
	EndTime   *time.Time           `json:"end_time,omitempty"`

	Steps map[string]*StepState `json:"steps"`

	// outputs lists files written by completed steps, in write order.
	outputs []string

	Error error `json:"-"`
}

// NewOperationState creates a pending run.
func NewOperationState(id string) *OperationState {
	return &OperationState{
		ID:        id,
		Status:    OperationStatusPending,
		StartTime: time.Now(),
		Steps:     make(map[string]*StepState),
	}
}

// Start marks the run as running.
func (o *OperationState) Start() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.Status = OperationStatusRunning
	o.StartTime = time.Now()
}

// Complete, Fail and Cancel are terminal.
func (o *OperationState) Complete()        { o.finish(OperationStatusCompleted, nil) }
func (o *OperationState) Fail(err error)   { o.finish(OperationStatusFailed, err) }
func (o *OperationState) Cancel(err error) { o.finish(OperationStatusCancelled, err) }

func (o *OperationState) finish(status OperationStatusValue, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	now := time.Now()
	o.EndTime = &now
	o.Status = status
	o.Error = err
}

// GetStatus returns the current status.
func (o *OperationState) GetStatus() OperationStatusValue {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.Status
}

// GetStage returns the state of one step, or nil if it was not selected.
func (o *OperationState) GetStage(stageID string) *StepState {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.Steps[stageID]
}

// SetStage installs the state of one step.
func (o *OperationState) SetStage(stageID string, state *StepState) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.Steps[stageID] = state
}

// RecordOutputs appends files written by a completed step.
func (o *OperationState) RecordOutputs(paths ...string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.outputs = append(o.outputs, paths...)
}

// Outputs returns every file written so far, in write order.
func (o *OperationState) Outputs() []string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return append([]string(nil), o.outputs...)
}
