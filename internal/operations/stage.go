package operations

import (
	"context"
	"fmt"
	"sync"
	"time"

	"raisetl/internal/dataprocessing"
)

// Step represents a single stage of the pipeline
type Step interface {
	// ID returns the unique identifier for this Step
	ID() string

	// Name returns the human-readable name for this Step
	Name() string

	// Validate checks inputs and output locations before anything is read
	Validate(state *OperationState) error

	// Execute runs the Step with the given context and operation state
	Execute(ctx context.Context, state *OperationState) error

	// Outputs returns the files this Step writes
	Outputs() []string
}

// StepStatus represents the current status of a Step
type StepStatus string

const (
	StepStatusPending   StepStatus = "pending"
	StepStatusActive    StepStatus = "active"
	StepStatusCompleted StepStatus = "completed"
	StepStatusFailed    StepStatus = "failed"
	StepStatusSkipped   StepStatus = "skipped"
)

// StepState represents the runtime state of a Step
type StepState struct {
	mu        sync.RWMutex              `json:"-"`
	ID        string                    `json:"id"`
	Name      string                    `json:"name"`
	Status    StepStatus                `json:"status"`
	StartTime *time.Time                `json:"start_time,omitempty"`
	EndTime   *time.Time                `json:"end_time,omitempty"`
	Message   string                    `json:"message"`
	Error     error                     `json:"error,omitempty"`
	Stats     []dataprocessing.RowStats `json:"stats,omitempty"`
	Metadata  map[string]interface{}    `json:"metadata,omitempty"`
}

// NewStepState creates a new Step state with default values
func NewStepState(id, name string) *StepState {
	return &StepState{
		ID:       id,
		Name:     name,
		Status:   StepStatusPending,
		Metadata: make(map[string]interface{}),
	}
}

// Start marks the Step as active and sets the start time
func (s *StepState) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.StartTime = &now
	s.Status = StepStatusActive
}

// Complete marks the Step as completed and sets the end time
func (s *StepState) Complete() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.EndTime = &now
	s.Status = StepStatusCompleted
}

// Fail marks the Step as failed with the given error
func (s *StepState) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.EndTime = &now
	s.Status = StepStatusFailed
	s.Error = err
}

// Skip marks the Step as skipped with the given reason
func (s *StepState) Skip(reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.EndTime = &now
	s.Status = StepStatusSkipped
	s.Message = reason
}

// AddStats records the row statistics of one streaming pass.
func (s *StepState) AddStats(stats dataprocessing.RowStats) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Stats = append(s.Stats, stats)
}

// Totals sums the row statistics of every pass.
func (s *StepState) Totals() dataprocessing.RowStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := dataprocessing.RowStats{Skipped: make(map[string]int64)}
	for _, st := range s.Stats {
		total.Read += st.Read
		total.Written += st.Written
		total.Groups += st.Groups
		total.Defaulted += st.Defaulted
		for reason, n := range st.Skipped {
			total.Skipped[reason] += n
		}
	}
	return total
}

// SetMetadata stores a value describing the run of this Step.
func (s *StepState) SetMetadata(key string, value interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Metadata == nil {
		s.Metadata = make(map[string]interface{})
	}
	s.Metadata[key] = value
}

// GetStatus returns the current status.
func (s *StepState) GetStatus() StepStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Status
}

// Duration returns the duration of the Step execution
func (s *StepState) Duration() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.StartTime == nil {
		return 0
	}
	if s.EndTime != nil {
		return s.EndTime.Sub(*s.StartTime)
	}
	return time.Since(*s.StartTime)
}

// BaseStage provides common functionality for Step implementations
type BaseStage struct {
	id   string
	name string
}

// NewBaseStage creates a new base Step
func NewBaseStage(id, name string) BaseStage {
	return BaseStage{id: id, name: name}
}

// ID returns the Step ID
func (b *BaseStage) ID() string {
	if b == nil {
		return ""
	}
	return b.id
}

// Name returns the Step name
func (b *BaseStage) Name() string {
	if b == nil {
		return ""
	}
	return b.name
}

// Validate provides a default validation that always passes
func (b *BaseStage) Validate(state *OperationState) error {
	if b == nil {
		return fmt.Errorf("BaseStage is nil")
	}
	return nil
}

// stepState returns the state of this Step within the operation.
func (b *BaseStage) stepState(state *OperationState) *StepState {
	if s := state.GetStage(b.id); s != nil {
		return s
	}
	s := NewStepState(b.id, b.name)
	state.SetStage(b.id, s)
	return s
}
