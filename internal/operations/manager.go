package operations

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"raisetl/internal/errors"
	"raisetl/internal/infrastructure"
)

// Manager runs registered steps strictly in sequence. A failing step stops
// the run and every later step is marked skipped.
type Manager struct {
	registry   *Registry
	telemetry  *infrastructure.Telemetry
	logger     *slog.Logger
	mu         sync.RWMutex
	operations map[string]*OperationState
}

// NewManager creates a manager. telemetry may be nil; a nil logger uses slog.Default().
func NewManager(registry *Registry, telemetry *infrastructure.Telemetry, logger *slog.Logger) *Manager {
	if registry == nil {
		registry = NewRegistry()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		registry:   registry,
		telemetry:  telemetry,
		logger:     infrastructure.WithComponent(logger, "operations"),
		operations: make(map[string]*OperationState),
	}
}

// RegisterStage adds a step to the manager's registry.
func (m *Manager) RegisterStage(step Step) error {
	return m.registry.Register(step)
}

// Execute runs the requested stages under the run ID carried by ctx (a new
// one is generated if absent). The returned error keeps the stage failure in
// its chain so errors.ExitCode can classify it.
func (m *Manager) Execute(ctx context.Context, req OperationRequest) (*OperationResponse, error) {
	ctx = infrastructure.EnsureRunID(ctx)
	id := infrastructure.GetRunID(ctx)

	steps, err := m.registry.Select(req.Stages)
	if err != nil {
		return nil, err
	}

	state := NewOperationState(id)
	for _, step := range steps {
		state.SetStage(step.ID(), NewStepState(step.ID(), step.Name()))
	}
	m.storeOperation(state)

	state.Start()
	m.logOperationStart(ctx, id, steps)

	err = m.executeSequential(ctx, state, steps)
	switch {
	case err == nil:
		state.Complete()
	case ctx.Err() != nil:
		state.Cancel(err)
		m.logOperationError(ctx, id, err)
	default:
		state.Fail(err)
		m.logOperationError(ctx, id, err)
	}

	m.logOperationComplete(ctx, id, time.Since(state.StartTime), string(state.GetStatus()))
	return m.createResponse(state), err
}

// executeSequential executes steps one by one
func (m *Manager) executeSequential(ctx context.Context, state *OperationState, steps []Step) error {
	for i, step := range steps {
		if err := ctx.Err(); err != nil {
			m.logger.WarnContext(ctx, "Operation cancelled",
				slog.String("operation_id", state.ID),
				slog.String("step", step.ID()))
			m.skipRemaining(state, steps[i:], "operation cancelled")
			return NewCancellationError(step.ID(), err)
		}

		m.logger.InfoContext(ctx, "Executing stage",
			slog.String("operation_id", state.ID),
			slog.String("step", step.ID()),
			slog.Int("stage_number", i+1),
			slog.Int("total_stages", len(steps)))

		if err := m.executeStage(ctx, state, step); err != nil {
			m.skipRemaining(state, steps[i+1:], fmt.Sprintf("Previous step %s failed", step.ID()))
			return err
		}
	}
	return nil
}

// executeStage validates and runs one step inside its own span and records
// its row counters and duration.
func (m *Manager) executeStage(ctx context.Context, state *OperationState, step Step) error {
	stepState := state.GetStage(step.ID())
	if stepState == nil {
		stepState = NewStepState(step.ID(), step.Name())
		state.SetStage(step.ID(), stepState)
	}

	ctx, span := m.telemetry.StartStage(ctx, step.ID())
	defer span.End()

	m.logStageStart(ctx, state.ID, step.ID())
	stepState.Start()
	start := time.Now()

	if err := step.Validate(state); err != nil {
		err = NewValidationError(step.ID(), err)
		m.finishFailed(ctx, state, stepState, step, err, time.Since(start))
		return err
	}

	err := step.Execute(ctx, state)
	duration := time.Since(start)

	totals := stepState.Totals()
	metrics := m.metrics()
	metrics.RecordRows(ctx, step.ID(), totals.Read, totals.Written, totals.Skipped)
	metrics.RecordParseFailures(ctx, step.ID(), totals.ParseFailures())
	infrastructure.AddSpanEvent(ctx, "rows", map[string]int64{
		"rows_read":    totals.Read,
		"rows_written": totals.Written,
		"rows_skipped": totals.TotalSkipped(),
	})

	if err != nil {
		if ctx.Err() != nil {
			err = NewCancellationError(step.ID(), err)
		} else {
			err = WrapError(err, step.ID(), "stage execution failed")
		}
		m.finishFailed(ctx, state, stepState, step, err, duration)
		return err
	}

	stepState.Complete()
	state.RecordOutputs(step.Outputs()...)
	metrics.RecordStage(ctx, step.ID(), duration, "")
	m.logStageComplete(ctx, state.ID, step.ID(), duration, totals)
	return nil
}

func (m *Manager) finishFailed(ctx context.Context, state *OperationState, stepState *StepState, step Step, err error, duration time.Duration) {
	stepState.Fail(err)
	infrastructure.RecordError(ctx, err)

	errType := string(errors.TypeOf(err))
	if errType == "" {
		errType = string(GetErrorType(err))
	}
	m.metrics().RecordStage(ctx, step.ID(), duration, errType)
	m.logStageError(ctx, state.ID, step.ID(), err)
}

// skipRemaining marks steps that will not run.
func (m *Manager) skipRemaining(state *OperationState, steps []Step, reason string) {
	for _, step := range steps {
		if s := state.GetStage(step.ID()); s != nil && s.GetStatus() == StepStatusPending {
			s.Skip(reason)
		}
	}
}

func (m *Manager) metrics() *infrastructure.PipelineMetrics {
	if m.telemetry == nil {
		return nil
	}
	return m.telemetry.Metrics
}

func (m *Manager) createResponse(state *OperationState) *OperationResponse {
	state.mu.RLock()
	defer state.mu.RUnlock()

	resp := &OperationResponse{
		ID:     state.ID,
		Status: state.Status,
		Steps:  make(map[string]*StepState, len(state.Steps)),
	}
	for id, s := range state.Steps {
		resp.Steps[id] = s
	}
	if state.Error != nil {
		resp.Error = state.Error.Error()
	}
	return resp
}

// GetOperation returns the state of a run started by this manager.
func (m *Manager) GetOperation(id string) (*OperationState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	state, exists := m.operations[id]
	if !exists {
		return nil, fmt.Errorf("operation %s not found", id)
	}
	return state, nil
}

func (m *Manager) storeOperation(state *OperationState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.operations[state.ID] = state
}
