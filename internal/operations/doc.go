// Package operations runs the pipeline stages in a fixed order.
//
// Core Components:
//
// Step: one stage (merge, employability, demand, salary, market, normalize).
// Each step validates its inputs and output directory before reading anything.
//
// Registry: registered steps in pipeline order.
//
// Manager: executes the selected steps strictly in sequence. Every stage runs
// inside its own span; row counters and durations go to the run metrics. The
// first failing stage stops the run and later stages are marked skipped.
//
// State: the runtime state of the operation and of each step, including the
// row statistics of every streaming pass.
//
// Example usage:
//
//	registry, err := operations.NewPipelineRegistry(cfg.Pipeline, logger)
//	manager := operations.NewManager(registry, telemetry, logger)
//	resp, err := manager.Execute(ctx, operations.OperationRequest{Stages: cfg.Pipeline.Stages})
package operations
