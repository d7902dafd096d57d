package saga

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// SagaStep represents a single step in a saga with execute and compensate actions.
type SagaStep struct {
	Name       string
	Execute    func(ctx context.Context) error
	Compensate func(ctx context.Context) error
}

// StepOutcome is the recorded result of a step.
type StepOutcome string

const (
	OutcomeSucceeded   StepOutcome = "succeeded"
	OutcomeFailed      StepOutcome = "failed"
	OutcomeSkipped     StepOutcome = "skipped"
	OutcomeCompensated StepOutcome = "compensated"
)

// StepResult records how a step ran.
type StepResult struct {
	Name     string        `json:"name"`
	Outcome  StepOutcome   `json:"outcome"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration_ns"`
}

// Saga orchestrates a sequence of steps with compensating transactions on failure.
type Saga struct {
	name    string
	steps   []SagaStep
	results []StepResult
	logger  *zap.Logger
}

// NewSaga creates a new saga orchestrator.
func NewSaga(name string, logger *zap.Logger) *Saga {
	return &Saga{
		name:   name,
		steps:  make([]SagaStep, 0),
		logger: logger,
	}
}

// AddStep appends a step to the saga.
func (s *Saga) AddStep(step SagaStep) {
	s.steps = append(s.steps, step)
}

// Results returns one entry per step from the last Execute, in step order.
// Steps after a failure are reported as skipped.
func (s *Saga) Results() []StepResult {
	out := make([]StepResult, len(s.results))
	copy(out, s.results)
	return out
}

// Execute runs all saga steps in order. On failure, it compensates executed steps in reverse order.
func (s *Saga) Execute(ctx context.Context) error {
	s.logger.Info("saga started", zap.String("saga", s.name))

	s.results = make([]StepResult, len(s.steps))
	for i, step := range s.steps {
		s.results[i] = StepResult{Name: step.Name, Outcome: OutcomeSkipped}
	}

	for i, step := range s.steps {
		s.logger.Info("executing saga step",
			zap.String("saga", s.name),
			zap.String("step", step.Name),
		)

		started := time.Now()
		err := step.Execute(ctx)
		s.results[i].Duration = time.Since(started)

		if err != nil {
			s.results[i].Outcome = OutcomeFailed
			s.results[i].Error = err.Error()
			s.logger.Error("saga step failed, starting compensation",
				zap.String("saga", s.name),
				zap.String("step", step.Name),
				zap.Error(err),
			)
			s.compensate(ctx, i)
			return fmt.Errorf("saga '%s' failed at step '%s': %w", s.name, step.Name, err)
		}

		s.results[i].Outcome = OutcomeSucceeded
	}

	s.logger.Info("saga completed successfully", zap.String("saga", s.name))
	return nil
}

// compensate undoes the steps before failed, most recent first.
func (s *Saga) compensate(ctx context.Context, failed int) {
	for i := failed - 1; i >= 0; i-- {
		step := s.steps[i]
		if step.Compensate == nil {
			continue
		}
		s.logger.Info("compensating saga step",
			zap.String("saga", s.name),
			zap.String("step", step.Name),
		)
		if err := step.Compensate(ctx); err != nil {
			s.logger.Error("compensation failed",
				zap.String("saga", s.name),
				zap.String("step", step.Name),
				zap.Error(err),
			)
			continue
		}
		s.results[i].Outcome = OutcomeCompensated
	}
}
