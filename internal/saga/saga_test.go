package saga

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSaga_AllStepsSucceed(t *testing.T) {
	var order []string
	s := NewSaga("test", zap.NewNop())
	for _, name := range []string{"a", "b", "c"} {
		name := name
		s.AddStep(SagaStep{Name: name, Execute: func(ctx context.Context) error {
			order = append(order, name)
			return nil
		}})
	}

	require.NoError(t, s.Execute(context.Background()))
	assert.Equal(t, []string{"a", "b", "c"}, order)

	results := s.Results()
	require.Len(t, results, 3)
	for _, r := range results {
		assert.Equal(t, OutcomeSucceeded, r.Outcome)
		assert.Empty(t, r.Error)
	}
}

func TestSaga_FailureCompensatesInReverse(t *testing.T) {
	var compensated []string
	comp := func(name string) func(context.Context) error {
		return func(context.Context) error {
			compensated = append(compensated, name)
			return nil
		}
	}
	ok := func(context.Context) error { return nil }

	s := NewSaga("test", zap.NewNop())
	s.AddStep(SagaStep{Name: "first", Execute: ok, Compensate: comp("first")})
	s.AddStep(SagaStep{Name: "second", Execute: ok, Compensate: comp("second")})
	s.AddStep(SagaStep{Name: "third", Execute: func(context.Context) error {
		return errors.New("boom")
	}, Compensate: comp("third")})
	s.AddStep(SagaStep{Name: "fourth", Execute: ok})

	err := s.Execute(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed at step 'third'")
	assert.Equal(t, []string{"second", "first"}, compensated)

	results := s.Results()
	assert.Equal(t, OutcomeCompensated, results[0].Outcome)
	assert.Equal(t, OutcomeCompensated, results[1].Outcome)
	assert.Equal(t, OutcomeFailed, results[2].Outcome)
	assert.Equal(t, "boom", results[2].Error)
	assert.Equal(t, OutcomeSkipped, results[3].Outcome)
}

func TestSaga_FailedCompensationKeepsSucceededOutcome(t *testing.T) {
	s := NewSaga("test", zap.NewNop())
	s.AddStep(SagaStep{
		Name:       "first",
		Execute:    func(context.Context) error { return nil },
		Compensate: func(context.Context) error { return errors.New("cannot undo") },
	})
	s.AddStep(SagaStep{Name: "second", Execute: func(context.Context) error {
		return errors.New("boom")
	}})

	require.Error(t, s.Execute(context.Background()))
	assert.Equal(t, OutcomeSucceeded, s.Results()[0].Outcome)
}
