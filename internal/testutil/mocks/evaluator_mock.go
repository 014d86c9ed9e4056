package mocks

import (
	"context"

	"github.com/lexigo/reviewd/internal/evaluator"
	"github.com/stretchr/testify/mock"
)

// MockEvaluator is a mock implementation of evaluator.Evaluator
type MockEvaluator struct {
	mock.Mock
}

func (m *MockEvaluator) Evaluate(ctx context.Context, req evaluator.Request) (evaluator.Result, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(evaluator.Result), args.Error(1)
}
