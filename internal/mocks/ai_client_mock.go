package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"crm-voice-server/internal/ai"
)

// MockAIClient is a mock type for the ai.Client type
type MockAIClient struct {
	mock.Mock
}

// Transcribe provides a mock function with given fields: ctx, audio, filename
func (_m *MockAIClient) Transcribe(ctx context.Context, audio io.Reader, filename string) (string, error) {
	ret := _m.Called(ctx, audio, filename)

	var r0 string
	if rf, ok := ret.Get(0).(func(context.Context, io.Reader, string) string); ok {
		r0 = rf(ctx, audio, filename)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(string)
		}
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, io.Reader, string) error); ok {
		r1 = rf(ctx, audio, filename)
	} else {
		err := ret.Error(1)
		if err != nil {
			r1 = err
		}
	}

	return r0, r1
}

// Complete provides a mock function with given fields: ctx, systemPrompt, userInput
func (_m *MockAIClient) Complete(ctx context.Context, systemPrompt string, userInput string) (string, ai.Usage, error) {
	ret := _m.Called(ctx, systemPrompt, userInput)

	var r0 string
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(string)
	}

	var r1 ai.Usage
	if ret.Get(1) != nil {
		r1 = ret.Get(1).(ai.Usage)
	}

	var r2 error
	err := ret.Error(2)
	if err != nil {
		r2 = err
	}

	return r0, r1, r2
}

// NewMockAIClient creates a new instance of MockAIClient. It also registers a testing interface on the mock.
// The first argument is typically a *testing.T value.
func NewMockAIClient(t interface {
	mock.TestingT
	Helper()
}) *MockAIClient {
	m := &MockAIClient{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

var _ ai.Client = (*MockAIClient)(nil)
