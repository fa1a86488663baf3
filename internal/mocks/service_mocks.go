package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"crm-voice-server/internal/model"
	"crm-voice-server/internal/service"
)

// MockPlanner is a mock type for the service.Planner type
type MockPlanner struct {
	mock.Mock
}

// GeneratePlan provides a mock function with given fields: ctx, transcript, now, mode
func (_m *MockPlanner) GeneratePlan(ctx context.Context, transcript string, now time.Time, mode model.PlanMode) (*model.Plan, error) {
	ret := _m.Called(ctx, transcript, now, mode)

	var r0 *model.Plan
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*model.Plan)
	}

	return r0, ret.Error(1)
}

// NewMockPlanner creates a new instance of MockPlanner. It also registers a testing interface on the mock.
func NewMockPlanner(t interface {
	mock.TestingT
	Helper()
}) *MockPlanner {
	m := &MockPlanner{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

var _ service.Planner = (*MockPlanner)(nil)

// MockExecutor is a mock type for the service.Executor type
type MockExecutor struct {
	mock.Mock
}

// Execute provides a mock function with given fields: ctx, orgID, actions
func (_m *MockExecutor) Execute(ctx context.Context, orgID string, actions []model.Action) (*model.ExecutionReport, error) {
	ret := _m.Called(ctx, orgID, actions)

	var r0 *model.ExecutionReport
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*model.ExecutionReport)
	}

	return r0, ret.Error(1)
}

// NewMockExecutor creates a new instance of MockExecutor. It also registers a testing interface on the mock.
func NewMockExecutor(t interface {
	mock.TestingT
	Helper()
}) *MockExecutor {
	m := &MockExecutor{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

var _ service.Executor = (*MockExecutor)(nil)

// MockReportPublisher is a mock type for the service.ReportPublisher type
type MockReportPublisher struct {
	mock.Mock
}

// PublishReport provides a mock function with given fields: ctx, report
func (_m *MockReportPublisher) PublishReport(ctx context.Context, report *model.ExecutionReport) error {
	ret := _m.Called(ctx, report)
	return ret.Error(0)
}

// NewMockReportPublisher creates a new instance of MockReportPublisher. It also registers a testing interface on the mock.
func NewMockReportPublisher(t interface {
	mock.TestingT
	Helper()
}) *MockReportPublisher {
	m := &MockReportPublisher{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

var _ service.ReportPublisher = (*MockReportPublisher)(nil)
