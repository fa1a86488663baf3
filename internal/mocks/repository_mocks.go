package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"crm-voice-server/internal/model"
	"crm-voice-server/internal/repository"
)

// MockLeadRepository is a mock type for the repository.LeadRepository type
type MockLeadRepository struct {
	mock.Mock
}

// Create provides a mock function with given fields: ctx, lead
func (_m *MockLeadRepository) Create(ctx context.Context, lead *model.Lead) error {
	ret := _m.Called(ctx, lead)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, *model.Lead) error); ok {
		r0 = rf(ctx, lead)
	} else {
		err := ret.Error(0)
		if err != nil {
			r0 = err
		}
	}

	return r0
}

// GetByID provides a mock function with given fields: ctx, orgID, id
func (_m *MockLeadRepository) GetByID(ctx context.Context, orgID string, id int64) (*model.Lead, error) {
	ret := _m.Called(ctx, orgID, id)

	var r0 *model.Lead
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*model.Lead)
	}

	return r0, ret.Error(1)
}

// ListByOrg provides a mock function with given fields: ctx, orgID
func (_m *MockLeadRepository) ListByOrg(ctx context.Context, orgID string) ([]model.Lead, error) {
	ret := _m.Called(ctx, orgID)

	var r0 []model.Lead
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]model.Lead)
	}

	return r0, ret.Error(1)
}

// NewMockLeadRepository creates a new instance of MockLeadRepository. It also registers a testing interface on the mock.
func NewMockLeadRepository(t interface {
	mock.TestingT
	Helper()
}) *MockLeadRepository {
	m := &MockLeadRepository{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

var _ repository.LeadRepository = (*MockLeadRepository)(nil)

// MockCalendarEventRepository is a mock type for the repository.CalendarEventRepository type
type MockCalendarEventRepository struct {
	mock.Mock
}

// Create provides a mock function with given fields: ctx, event
func (_m *MockCalendarEventRepository) Create(ctx context.Context, event *model.CalendarEvent) error {
	ret := _m.Called(ctx, event)
	return ret.Error(0)
}

// ListByOrg provides a mock function with given fields: ctx, orgID
func (_m *MockCalendarEventRepository) ListByOrg(ctx context.Context, orgID string) ([]model.CalendarEvent, error) {
	ret := _m.Called(ctx, orgID)

	var r0 []model.CalendarEvent
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]model.CalendarEvent)
	}

	return r0, ret.Error(1)
}

// NewMockCalendarEventRepository creates a new instance of MockCalendarEventRepository. It also registers a testing interface on the mock.
func NewMockCalendarEventRepository(t interface {
	mock.TestingT
	Helper()
}) *MockCalendarEventRepository {
	m := &MockCalendarEventRepository{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

var _ repository.CalendarEventRepository = (*MockCalendarEventRepository)(nil)

// MockFollowUpRepository is a mock type for the repository.FollowUpRepository type
type MockFollowUpRepository struct {
	mock.Mock
}

// Create provides a mock function with given fields: ctx, followUp
func (_m *MockFollowUpRepository) Create(ctx context.Context, followUp *model.FollowUp) error {
	ret := _m.Called(ctx, followUp)
	return ret.Error(0)
}

// ListByOrg provides a mock function with given fields: ctx, orgID
func (_m *MockFollowUpRepository) ListByOrg(ctx context.Context, orgID string) ([]model.FollowUp, error) {
	ret := _m.Called(ctx, orgID)

	var r0 []model.FollowUp
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]model.FollowUp)
	}

	return r0, ret.Error(1)
}

// NewMockFollowUpRepository creates a new instance of MockFollowUpRepository. It also registers a testing interface on the mock.
func NewMockFollowUpRepository(t interface {
	mock.TestingT
	Helper()
}) *MockFollowUpRepository {
	m := &MockFollowUpRepository{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

var _ repository.FollowUpRepository = (*MockFollowUpRepository)(nil)

// MockContactCreator is a mock type for the repository.ContactCreator type
type MockContactCreator struct {
	mock.Mock
}

// CreateContact provides a mock function with given fields: ctx, orgID, payload
func (_m *MockContactCreator) CreateContact(ctx context.Context, orgID string, payload *model.CreateContactPayload) (*model.Contact, error) {
	ret := _m.Called(ctx, orgID, payload)

	var r0 *model.Contact
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*model.Contact)
	}

	return r0, ret.Error(1)
}

// NewMockContactCreator creates a new instance of MockContactCreator. It also registers a testing interface on the mock.
func NewMockContactCreator(t interface {
	mock.TestingT
	Helper()
}) *MockContactCreator {
	m := &MockContactCreator{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

var _ repository.ContactCreator = (*MockContactCreator)(nil)
