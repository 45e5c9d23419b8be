// file: store/mock_store.go
package store

import (
	"context"

	"github.com/stretchr/testify/mock"

	"athmageeth-portal/models"
)

var _ RegistrationStore = (*MockStore)(nil)

// MockStore is a testify mock of RegistrationStore for service tests.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) Insert(ctx context.Context, reg models.Registration) error {
	args := m.Called(ctx, reg)
	return args.Error(0)
}

func (m *MockStore) FindByWhatsappNumber(ctx context.Context, number string) (models.Registration, error) {
	args := m.Called(ctx, number)
	return args.Get(0).(models.Registration), args.Error(1)
}

func (m *MockStore) Find(ctx context.Context, f Filter, skip, limit int64) ([]models.Registration, error) {
	args := m.Called(ctx, f, skip, limit)
	regs, _ := args.Get(0).([]models.Registration)
	return regs, args.Error(1)
}

func (m *MockStore) Count(ctx context.Context, f Filter) (int64, error) {
	args := m.Called(ctx, f)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStore) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockStore) Stats(ctx context.Context, topDistricts int) (models.DashboardStats, error) {
	args := m.Called(ctx, topDistricts)
	return args.Get(0).(models.DashboardStats), args.Error(1)
}

func (m *MockStore) EnsureIndexes(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockStore) Close(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
