package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/muhammadolammi/cvqueryworker/internal/database"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) CreateCvData(ctx context.Context, arg database.CreateCvDataParams) error {
	args := m.Called(ctx, arg)
	return args.Error(0)
}

func (m *MockStore) UpdateCvStatus(ctx context.Context, arg database.UpdateCvStatusParams) error {
	args := m.Called(ctx, arg)
	return args.Error(0)
}

func (m *MockStore) UpdateSessionStatus(ctx context.Context, arg database.UpdateSessionStatusParams) error {
	args := m.Called(ctx, arg)
	return args.Error(0)
}

func (m *MockStore) ListCvData(ctx context.Context) ([]database.CvDatum, error) {
	args := m.Called(ctx)
	rows, _ := args.Get(0).([]database.CvDatum)
	return rows, args.Error(1)
}

func (m *MockStore) GetChatContext(ctx context.Context, sessionID uuid.UUID) (database.ChatContext, error) {
	args := m.Called(ctx, sessionID)
	return args.Get(0).(database.ChatContext), args.Error(1)
}

func (m *MockStore) UpsertChatContext(ctx context.Context, arg database.UpsertChatContextParams) error {
	args := m.Called(ctx, arg)
	return args.Error(0)
}
