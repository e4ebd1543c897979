package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockPageReader struct {
	mock.Mock
}

func (m *MockPageReader) ReadPages(data []byte) ([]string, error) {
	args := m.Called(data)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]string), args.Error(1)
}

type MockRecognizer struct {
	mock.Mock
}

func (m *MockRecognizer) Recognize(ctx context.Context, data []byte) ([]string, error) {
	args := m.Called(ctx, data)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]string), args.Error(1)
}
