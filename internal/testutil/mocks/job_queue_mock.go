package mocks

import (
	"github.com/lexigo/reviewd/internal/importer"
	"github.com/lexigo/reviewd/internal/models"
	"github.com/stretchr/testify/mock"
)

// MockJobQueue is a mock implementation of jobs.JobQueue
type MockJobQueue struct {
	mock.Mock
}

func (m *MockJobQueue) EnqueueImport(userID int64, source string, rows []importer.Row) (*models.ImportJob, error) {
	args := m.Called(userID, source, rows)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ImportJob), args.Error(1)
}

func (m *MockJobQueue) ImportStatus(userID int64, jobID string) (*models.ImportJob, error) {
	args := m.Called(userID, jobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ImportJob), args.Error(1)
}
