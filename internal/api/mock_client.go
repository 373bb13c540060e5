package api

import (
	"context"
	"sync"

	"github.com/diogo/bookchat/internal/models"
)

// MockBackend is an in-memory stand-in for Client used by tests of the
// packages built on top of the panel
type MockBackend struct {
	mu sync.Mutex

	// Mock return values
	LoadVal  *models.BookLoadResult
	LoadErr  error
	AskVal   *models.AskResponse
	AskErr   error
	BooksVal *models.BookListResult
	BooksErr error

	// Call recorders
	LoadCalls  int
	BooksCalls int
	Questions  []string
}

func (m *MockBackend) Load(ctx context.Context) (*models.BookLoadResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LoadCalls++
	return m.LoadVal, m.LoadErr
}

func (m *MockBackend) Ask(ctx context.Context, question string) (*models.AskResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Questions = append(m.Questions, question)
	return m.AskVal, m.AskErr
}

func (m *MockBackend) Books(ctx context.Context) (*models.BookListResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.BooksCalls++
	return m.BooksVal, m.BooksErr
}
