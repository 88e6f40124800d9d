package testutil

import (
	"context"
	"errors"

	"wildwise/model"
)

// ErrMockTransport is returned by failing mock answerers
var ErrMockTransport = errors.New("mock transport failure")

// MockAnswerer implements model.Answerer for testing
type MockAnswerer struct {
	// Configurable response
	AnswerFunc func(ctx context.Context, req model.AnswerRequest) (*model.AnswerResponse, error)

	// Recorded requests, in call order
	Requests []model.AnswerRequest

	name string
}

// NewMockAnswerer creates a mock that echoes the query back as the answer
func NewMockAnswerer() *MockAnswerer {
	mock := &MockAnswerer{name: "mock"}
	mock.AnswerFunc = mock.defaultAnswer
	return mock
}

// NewStaticAnswerer creates a mock that always returns resp
func NewStaticAnswerer(resp model.AnswerResponse) *MockAnswerer {
	mock := &MockAnswerer{name: "mock"}
	mock.AnswerFunc = func(ctx context.Context, req model.AnswerRequest) (*model.AnswerResponse, error) {
		out := resp
		return &out, nil
	}
	return mock
}

// NewFailingAnswerer creates a mock that always fails with err (ErrMockTransport if nil)
func NewFailingAnswerer(err error) *MockAnswerer {
	if err == nil {
		err = ErrMockTransport
	}
	mock := &MockAnswerer{name: "mock"}
	mock.AnswerFunc = func(ctx context.Context, req model.AnswerRequest) (*model.AnswerResponse, error) {
		return nil, err
	}
	return mock
}

func (m *MockAnswerer) defaultAnswer(ctx context.Context, req model.AnswerRequest) (*model.AnswerResponse, error) {
	return &model.AnswerResponse{Answer: "echo: " + req.Query}, nil
}

func (m *MockAnswerer) Answer(ctx context.Context, req model.AnswerRequest) (*model.AnswerResponse, error) {
	m.Requests = append(m.Requests, req)
	return m.AnswerFunc(ctx, req)
}

func (m *MockAnswerer) Name() string {
	return m.name
}

// MemoryPersister implements model.HistoryPersister in memory
type MemoryPersister struct {
	Saved   [][]model.Message // every snapshot passed to Save
	SaveErr error
	LoadErr error

	current []model.Message
	saved   bool
}

// NewMemoryPersister creates a persister preloaded with history (nil means nothing saved)
func NewMemoryPersister(history []model.Message) *MemoryPersister {
	return &MemoryPersister{
		current: history,
		saved:   history != nil,
	}
}

func (p *MemoryPersister) Save(history []model.Message) error {
	p.Saved = append(p.Saved, history)
	if p.SaveErr != nil {
		return p.SaveErr
	}
	p.current = history
	p.saved = true
	return nil
}

func (p *MemoryPersister) Load() ([]model.Message, error) {
	if p.LoadErr != nil {
		return nil, p.LoadErr
	}
	if !p.saved {
		return nil, model.ErrNoHistory
	}
	return p.current, nil
}
