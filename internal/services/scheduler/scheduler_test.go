package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockAnonymizer struct {
	mock.Mock
}

func (m *MockAnonymizer) Anonymize(ctx context.Context, before time.Time, batch int) (int64, error) {
	args := m.Called(ctx, before, batch)
	return args.Get(0).(int64), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestSchedulerService_runAnonymizeContacts(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	retention := 30 * 24 * time.Hour

	tests := []struct {
		name string
		err  error
	}{
		{name: "success"},
		{name: "storage error is logged", err: errors.New("db down")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			anonymizer := new(MockAnonymizer)
			anonymizer.On("Anonymize", mock.Anything, now.Add(-retention), 100).Return(int64(3), tt.err).Once()

			s := NewSchedulerService(anonymizer, retention, time.Hour, 100, newNoopLogger())
			s.now = func() time.Time { return now }

			s.runAnonymizeContacts(context.Background())

			anonymizer.AssertExpectations(t)
		})
	}
}

func TestSchedulerService_AnonymizeContacts_StopsOnCancel(t *testing.T) {
	anonymizer := new(MockAnonymizer)
	calls := make(chan struct{}, 10)
	anonymizer.On("Anonymize", mock.Anything, mock.Anything, 50).
		Run(func(_ mock.Arguments) { calls <- struct{}{} }).
		Return(int64(0), nil)

	s := NewSchedulerService(anonymizer, time.Hour, 10*time.Millisecond, 50, newNoopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.AnonymizeContacts(ctx)
		close(done)
	}()

	for range 2 {
		select {
		case <-calls:
		case <-time.After(time.Second):
			t.Fatal("anonymization was not scheduled")
		}
	}
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop after cancel")
	}
	assert.GreaterOrEqual(t, len(anonymizer.Calls), 2)
}
