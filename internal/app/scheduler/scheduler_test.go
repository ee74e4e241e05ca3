package scheduler

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/bizplan/internal/config"
)

type slowAnonymizer struct {
	finished atomic.Bool
}

func (a *slowAnonymizer) AnonymizeContacts(ctx context.Context) {
	<-ctx.Done()
	time.Sleep(50 * time.Millisecond)
	a.finished.Store(true)
}

type closeRecorder struct {
	anonymizer    *slowAnonymizer
	closed        bool
	finishedFirst bool
}

func (c *closeRecorder) Close() error {
	c.closed = true
	c.finishedFirst = c.anonymizer.finished.Load()
	return nil
}

func TestApp_Run_ClosesStorageAfterAnonymizer(t *testing.T) {
	anonymizer := &slowAnonymizer{}
	db := &closeRecorder{anonymizer: anonymizer}
	app := &App{
		schedulerService: anonymizer,
		db:               db,
		logger:           slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}

	assert.True(t, db.closed)
	assert.True(t, db.finishedFirst, "storage closed while anonymization was still running")
}

func TestNew_MissingSettings(t *testing.T) {
	app, err := New(context.Background(), &config.Config{}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	require.ErrorIs(t, err, config.ErrMissingSetting)
	assert.Nil(t, app)
}
