// Package scheduler выполняет периодические задачи: обезличивание старых обращений.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/bizplan/internal/lib/sl"
)

// Anonymizer затирает персональные данные обращений старше before.
type Anonymizer interface {
	Anonymize(ctx context.Context, before time.Time, batch int) (int64, error)
}

// SchedulerService периодически запускает обезличивание.
type SchedulerService struct {
	anonymizer Anonymizer
	retention  time.Duration
	every      time.Duration
	batch      int
	log        *slog.Logger
	now        func() time.Time
}

// NewSchedulerService создает новый экземпляр SchedulerService.
func NewSchedulerService(anonymizer Anonymizer, retention, every time.Duration, batch int, log *slog.Logger) *SchedulerService {
	return &SchedulerService{
		anonymizer: anonymizer,
		retention:  retention,
		every:      every,
		batch:      batch,
		log:        log,
		now:        time.Now,
	}
}

// AnonymizeContacts запускает обезличивание сразу и затем по таймеру, пока не отменен ctx.
func (s *SchedulerService) AnonymizeContacts(ctx context.Context) {
	s.runAnonymizeContacts(ctx)

	ticker := time.NewTicker(s.every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runAnonymizeContacts(ctx)
		}
	}
}

func (s *SchedulerService) runAnonymizeContacts(ctx context.Context) {
	before := s.now().Add(-s.retention)
	s.log.Info("anonymizing contact messages", slog.Time("before", before))

	n, err := s.anonymizer.Anonymize(ctx, before, s.batch)
	if err != nil {
		s.log.Error("failed to anonymize contact messages", sl.Err(err), slog.Int64("anonymized", n))
		return
	}
	s.log.Info("contact messages anonymized", slog.Int64("anonymized", n))
}
