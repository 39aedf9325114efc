package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/diary-sync/internal/lib/sl"
	"github.com/magabrotheeeer/diary-sync/internal/models"
)

const statusSaveTimeout = 5 * time.Second

// StatusSaver сохраняет итог последнего запуска.
type StatusSaver interface {
	SaveStatus(ctx context.Context, status models.JobStatus) error
}

// Runner выполняет один запуск задачи в рамках её бюджета времени.
type Runner struct {
	metrics *Metrics
	status  StatusSaver
	log     *slog.Logger
	now     func() time.Time
}

// NewRunner metrics и status могут быть nil.
func NewRunner(metrics *Metrics, status StatusSaver, log *slog.Logger) *Runner {
	return &Runner{
		metrics: metrics,
		status:  status,
		log:     log,
		now:     time.Now,
	}
}

// Run выполняет задачу и возвращает итог вместе с исходной ошибкой.
func (r *Runner) Run(ctx context.Context, f Family, attempt int) (Outcome, error) {
	runID := uuid.NewString()
	log := r.log.With(sl.Job(f.Name, runID, attempt))

	runCtx := ctx
	if f.Budget > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, f.Budget)
		defer cancel()
	}

	log.Info("job started")
	started := r.now()
	err := f.Run(runCtx)
	finished := r.now()
	outcome := Classify(err)

	r.metrics.observe(f.Name, outcome, finished.Sub(started))

	switch outcome {
	case Success:
		log.Info("job finished", slog.Duration("took", finished.Sub(started)))
	case Retry:
		log.Warn("job timed out", sl.Err(err))
	default:
		log.Error("job failed", sl.Err(err))
	}

	if r.status != nil {
		status := models.JobStatus{
			Family:     f.Name,
			RunID:      runID,
			Outcome:    outcome.String(),
			Attempt:    attempt,
			StartedAt:  started,
			FinishedAt: finished,
		}
		if err != nil {
			status.Error = err.Error()
		}
		// статус сохраняем и после отмены задачи
		saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), statusSaveTimeout)
		defer cancel()
		if serr := r.status.SaveStatus(saveCtx, status); serr != nil {
			log.Warn("failed to save job status", sl.Err(serr))
		}
	}

	return outcome, err
}
