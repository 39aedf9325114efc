package trigger

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/diary-sync/internal/http/middlewarectx"
	"github.com/magabrotheeeer/diary-sync/internal/http/response"
	"github.com/magabrotheeeer/diary-sync/internal/jobs"
	"github.com/magabrotheeeer/diary-sync/internal/lib/sl"
)

type Scheduler interface {
	Trigger(name string) error
}

type Handler struct {
	log       *slog.Logger
	scheduler Scheduler
}

func New(log *slog.Logger, scheduler Scheduler) *Handler {
	return &Handler{
		log:       log,
		scheduler: scheduler,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.jobs.trigger"

	user, _ := r.Context().Value(middlewarectx.User).(string)
	name := chi.URLParam(r, "name")
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("family", name),
		slog.String("user", user),
	)

	err := h.scheduler.Trigger(name)
	switch {
	case err == nil:
	case errors.Is(err, jobs.ErrUnknownJob):
		log.Warn("unknown job requested")
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error("unknown job"))
		return
	case errors.Is(err, jobs.ErrAlreadyRunning):
		log.Info("job already running")
		render.Status(r, http.StatusConflict)
		render.JSON(w, r, response.Error("job is already running"))
		return
	case errors.Is(err, jobs.ErrSchedulerStopped):
		log.Warn("scheduler is not running")
		render.Status(r, http.StatusServiceUnavailable)
		render.JSON(w, r, response.Error("scheduler is not running"))
		return
	default:
		log.Error("failed to trigger job", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to trigger job"))
		return
	}

	log.Info("job triggered")
	render.Status(r, http.StatusAccepted)
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"family": name,
	}))
}
