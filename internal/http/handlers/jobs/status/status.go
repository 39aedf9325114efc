package status

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/diary-sync/internal/http/response"
	"github.com/magabrotheeeer/diary-sync/internal/lib/sl"
	"github.com/magabrotheeeer/diary-sync/internal/models"
)

type Scheduler interface {
	Known(name string) bool
	Running(name string) bool
}

type Store interface {
	LastStatus(ctx context.Context, family string) (models.JobStatus, bool, error)
}

type Handler struct {
	log       *slog.Logger
	scheduler Scheduler
	store     Store
}

func New(log *slog.Logger, scheduler Scheduler, store Store) *Handler {
	return &Handler{
		log:       log,
		scheduler: scheduler,
		store:     store,
	}
}

// Result ответ о состоянии задачи. Last пуст, если задача ещё не запускалась.
type Result struct {
	Family  string            `json:"family"`
	Running bool              `json:"running"`
	Last    *models.JobStatus `json:"last,omitempty"`
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.jobs.status"

	name := chi.URLParam(r, "name")
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("family", name),
	)

	if !h.scheduler.Known(name) {
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error("unknown job"))
		return
	}

	res := Result{Family: name, Running: h.scheduler.Running(name)}
	last, found, err := h.store.LastStatus(r.Context(), name)
	if err != nil {
		log.Error("failed to read job status", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to read job status"))
		return
	}
	if found {
		res.Last = &last
	}
	render.JSON(w, r, response.StatusOKWithData(res))
}
