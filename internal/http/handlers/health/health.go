package health

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/diary-sync/internal/http/response"
	"github.com/magabrotheeeer/diary-sync/internal/lib/sl"
)

const checkTimeout = 2 * time.Second

// Checker проверяет одну зависимость.
type Checker interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	log     *slog.Logger
	version string
	checks  map[string]Checker
}

func New(log *slog.Logger, version string, checks map[string]Checker) *Handler {
	return &Handler{
		log:     log,
		version: version,
		checks:  checks,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.health"

	ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
	defer cancel()

	deps := make(map[string]string, len(h.checks))
	healthy := true
	for name, c := range h.checks {
		if err := c.Ping(ctx); err != nil {
			h.log.Warn("dependency unhealthy", slog.String("op", op), slog.String("dependency", name), sl.Err(err))
			deps[name] = "down"
			healthy = false
			continue
		}
		deps[name] = "up"
	}

	data := map[string]any{
		"version":      h.version,
		"dependencies": deps,
	}
	if !healthy {
		render.Status(r, http.StatusServiceUnavailable)
		render.JSON(w, r, response.Response{Status: response.StatusError, Error: "dependency unavailable", Data: data})
		return
	}
	render.JSON(w, r, response.StatusOKWithData(data))
}
