package reconciler

import (
	"context"
	"log/slog"
)

// BatchPolicy определяет, что делать с пакетом, если часть элементов не сконвертировалась.
type BatchPolicy string

const (
	// PolicyAllOrNothing отбрасывает весь пакет при первой же неудаче.
	PolicyAllOrNothing BatchPolicy = "all_or_nothing"
	// PolicyPartial сохраняет удачные элементы и сообщает о неудачных.
	PolicyPartial BatchPolicy = "partial"
)

// ParseBatchPolicy по умолчанию возвращает PolicyAllOrNothing.
func ParseBatchPolicy(s string) BatchPolicy {
	if BatchPolicy(s) == PolicyPartial {
		return PolicyPartial
	}
	return PolicyAllOrNothing
}

func convertBatch[D, E any](
	ctx context.Context,
	m *Mapper,
	kind string,
	items []D,
	convert func(context.Context, D) (E, error),
) ([]E, error) {
	out := make([]E, 0, len(items))
	var failed []ItemError
	for i, item := range items {
		e, err := convert(ctx, item)
		if err != nil {
			failed = append(failed, ItemError{Index: i, Err: err})
			continue
		}
		out = append(out, e)
	}
	if len(failed) == 0 {
		return out, nil
	}

	batchErr := &BatchError{Kind: kind, Total: len(items), Failed: failed}
	if m.policy == PolicyPartial {
		m.log.Warn("batch partially converted",
			slog.String("kind", kind),
			slog.Int("converted", len(out)),
			slog.Int("failed", len(failed)),
		)
		return out, batchErr
	}

	batchErr.Discarded = true
	m.log.Error("batch discarded",
		slog.String("kind", kind),
		slog.Int("total", len(items)),
		slog.Int("failed", len(failed)),
		slog.String("error", batchErr.Error()),
	)
	return nil, batchErr
}
