package cache

import (
	"context"
	"time"

	"github.com/magabrotheeeer/diary-sync/internal/models"
)

const (
	statusKeyPrefix = "diary-sync:job:"
	statusTTL       = 7 * 24 * time.Hour
)

// StatusStore хранит итог последнего запуска каждой задачи.
type StatusStore struct {
	cache *Cache
}

func NewStatusStore(c *Cache) *StatusStore {
	return &StatusStore{cache: c}
}

func (s *StatusStore) SaveStatus(ctx context.Context, status models.JobStatus) error {
	return s.cache.Set(ctx, statusKeyPrefix+status.Family, status, statusTTL)
}

// LastStatus возвращает found=false, если задача ещё не запускалась.
func (s *StatusStore) LastStatus(ctx context.Context, family string) (models.JobStatus, bool, error) {
	var status models.JobStatus
	found, err := s.cache.Get(ctx, statusKeyPrefix+family, &status)
	return status, found, err
}
