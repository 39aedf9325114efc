package cache

import (
	"context"

	"github.com/magabrotheeeer/diary-sync/internal/models"
)

const sessionKey = "diary-sync:session"

// SessionStore хранит cookie портала, реализует portal.CookieStore.
type SessionStore struct {
	cache *Cache
}

func NewSessionStore(c *Cache) *SessionStore {
	return &SessionStore{cache: c}
}

func (s *SessionStore) LoadSession(ctx context.Context) (models.Session, error) {
	var session models.Session
	if _, err := s.cache.Get(ctx, sessionKey, &session); err != nil {
		return models.Session{}, err
	}
	return session, nil
}

func (s *SessionStore) SaveSession(ctx context.Context, session models.Session) error {
	return s.cache.Set(ctx, sessionKey, session, 0)
}

func (s *SessionStore) DeleteSession(ctx context.Context) error {
	return s.cache.Invalidate(ctx, sessionKey)
}
