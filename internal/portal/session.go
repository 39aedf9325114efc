// Package portal отвечает за сессию на школьном портале и загрузку его страниц.
package portal

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/magabrotheeeer/diary-sync/internal/config"
	"github.com/magabrotheeeer/diary-sync/internal/lib/sl"
	"github.com/magabrotheeeer/diary-sync/internal/models"
)

// State состояние сессии.
type State int

const (
	StateUnauthenticated State = iota
	StateAuthenticated
	StateExpired
)

func (s State) String() string {
	switch s {
	case StateAuthenticated:
		return "authenticated"
	case StateExpired:
		return "expired"
	default:
		return "unauthenticated"
	}
}

// CredentialsProvider отдаёт логин и пароль пользователя.
type CredentialsProvider interface {
	Credentials() models.Credentials
}

// CookieStore хранит cookie сессии между перезапусками.
type CookieStore interface {
	LoadSession(ctx context.Context) (models.Session, error)
	SaveSession(ctx context.Context, session models.Session) error
	DeleteSession(ctx context.Context) error
}

// SessionManager владеет единственной сессией процесса.
// Все переходы состояния выполняются под мьютексом, поэтому
// параллельные задачи не выполняют повторный логин.
type SessionManager struct {
	mu      sync.Mutex
	state   State
	session models.Session
	loaded  bool

	client     *http.Client
	creds      CredentialsProvider
	store      CookieStore
	loginURL   string
	referer    string
	cookieName string
	userAgent  string
	maxBody    int64
	log        *slog.Logger
	now        func() time.Time
}

// NewSessionManager создаёт менеджер сессии. store может быть nil.
func NewSessionManager(cfg config.Portal, client *http.Client, creds CredentialsProvider, store CookieStore, log *slog.Logger) *SessionManager {
	referer := cfg.Referer
	if referer == "" {
		referer = cfg.BaseURL + cfg.LoginPath
	}
	return &SessionManager{
		state:      StateUnauthenticated,
		client:     noRedirects(client),
		creds:      creds,
		store:      store,
		loginURL:   cfg.BaseURL + cfg.LoginPath,
		referer:    referer,
		cookieName: cfg.CookieName,
		userAgent:  cfg.UserAgent,
		maxBody:    cfg.MaxPageSize,
		log:        log,
		now:        time.Now,
	}
}

// EnsureSession возвращает действующую сессию, при необходимости выполняя вход.
func (m *SessionManager) EnsureSession(ctx context.Context) (models.Session, error) {
	const op = "portal.SessionManager.EnsureSession"

	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.loaded {
		m.restore(ctx)
	}
	if m.state == StateAuthenticated {
		return m.session, nil
	}

	m.log.Info("logging in to portal", slog.String("state", m.state.String()))
	session, err := m.login(ctx)
	if err != nil {
		return models.Session{}, fmt.Errorf("%s: %w", op, err)
	}

	m.session = session
	m.state = StateAuthenticated
	if m.store != nil {
		if err := m.store.SaveSession(ctx, session); err != nil {
			m.log.Warn("failed to persist session cookie", sl.Err(err))
		}
	}
	return session, nil
}

// Invalidate помечает сессию истёкшей, если текущая cookie всё ещё stale.
// Если другой вызов уже обновил сессию, ничего не происходит.
func (m *SessionManager) Invalidate(ctx context.Context, stale models.Session) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateAuthenticated || m.session.Cookie != stale.Cookie {
		return
	}
	m.state = StateExpired
	m.session = models.Session{}
	if m.store != nil {
		if err := m.store.DeleteSession(ctx); err != nil {
			m.log.Warn("failed to drop stored session cookie", sl.Err(err))
		}
	}
}

// State возвращает текущее состояние сессии.
func (m *SessionManager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// restore вызывается под мьютексом.
func (m *SessionManager) restore(ctx context.Context) {
	m.loaded = true
	if m.store == nil {
		return
	}
	session, err := m.store.LoadSession(ctx)
	if err != nil {
		m.log.Warn("failed to load stored session cookie", sl.Err(err))
		return
	}
	if session.IsZero() {
		return
	}
	m.session = session
	m.state = StateAuthenticated
	m.log.Debug("restored stored session", slog.Time("obtained_at", session.ObtainedAt))
}
