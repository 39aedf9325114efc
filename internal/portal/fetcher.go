package portal

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"

	"github.com/magabrotheeeer/diary-sync/internal/config"
	"github.com/magabrotheeeer/diary-sync/internal/models"
)

const (
	defaultMaxPageSize = 5 << 20
	maxRedirects       = 10
)

// Authenticator выдаёт сессию и принимает сигнал о её протухании.
type Authenticator interface {
	EnsureSession(ctx context.Context) (models.Session, error)
	Invalidate(ctx context.Context, stale models.Session)
}

// Fetcher загружает страницы портала от имени текущей сессии.
type Fetcher struct {
	client      *http.Client
	sessions    Authenticator
	baseURL     *url.URL
	cookieName  string
	userAgent   string
	maxReauth   int
	maxPageSize int64
	log         *slog.Logger
}

// NewHTTPClient создаёт клиента с таймаутами транспорта.
func NewHTTPClient(timeout time.Duration) *http.Client {
	dialer := &net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: timeout,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
	}
	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return fmt.Errorf("too many redirects (max %d)", maxRedirects)
			}
			return nil
		},
	}
}

func NewFetcher(cfg config.Portal, client *http.Client, sessions Authenticator, log *slog.Logger) (*Fetcher, error) {
	const op = "portal.NewFetcher"

	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	maxPageSize := cfg.MaxPageSize
	if maxPageSize <= 0 {
		maxPageSize = defaultMaxPageSize
	}
	maxReauth := cfg.MaxReauth
	if maxReauth < 0 {
		maxReauth = 0
	}
	return &Fetcher{
		client:      client,
		sessions:    sessions,
		baseURL:     base,
		cookieName:  cfg.CookieName,
		userAgent:   cfg.UserAgent,
		maxReauth:   maxReauth,
		maxPageSize: maxPageSize,
		log:         log,
	}, nil
}

// Fetch загружает страницу. Если портал вернул страницу входа,
// сессия сбрасывается и запрос повторяется не более maxReauth раз.
func (f *Fetcher) Fetch(ctx context.Context, page Page) (*goquery.Document, error) {
	const op = "portal.Fetcher.Fetch"

	for attempt := 0; ; attempt++ {
		session, err := f.sessions.EnsureSession(ctx)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		doc, err := f.get(ctx, page, session)
		if err == nil {
			return doc, nil
		}
		if !errors.Is(err, ErrNotLoggedIn) || attempt >= f.maxReauth {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		f.log.Info("session expired, re-authenticating",
			slog.String("page", page.String()),
			slog.Int("attempt", attempt+1),
		)
		f.sessions.Invalidate(ctx, session)
	}
}

func (f *Fetcher) get(ctx context.Context, page Page, session models.Session) (*goquery.Document, error) {
	target := f.baseURL.ResolveReference(page.URL())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, err
	}
	req.AddCookie(&http.Cookie{Name: f.cookieName, Value: session.Cookie})
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if isLoginLocation(resp.Request.URL) {
		return nil, fmt.Errorf("%w: redirected to %s", ErrNotLoggedIn, resp.Request.URL.Path)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	body, err := readBody(resp, f.maxPageSize)
	if err != nil {
		return nil, err
	}
	return goquery.NewDocumentFromReader(bytes.NewReader(body))
}

// isLoginLocation определяет мягкий отказ: портал отвечает 200,
// но итоговый адрес указывает на вход или страницу сообщения.
func isLoginLocation(u *url.URL) bool {
	if u == nil {
		return false
	}
	loc := strings.ToLower(u.Path + "?" + u.RawQuery)
	return strings.Contains(loc, "login") || strings.Contains(loc, "message")
}

// readBody читает тело с ограничением размера и перекодирует его в UTF-8.
func readBody(resp *http.Response, limit int64) ([]byte, error) {
	if limit <= 0 {
		limit = defaultMaxPageSize
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(raw)) > limit {
		return nil, fmt.Errorf("%w (%d bytes)", ErrPageTooLarge, limit)
	}

	r, err := charset.NewReader(bytes.NewReader(raw), resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, fmt.Errorf("decode body: %w", err)
	}
	decoded, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("decode body: %w", err)
	}
	return decoded, nil
}
