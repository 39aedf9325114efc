// Package appversion проверяет, вышла ли новая версия приложения.
package appversion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/mod/semver"

	"github.com/magabrotheeeer/diary-sync/internal/lib/rabbitmq"
)

var (
	ErrBadManifest = errors.New("bad release manifest")
	ErrBadVersion  = errors.New("invalid version")
)

const maxManifestSize = 64 << 10

type Notifier interface {
	Publish(ctx context.Context, routingKey string, message any) error
}

// Manifest описание последнего релиза.
type Manifest struct {
	Version string `json:"version"`
	URL     string `json:"url"`
}

// Notification уведомление о доступном обновлении.
type Notification struct {
	Current string `json:"current"`
	Latest  string `json:"latest"`
	URL     string `json:"url"`
}

type Service struct {
	client      *http.Client
	manifestURL string
	current     string
	notifier    Notifier
	log         *slog.Logger
}

func New(client *http.Client, manifestURL, currentVersion string, notifier Notifier, log *slog.Logger) *Service {
	return &Service{
		client:      client,
		manifestURL: manifestURL,
		current:     currentVersion,
		notifier:    notifier,
		log:         log,
	}
}

// Check возвращает true, если опубликована более новая версия.
// Пустой адрес манифеста отключает проверку.
func (s *Service) Check(ctx context.Context) (bool, error) {
	const op = "services.appversion.Check"

	if s.manifestURL == "" {
		s.log.Debug("update manifest not configured")
		return false, nil
	}

	current := canonical(s.current)
	if !semver.IsValid(current) {
		return false, fmt.Errorf("%s: %w: %q", op, ErrBadVersion, s.current)
	}

	m, err := s.fetchManifest(ctx)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	latest := canonical(m.Version)
	if !semver.IsValid(latest) {
		return false, fmt.Errorf("%s: %w: %q", op, ErrBadVersion, m.Version)
	}

	if semver.Compare(latest, current) <= 0 {
		s.log.Debug("application is up to date", slog.String("version", current))
		return false, nil
	}

	s.log.Info("new version available", slog.String("current", current), slog.String("latest", latest))
	n := Notification{Current: current, Latest: latest, URL: m.URL}
	if err := s.notifier.Publish(ctx, rabbitmq.RoutingKeyUpdate, n); err != nil {
		return true, fmt.Errorf("%s: %w", op, err)
	}
	return true, nil
}

func (s *Service) fetchManifest(ctx context.Context) (Manifest, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.manifestURL, nil)
	if err != nil {
		return Manifest{}, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return Manifest{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Manifest{}, fmt.Errorf("%w: status %d", ErrBadManifest, resp.StatusCode)
	}

	var m Manifest
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxManifestSize)).Decode(&m); err != nil {
		return Manifest{}, fmt.Errorf("%w: %v", ErrBadManifest, err)
	}
	return m, nil
}

// canonical добавляет префикс "v", без которого semver не принимает версию.
func canonical(v string) string {
	v = strings.TrimSpace(v)
	if v != "" && !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return v
}
