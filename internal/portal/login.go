package portal

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/magabrotheeeer/diary-sync/internal/models"
)

// loginFailures сопоставляет фразы страницы входа с ошибками.
var loginFailures = []struct {
	marker string
	err    error
}{
	{"Неверный логин или пароль", ErrIncorrectAuthData},
	{"Пользователь не найден", ErrNotLoggedIn},
	{"временно заблокирован", ErrAccessTemporarilyBlocked},
	{"Заполните все поля", ErrBlankInput},
}

func classifyLoginBody(body string) error {
	for _, f := range loginFailures {
		if strings.Contains(body, f.marker) {
			return f.err
		}
	}
	return nil
}

// login выполняет POST формы входа. Вызывается под мьютексом.
func (m *SessionManager) login(ctx context.Context) (models.Session, error) {
	const op = "portal.login"

	creds := m.creds.Credentials()
	if strings.TrimSpace(creds.Login) == "" || strings.TrimSpace(creds.Password) == "" {
		return models.Session{}, fmt.Errorf("%s: %w", op, ErrBlankInput)
	}

	form := url.Values{}
	form.Set("login", creds.Login)
	form.Set("password", creds.Password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.loginURL, strings.NewReader(form.Encode()))
	if err != nil {
		return models.Session{}, fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Referer", m.referer)
	if m.userAgent != "" {
		req.Header.Set("User-Agent", m.userAgent)
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return models.Session{}, fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	body, err := readBody(resp, m.maxBody)
	if err != nil {
		return models.Session{}, fmt.Errorf("%s: %w", op, err)
	}
	if err := classifyLoginBody(string(body)); err != nil {
		return models.Session{}, fmt.Errorf("%s: %w", op, err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return models.Session{}, fmt.Errorf("%s: %w: %d", op, ErrUnexpectedStatus, resp.StatusCode)
	}

	for _, c := range resp.Cookies() {
		if c.Name == m.cookieName && c.Value != "" {
			return models.Session{Cookie: c.Value, ObtainedAt: m.now()}, nil
		}
	}
	return models.Session{}, fmt.Errorf("%s: %w: no %q cookie in response", op, ErrNotLoggedIn, m.cookieName)
}

// noRedirects копирует клиента так, чтобы cookie из ответа 302 не терялась.
func noRedirects(client *http.Client) *http.Client {
	c := *client
	c.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}
	return &c
}
