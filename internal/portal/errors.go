package portal

import "errors"

// Ошибки авторизации. Все они терминальные: повтор без участия
// пользователя не поможет.
var (
	ErrIncorrectAuthData        = errors.New("incorrect login or password")
	ErrNotLoggedIn              = errors.New("not logged in")
	ErrAccessTemporarilyBlocked = errors.New("access temporarily blocked")
	ErrBlankInput               = errors.New("login or password is blank")
)

var (
	ErrUnexpectedStatus = errors.New("unexpected response status")
	ErrPageTooLarge     = errors.New("page exceeds size limit")
)

// IsAuthError сообщает, относится ли ошибка к авторизации на портале.
func IsAuthError(err error) bool {
	return errors.Is(err, ErrIncorrectAuthData) ||
		errors.Is(err, ErrNotLoggedIn) ||
		errors.Is(err, ErrAccessTemporarilyBlocked) ||
		errors.Is(err, ErrBlankInput)
}
