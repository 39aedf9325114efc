package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrUnknownRole = errors.New("unknown role")

// CustomClaims Subject - имя оператора, Role - его роль.
type CustomClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// CanTrigger сообщает, может ли владелец токена запускать задачи.
func (c *CustomClaims) CanTrigger() bool {
	return c.Role == RoleOperator
}

func validRole(role string) bool {
	return role == RoleOperator || role == RoleViewer
}

func (j *MakerImpl) GenerateToken(subject, role string) (string, error) {
	const op = "jwt.GenerateToken"
	if !validRole(role) {
		return "", fmt.Errorf("%s: %w: %q", op, ErrUnknownRole, role)
	}

	now := time.Now()
	claims := CustomClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.tokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(j.secretKey))
}

// ParseToken проверяет подпись, срок действия, издателя и роль.
func (j *MakerImpl) ParseToken(tokenStr string) (*CustomClaims, error) {
	const op = "jwt.ParseToken"
	token, err := jwt.ParseWithClaims(tokenStr, &CustomClaims{},
		func(_ *jwt.Token) (any, error) {
			return []byte(j.secretKey), nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%s: invalid token", op)
	}
	if !validRole(claims.Role) {
		return nil, fmt.Errorf("%s: %w: %q", op, ErrUnknownRole, claims.Role)
	}
	return claims, nil
}
