// Package jwt выпускает и проверяет токены управляющего API.
package jwt

import (
	"time"
)

// Роли управляющего API.
const (
	// RoleOperator может запускать задачи.
	RoleOperator = "operator"
	// RoleViewer может только смотреть статусы.
	RoleViewer = "viewer"
)

const issuer = "diary-sync"

// Maker выпускает и разбирает токены.
type Maker interface {
	GenerateToken(subject, role string) (string, error)
	ParseToken(tokenStr string) (*CustomClaims, error)
}

// MakerImpl подписывает токены HS256 общим секретом.
type MakerImpl struct {
	secretKey string
	tokenTTL  time.Duration
}

func NewJWTMaker(secretKey string, ttl time.Duration) *MakerImpl {
	return &MakerImpl{
		secretKey: secretKey,
		tokenTTL:  ttl,
	}
}
