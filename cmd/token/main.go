// Package main выпускает токен для управляющего API.
//
//	CONFIG_PATH=config/local.yaml go run ./cmd/token -subject ops -role operator
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/magabrotheeeer/diary-sync/internal/config"
	"github.com/magabrotheeeer/diary-sync/internal/lib/jwt"
	"github.com/magabrotheeeer/diary-sync/internal/lib/sl"
)

func main() {
	subject := flag.String("subject", "operator", "token owner")
	role := flag.String("role", jwt.RoleViewer, "operator or viewer")
	ttl := flag.Duration("ttl", 0, "token lifetime, config value if zero")
	flag.Parse()

	cfg := config.MustLoad()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	lifetime := cfg.TokenTTL
	if *ttl > 0 {
		lifetime = *ttl
	}

	token, err := jwt.NewJWTMaker(cfg.JWTSecretKey, lifetime).GenerateToken(*subject, *role)
	if err != nil {
		logger.Error("failed to generate token", sl.Err(err))
		os.Exit(1)
	}
	logger.Info("token issued",
		slog.String("subject", *subject),
		slog.String("role", *role),
		slog.String("expires", time.Now().Add(lifetime).Format(time.RFC3339)),
	)
	fmt.Println(token)
}
