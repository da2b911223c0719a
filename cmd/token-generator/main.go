// Command token-generator issues an API token for a named client using the
// configured secret key. It is used when auth.enabled is set.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/phrazzld/task-tracker/internal/config"
	"github.com/phrazzld/task-tracker/internal/service/auth"
)

func main() {
	subject := flag.String("subject", "", "Client name recorded in the token subject")
	lifetime := flag.Int("lifetime", 0, "Token lifetime in minutes (defaults to auth.token_lifetime_minutes)")
	flag.Parse()

	token, err := issue(*subject, *lifetime)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(token)
}

func issue(subject string, lifetimeMinutes int) (string, error) {
	if subject == "" {
		return "", fmt.Errorf("-subject is required")
	}

	cfg, err := config.Load()
	if err != nil {
		return "", fmt.Errorf("failed to load configuration: %w", err)
	}

	authCfg := cfg.Auth
	if lifetimeMinutes > 0 {
		authCfg.TokenLifetimeMinutes = lifetimeMinutes
	}

	jwtService, err := auth.NewJWTService(authCfg)
	if err != nil {
		return "", fmt.Errorf("failed to initialize JWT service: %w", err)
	}

	return jwtService.GenerateToken(context.Background(), subject)
}
