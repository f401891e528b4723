// Command tokengen mints bearer tokens for the event write routes using the
// same JWT_SECRET and JWT_ISSUER the API reads.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/event-calendar-api/internal/models"
	"github.com/noah-isme/event-calendar-api/internal/service"
	"github.com/noah-isme/event-calendar-api/pkg/config"
)

func main() {
	subject := flag.String("subject", "", "token subject, usually an operator or client name")
	role := flag.String("role", string(models.RoleEditor), "ADMIN, EDITOR or VIEWER")
	ttl := flag.Duration("ttl", 0, "token lifetime; defaults to JWT_EXPIRATION")
	asJSON := flag.Bool("json", false, "print token and expiry as JSON")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	expiry := cfg.Auth.Expiration
	if *ttl > 0 {
		expiry = *ttl
	}

	auth := service.NewAuthService(nil, zap.NewNop(), service.AuthConfig{
		AccessTokenSecret: cfg.Auth.Secret,
		AccessTokenExpiry: expiry,
		Issuer:            cfg.Auth.Issuer,
	})
	token, err := auth.IssueToken(service.TokenRequest{
		Subject: *subject,
		Role:    models.UserRole(strings.ToUpper(*role)),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "issue token: %v\n", err)
		os.Exit(1)
	}

	if *asJSON {
		_ = json.NewEncoder(os.Stdout).Encode(token)
		return
	}
	fmt.Println(token.AccessToken)
}
