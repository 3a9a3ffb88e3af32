// Command devtoken prints a bearer token for calling the API locally.
//
//	go run ./cmd/devtoken -user 5f0c... -role admin
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"irisai/internal/authz"
	"irisai/internal/config"
	"irisai/internal/middleware"
)

func main() {
	_ = godotenv.Load()

	userID := flag.String("user", "", "user id to embed (random UUID when empty)")
	role := flag.String("role", "sales", "role: sales, operations, audit, management or admin")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}
	if cfg.Auth.JWTSecret == "" {
		log.Fatal("auth.jwt_secret (or JWT_SECRET) is required")
	}
	roleID, ok := authz.ParseRole(*role)
	if !ok {
		log.Fatalf("unknown role %q", *role)
	}
	if *userID == "" {
		*userID = uuid.NewString()
	}

	token, err := middleware.IssueToken([]byte(cfg.Auth.JWTSecret), *userID, roleID, cfg.Auth.TokenTTL)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Fprintln(os.Stdout, token)
}
