package main

import (
	"crypto/rand"
	"encoding/base64"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"Apiverse/internal/api/middleware"
)

// gentoken issues an HS256 bearer token for local testing of the like endpoints
//
// Usage:
//
//	go run ./cmd/gentoken -sub alice
//	go run ./cmd/gentoken -new-secret
//
// The secret is read from AUTH_JWT_SECRET and must match the server's.
func main() {
	subject := flag.String("sub", "", "identity the token is issued for")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	newSecret := flag.Bool("new-secret", false, "print a random secret for AUTH_JWT_SECRET and exit")
	flag.Parse()

	if *newSecret {
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			log.Fatalf("Failed to generate secret: %v", err)
		}
		fmt.Printf("AUTH_JWT_SECRET='%s'\n", base64.RawURLEncoding.EncodeToString(buf))
		return
	}

	secret := os.Getenv("AUTH_JWT_SECRET")
	if secret == "" {
		log.Fatal("AUTH_JWT_SECRET is not set")
	}
	if *subject == "" {
		log.Fatal("-sub is required")
	}

	token, err := middleware.IssueToken([]byte(secret), *subject, *ttl)
	if err != nil {
		log.Fatalf("Failed to issue token: %v", err)
	}

	fmt.Println(token)
}
