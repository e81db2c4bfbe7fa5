// Test program to generate bearer tokens for manual API testing
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/nitty-hq/server/internal/auth"
	"github.com/nitty-hq/server/internal/config"
)

func main() {
	subject := flag.String("subject", "", "user id to embed in the token (required)")
	ttl := flag.Duration("ttl", 0, "token lifetime (default: ACCESS_TOKEN_EXPIRE_MINUTES)")
	flag.Parse()

	if *subject == "" {
		fmt.Fprintln(os.Stderr, "Error: -subject is required")
		flag.Usage()
		os.Exit(1)
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		fmt.Fprintln(os.Stderr, "Error: JWT_SECRET is not set")
		os.Exit(1)
	}

	issuer := os.Getenv("JWT_ISSUER")
	if issuer == "" {
		issuer = "nitty"
	}

	tokens := auth.NewTokenManager(secret, config.DefaultTokenTTLMinutes*time.Minute, issuer)
	token, err := tokens.Issue(*subject, *ttl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Bearer token:")
	fmt.Println(token)
	fmt.Println("\nTest with:")
	fmt.Printf("curl -H 'Authorization: Bearer %s' http://localhost:8080/api/v1/events/my\n", token)
}
