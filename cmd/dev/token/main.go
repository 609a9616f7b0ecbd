package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"hotelops/pkg/config"
	"hotelops/pkg/session"
)

// Mints an admin console session token for local testing:
//
//	go run ./cmd/dev/token -actor <actor uuid> -property <property uuid>
func main() {
	cfg := config.Load()

	var (
		actor    = flag.String("actor", "", "actor id (token subject)")
		property = flag.String("property", "", "property id")
		ttl      = flag.Duration("ttl", cfg.Session.TTL, "token lifetime")
	)
	flag.Parse()

	if cfg.AppEnv == "prod" {
		fmt.Fprintln(os.Stderr, "refusing to mint tokens with APP_ENV=prod")
		os.Exit(2)
	}
	if *actor == "" || *property == "" {
		fmt.Fprintln(os.Stderr, "missing -actor or -property")
		os.Exit(2)
	}
	if cfg.Session.Secret == "" {
		fmt.Fprintln(os.Stderr, "missing SESSION_SECRET")
		os.Exit(2)
	}

	tok, err := session.Issue(*actor, *property, cfg.Session.Audience, cfg.Session.Secret, time.Now(), *ttl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "issue: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(tok)
}
