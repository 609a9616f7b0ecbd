package db

import (
	"testing"

	"hotelops/pkg/config"
)

func TestMigrationConnString_PrefersDirectURL(t *testing.T) {
	cfg := config.Config{
		DatabaseURL: "postgres://pooler/db?pgbouncer=true",
		DirectURL:   "postgres://direct/db",
	}
	if got := migrationConnString(cfg); got != "postgres://direct/db" {
		t.Fatalf("expected direct url, got %q", got)
	}
	cfg.DirectURL = ""
	if got := migrationConnString(cfg); got != cfg.DatabaseURL {
		t.Fatalf("expected runtime url, got %q", got)
	}
}

func TestDSN_DefaultsSSLMode(t *testing.T) {
	got := dsn(config.DBConfig{User: "u", Password: "p", Host: "h", Port: "5432", Name: "n"})
	if got != "postgres://u:p@h:5432/n?sslmode=disable" {
		t.Fatalf("unexpected dsn %q", got)
	}
}
