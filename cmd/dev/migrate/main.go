package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"hotelops/pkg/config"
	"hotelops/pkg/db"
)

// Usage:
//
//	go run ./cmd/dev/migrate            # apply pending migrations
//	go run ./cmd/dev/migrate -down 1    # roll back one migration
//	go run ./cmd/dev/migrate -version
func main() {
	var (
		down    = flag.Int("down", 0, "roll back this many migrations instead of migrating up")
		version = flag.Bool("version", false, "print the applied schema version and exit")
	)
	flag.Parse()

	cfg := config.Load()
	if cfg.MigrationsPath == "" {
		cfg.MigrationsPath = "file://migrations"
	}

	if *version {
		v, dirty, ok, err := db.MigrationVersion(cfg.MigrationsPath, cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "version failed: %v\n", err)
			os.Exit(1)
		}
		if !ok {
			fmt.Println("no migrations applied")
			return
		}
		fmt.Printf("version=%d dirty=%v\n", v, dirty)
		return
	}

	if *down > 0 {
		if *down > 1 && cfg.AppEnv == "prod" {
			fmt.Fprintln(os.Stderr, "refusing to roll back more than one migration with APP_ENV=prod")
			os.Exit(2)
		}
		if err := db.MigrateDown(cfg.MigrationsPath, cfg, *down); err != nil {
			fmt.Fprintf(os.Stderr, "migrate down failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("rolled back %d migration(s)\n", *down)
		return
	}

	// DIRECT_URL wins over DATABASE_URL for schema changes.
	if err := db.MigrateConfig(cfg.MigrationsPath, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "migrate failed: %v\n", err)
		os.Exit(1)
	}

	// The runtime pool must still open after migrating. DSNs are not printed.
	pool, err := db.Open(context.Background(), cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "runtime db open failed: %v\n", err)
		os.Exit(1)
	}
	pool.Close()

	fmt.Println("migrations applied")
}
