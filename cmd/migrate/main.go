package main

// Run run-log migrations:
//   go run ./cmd/migrate

import (
	"context"
	"database/sql"
	"log"
	"os"
	"strings"

	"resume-matcher/internal/shared/config"
	"resume-matcher/internal/shared/storage/db"
)

func main() {
	cfg := config.FromEnv()
	ctx := context.Background()
	opts := db.OptionsFromEnv(db.DefaultMigrateOptions())

	var (
		dialect db.Dialect
		connect func() (*sql.DB, error)
	)
	switch {
	case strings.TrimSpace(cfg.DatabaseURL) != "":
		dialect = db.DialectPostgres
		connect = func() (*sql.DB, error) { return db.Connect(ctx, cfg.DatabaseURL, opts) }
	case strings.TrimSpace(cfg.RunlogSQLitePath) != "":
		dialect = db.DialectSQLite
		connect = func() (*sql.DB, error) { return db.ConnectSQLite(ctx, cfg.RunlogSQLitePath, opts) }
	default:
		log.Printf("DATABASE_URL or RUNLOG_SQLITE_PATH is required")
		os.Exit(1)
	}

	conn, err := connect()
	if err != nil {
		log.Printf("failed to connect database: %v", err)
		os.Exit(1)
	}
	defer conn.Close()

	if err := db.RunMigrations(ctx, conn, dialect); err != nil {
		log.Printf("failed to run migrations: %v", err)
		os.Exit(1)
	}
	log.Printf("migrations applied dialect=%s", dialect)
}
