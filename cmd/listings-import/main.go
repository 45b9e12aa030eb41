// Import tool: reads the listings CSV (path or URL) and upserts it into the
// Postgres listings table in batches.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"rental-atlas/internal/config"
	"rental-atlas/internal/ingest"
	"rental-atlas/internal/logger"
	"rental-atlas/internal/migrate"
	"rental-atlas/internal/store"
	"rental-atlas/internal/utils"
)

func main() {
	config.LoadEnvFiles()
	l := logger.Setup()
	src := os.Getenv("SRC_URL")
	if len(os.Args) > 1 {
		src = os.Args[1]
	}
	if src == "" {
		src = config.Load().Dataset
	}
	if src == "postgres" {
		l.Error("import_source_invalid", "src", src)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()
	rows, err := ingest.Load(ctx, src, nil)
	if err != nil {
		l.Error("import_read_error", "err", err)
		os.Exit(1)
	}

	db, err := utils.OpenPostgresFromEnv()
	if err != nil {
		l.Error("db_open_error", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		l.Error("db_ping_error", "err", err)
		os.Exit(1)
	}
	if err := migrate.EnsureSchema(db); err != nil {
		l.Error("schema_error", "err", err)
		os.Exit(1)
	}
	n, err := store.AttachDB(db).InsertListings(ctx, rows)
	if err != nil {
		l.Error("import_write_error", "err", err, "written", n)
		os.Exit(1)
	}
	fmt.Println("imported", n)
}
