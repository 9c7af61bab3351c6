package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/pageza/recipebox/backend/config"
	"github.com/pageza/recipebox/backend/internal/database"
	"github.com/pageza/recipebox/backend/internal/logger"
)

const usage = `usage: migrate [-database-url URL] up|down|version

Applies the embedded postgres migrations. The connection comes from
-database-url, then DATABASE_URL, then the DB_* settings.
`

func main() {
	dbURL := flag.String("database-url", "", "postgres connection URL")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	log, err := logger.New(logger.Config{Format: "console", Development: true})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	dsn, err := connectionURL(*dbURL)
	if err != nil {
		log.Fatal("no database configured", zap.Error(err))
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatal("failed to open database", zap.Error(err))
	}
	defer db.Close()

	m, err := database.NewMigrator(db, log)
	if err != nil {
		log.Fatal("failed to prepare migrations", zap.Error(err))
	}

	switch cmd := flag.Arg(0); cmd {
	case "up":
		err = m.Up()
	case "down":
		err = m.Down()
		if err == nil {
			log.Info("rolled back one migration")
		}
	case "version":
		var (
			version uint
			dirty   bool
		)
		version, dirty, err = m.Version()
		if err == nil {
			log.Info("schema version", zap.Uint("version", version), zap.Bool("dirty", dirty))
		}
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatal("migration failed", zap.Error(err))
	}
}

func connectionURL(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if env := os.Getenv("DATABASE_URL"); env != "" {
		return env, nil
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		return "", err
	}
	if cfg.Database.Driver != "postgres" {
		return "", fmt.Errorf("migrations only run against postgres, got driver %q", cfg.Database.Driver)
	}
	return cfg.Database.URL(), nil
}
