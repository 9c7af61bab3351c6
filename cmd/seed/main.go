// Command seed loads users and recipes from a YAML file into the configured
// database. Existing users are reused, so it is safe to run more than once
// for users but recipes are always added.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"go.uber.org/zap"

	"github.com/pageza/recipebox/backend/config"
	"github.com/pageza/recipebox/backend/internal/database"
	"github.com/pageza/recipebox/backend/internal/logger"
	"github.com/pageza/recipebox/backend/internal/service"
)

func main() {
	file := flag.String("file", "seed.yaml", "seed file to load")
	fake := flag.Int("fake", 0, "generated recipes to add per user")
	flag.Parse()

	log, err := logger.New(logger.Config{Format: "console", Development: true})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(*file, *fake, log); err != nil {
		log.Fatal("seeding failed", zap.Error(err))
	}
	log.Info("seeding complete")
}

func run(path string, fake int, log *zap.Logger) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	seed, err := Parse(f)
	if err != nil {
		return err
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	db, err := database.New(cfg.Database, log)
	if err != nil {
		return err
	}
	if err := database.RunMigrations(db, log); err != nil {
		return err
	}

	s := &seeder{
		db:      db,
		auth:    service.NewAuthService(db, cfg.JWT.Secret, cfg.JWT.TTL, service.NewMemoryTokenRevoker()),
		recipes: service.NewRecipeService(db, nil),
		log:     log,
		faker:   gofakeit.New(time.Now().UnixNano()),
	}
	return s.Apply(context.Background(), seed, fake)
}
