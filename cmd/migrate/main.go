package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"

	"github.com/farmops/backend/internal/infrastructure/config"
	"github.com/farmops/backend/internal/infrastructure/logger"
	"github.com/farmops/backend/internal/infrastructure/migration"
	"go.uber.org/zap"

	_ "github.com/lib/pq"
)

func main() {
	var (
		command = flag.String("command", "up", "Migration command: up, down, steps, version")
		steps   = flag.Int("steps", 0, "Number of steps for the steps command (negative rolls back)")
		source  = flag.String("source", "file://migrations", "Migration source path")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = log.Sync()
	}()

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to open database", zap.Error(err))
	}
	defer func() {
		_ = db.Close()
	}()

	if err := db.Ping(); err != nil {
		log.Fatal("Failed to reach database", zap.Error(err))
	}

	migrator, err := migration.NewMigrator(db, *source, log)
	if err != nil {
		log.Fatal("Failed to create migrator", zap.Error(err))
	}
	defer func() {
		_ = migrator.Close()
	}()

	switch *command {
	case "up":
		err = migrator.Up()
	case "down":
		err = migrator.Down()
	case "steps":
		if *steps == 0 {
			log.Fatal("steps command requires a non-zero -steps value")
		}
		err = migrator.Steps(*steps)
	case "version":
		version, dirty, verr := migrator.Version()
		if verr != nil {
			log.Fatal("Failed to read version", zap.Error(verr))
		}
		log.Info("Schema version", zap.Uint("version", version), zap.Bool("dirty", dirty))
	default:
		log.Fatal("Unknown command", zap.String("command", *command))
	}

	if err != nil {
		log.Fatal("Migration failed", zap.Error(err))
	}
}
