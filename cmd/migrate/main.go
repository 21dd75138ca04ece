package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"

	"kumoney/internal/config"
	"kumoney/internal/database"
	"kumoney/internal/logger"
)

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Migration error: %v", err)
	}
}

func run() error {
	if len(os.Args) < 2 {
		return fmt.Errorf("usage: migrate <up|down|version|force> [N]")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.Named("migrate")
	command := os.Args[1]

	return database.Migrate(database.NewConfig(cfg), func(m *migrate.Migrate) error {
		switch command {
		case "up":
			if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
				return fmt.Errorf("migration up failed: %w", err)
			}
			log.Info("Migrations applied successfully")

		case "down":
			steps, err := stepArg(1)
			if err != nil {
				return err
			}
			if err := m.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
				return fmt.Errorf("migration down failed: %w", err)
			}
			log.Infof("Rolled back %d migration(s)", steps)

		case "version":
			version, dirty, err := m.Version()
			if err != nil {
				return fmt.Errorf("failed to get version: %w", err)
			}
			log.Infof("Version: %d, Dirty: %v", version, dirty)

		case "force":
			if len(os.Args) < 3 {
				return fmt.Errorf("usage: migrate force <version>")
			}
			version, err := strconv.Atoi(os.Args[2])
			if err != nil {
				return fmt.Errorf("invalid version: %w", err)
			}
			if err := m.Force(version); err != nil {
				return fmt.Errorf("force failed: %w", err)
			}
			log.Infof("Forced version %d", version)

		default:
			return fmt.Errorf("unknown command: %s (use up, down, version or force)", command)
		}
		return nil
	})
}

// stepArg reads the optional step count, defaulting to def.
func stepArg(def int) (int, error) {
	if len(os.Args) < 3 {
		return def, nil
	}
	steps, err := strconv.Atoi(os.Args[2])
	if err != nil || steps < 1 {
		return 0, fmt.Errorf("invalid step count %q", os.Args[2])
	}
	return steps, nil
}
