package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/desertthunder/rba/internal/shared"
	"github.com/urfave/cli/v3"
)

// Setup creates the config file if needed, initializes the database and runs migrations.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	var config *shared.Config
	if _, err := os.Stat(configPath); err == nil {
		if config, err = shared.LoadConfig(configPath); err != nil {
			r.logger.Warn("failed to load config, using defaults", "error", err)
			config = shared.DefaultConfig()
		}
	} else {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			r.logger.Warn("failed to create config file, using defaults", "error", err)
			config = shared.DefaultConfig()
		} else {
			r.logger.Info("config file created", "path", configPath)
			if config, err = shared.LoadConfig(configPath); err != nil {
				r.logger.Warn("failed to load created config, using defaults", "error", err)
				config = shared.DefaultConfig()
			}
		}
	}
	config.ApplyEnv("")

	r.logger.Info("initializing database", "path", config.Database.Path)

	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer db.Close()

	shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)

	r.logger.Info("running database migrations")
	migrator, err := shared.NewMigrator(db, r.logger)
	if err != nil {
		return err
	}
	if _, err := migrator.Up(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	r.logger.Infof("setup complete for database: %v", config.Database.Path)

	r.writePlain("✓ Database ready at %s\n", config.Database.Path)
	r.writePlain("Run 'rba init' to create the default profile and preferences\n")
	return nil
}

// migrator opens the configured database without migrating it. The returned func closes it.
func (r *Runner) migrator() (*shared.Migrator, func(), error) {
	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database %s: %w", r.config.Database.Path, err)
	}

	m, err := shared.NewMigrator(db, r.logger)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return m, func() { db.Close() }, nil
}

// MigrateUp applies pending schema migrations.
func (r *Runner) MigrateUp(ctx context.Context, cmd *cli.Command) error {
	m, done, err := r.migrator()
	if err != nil {
		return err
	}
	defer done()

	n, err := m.Up()
	if err != nil {
		return err
	}
	return r.writePlain("✓ Applied %d migrations\n", n)
}

// MigrateDown rolls back the most recent schema migrations.
func (r *Runner) MigrateDown(ctx context.Context, cmd *cli.Command) error {
	m, done, err := r.migrator()
	if err != nil {
		return err
	}
	defer done()

	n, err := m.Down(int(cmd.Int("steps")))
	if err != nil {
		return err
	}
	return r.writePlain("✓ Rolled back %d migrations\n", n)
}

// MigrateStatus lists each migration and when it was applied.
func (r *Runner) MigrateStatus(ctx context.Context, cmd *cli.Command) error {
	m, done, err := r.migrator()
	if err != nil {
		return err
	}
	defer done()

	statuses, err := m.Status()
	if err != nil {
		return err
	}

	r.writePlainHeader("Migrations")
	for _, s := range statuses {
		status := "pending"
		if s.Applied() {
			status = "applied " + s.AppliedAt.Local().Format(time.DateTime)
		}
		r.writePlain("%04d %-30s %s\n", s.Version, s.Name, status)
	}
	return nil
}
