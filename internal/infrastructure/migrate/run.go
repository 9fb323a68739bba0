package migrate

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"gorm.io/gorm"

	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
)

type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

func ParseDirection(s string) (Direction, error) {
	switch Direction(s) {
	case Up, Down:
		return Direction(s), nil
	default:
		return "", fmt.Errorf("unknown migration direction %q (want up or down)", s)
	}
}

// Plan describes one migration run. Steps == 0 applies every pending
// migration in the chosen direction.
type Plan struct {
	Direction Direction
	Steps     int
}

func (p Plan) apply(m *migrate.Migrate) error {
	if p.Steps < 0 {
		return fmt.Errorf("steps must not be negative, got %d", p.Steps)
	}
	switch {
	case p.Steps > 0 && p.Direction == Down:
		return m.Steps(-p.Steps)
	case p.Steps > 0:
		return m.Steps(p.Steps)
	case p.Direction == Down:
		return m.Down()
	default:
		return m.Up()
	}
}

func RunMigrations(db *gorm.DB, migrationPath string) error {
	return Run(db, migrationPath, Plan{Direction: Up})
}

func Run(db *gorm.DB, migrationPath string, plan Plan) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB from gorm.DB: %w", err)
	}

	driver, err := postgres.WithInstance(sqlDB, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("creating postgres driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", migrationPath),
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("creating migrate instance: %w", err)
	}

	if err := plan.apply(m); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("applying migrations (%s): %w", plan.Direction, err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("reading migration version: %w", err)
	}
	slog.Info("migrations applied", "direction", plan.Direction, "steps", plan.Steps, "version", version, "dirty", dirty)
	return nil
}
