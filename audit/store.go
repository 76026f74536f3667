package audit

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib" // pgx postgres driver registered as 'pgx'
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Connect opens a Postgres connection pool using the pgx driver.
func Connect(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open audit db: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return db, nil
}

// RunMigrations applies the embedded versioned migrations. It is idempotent.
func RunMigrations(db *sql.DB) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to open embedded migrations: %w", err)
	}
	driver, err := postgres.WithInstance(db, &postgres.Config{MigrationsTable: "inquiry_schema_migrations"})
	if err != nil {
		return fmt.Errorf("failed to create postgres driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			slog.Info("audit schema is up to date", slog.String("component", "audit_migrate"))
			return nil
		}
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil {
		slog.Warn("could not determine migration version", slog.Any("err", err), slog.String("component", "audit_migrate"))
		return nil
	}
	if dirty {
		return fmt.Errorf("audit schema is dirty at version %d - manual intervention required", version)
	}
	slog.Info("audit migrations applied",
		slog.Uint64("version", uint64(version)),
		slog.String("component", "audit_migrate"))
	return nil
}

// Store is a Postgres backed Recorder.
type Store struct {
	db *sql.DB
}

// NewStore wraps an open database. Call RunMigrations first.
func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// Record inserts one event. A zero OccurredAt is stamped with the current time.
func (s *Store) Record(ctx context.Context, ev Event) error {
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO inquiry_events
		(kind, guild_id, user_id, username, channel_id, error, correlation_id, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		string(ev.Kind), nullable(ev.GuildID), ev.UserID, nullable(ev.Username),
		nullable(ev.ChannelID), nullable(ev.Error), nullable(ev.CorrelationID), ev.OccurredAt)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// Recent returns the newest events first, at most limit rows.
func (s *Store) Recent(ctx context.Context, limit int) ([]Event, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `SELECT kind, COALESCE(guild_id, ''), user_id, COALESCE(username, ''),
		COALESCE(channel_id, ''), COALESCE(error, ''), COALESCE(correlation_id, ''), occurred_at
		FROM inquiry_events ORDER BY occurred_at DESC, id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			slog.Error("failed to close rows", slog.Any("err", cerr))
		}
	}()

	var out []Event
	for rows.Next() {
		var ev Event
		var kind string
		if err := rows.Scan(&kind, &ev.GuildID, &ev.UserID, &ev.Username, &ev.ChannelID, &ev.Error, &ev.CorrelationID, &ev.OccurredAt); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		ev.Kind = Kind(kind)
		out = append(out, ev)
	}
	return out, rows.Err()
}

// Ping checks connectivity for readiness probes.
func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
