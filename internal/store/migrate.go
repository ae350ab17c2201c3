package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Migration is one schema version. Statements run in order inside a single transaction.
type Migration struct {
	Version  int
	Name     string
	SQLite   []string
	Postgres []string
}

func (m Migration) statements(d Dialect) []string {
	if d == Postgres {
		return m.Postgres
	}
	return m.SQLite
}

// Migrations is the ordered schema history. Append only.
var Migrations = []Migration{
	{
		Version: 1,
		Name:    "create_core_tables",
		SQLite: []string{
			`CREATE TABLE IF NOT EXISTS users (
				id         INTEGER PRIMARY KEY AUTOINCREMENT,
				username   TEXT UNIQUE NOT NULL,
				email      TEXT UNIQUE NOT NULL,
				password   TEXT NOT NULL,
				role       TEXT CHECK(role IN ('student','admin')) NOT NULL DEFAULT 'student',
				created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
			)`,
			`CREATE TABLE IF NOT EXISTS placements (
				id          INTEGER PRIMARY KEY AUTOINCREMENT,
				company     TEXT NOT NULL,
				role        TEXT NOT NULL,
				location    TEXT NOT NULL,
				description TEXT,
				link        TEXT,
				created_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
			)`,
			`CREATE TABLE IF NOT EXISTS resumes (
				id           INTEGER PRIMARY KEY AUTOINCREMENT,
				user_id      INTEGER REFERENCES users(id) ON DELETE SET NULL,
				filename     TEXT NOT NULL,
				storage_path TEXT NOT NULL,
				verdict      TEXT NOT NULL,
				details      TEXT NOT NULL,
				uploaded_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
			)`,
			`CREATE TABLE IF NOT EXISTS applications (
				id           INTEGER PRIMARY KEY AUTOINCREMENT,
				user_id      INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				placement_id INTEGER NOT NULL REFERENCES placements(id) ON DELETE CASCADE,
				status       TEXT CHECK(status IN ('Applied','Shortlisted','Selected','Rejected')) NOT NULL DEFAULT 'Applied',
				applied_at   TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
			)`,
			`CREATE TABLE IF NOT EXISTS chat_logs (
				id         INTEGER PRIMARY KEY AUTOINCREMENT,
				user_id    INTEGER REFERENCES users(id) ON DELETE CASCADE,
				role       TEXT NOT NULL,
				message    TEXT NOT NULL,
				created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
			)`,
			`CREATE TABLE IF NOT EXISTS feedback (
				id         INTEGER PRIMARY KEY AUTOINCREMENT,
				user_id    INTEGER REFERENCES users(id) ON DELETE SET NULL,
				rating     INTEGER NOT NULL CHECK(rating >= 1 AND rating <= 5),
				comment    TEXT NOT NULL,
				created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
			)`,
		},
		Postgres: []string{
			`CREATE TABLE IF NOT EXISTS users (
				id         BIGSERIAL PRIMARY KEY,
				username   TEXT UNIQUE NOT NULL,
				email      TEXT UNIQUE NOT NULL,
				password   TEXT NOT NULL,
				role       TEXT CHECK(role IN ('student','admin')) NOT NULL DEFAULT 'student',
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			)`,
			`CREATE TABLE IF NOT EXISTS placements (
				id          BIGSERIAL PRIMARY KEY,
				company     TEXT NOT NULL,
				role        TEXT NOT NULL,
				location    TEXT NOT NULL,
				description TEXT,
				link        TEXT,
				created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
			)`,
			`CREATE TABLE IF NOT EXISTS resumes (
				id           BIGSERIAL PRIMARY KEY,
				user_id      BIGINT REFERENCES users(id) ON DELETE SET NULL,
				filename     TEXT NOT NULL,
				storage_path TEXT NOT NULL,
				verdict      TEXT NOT NULL,
				details      TEXT NOT NULL,
				uploaded_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
			)`,
			`CREATE TABLE IF NOT EXISTS applications (
				id           BIGSERIAL PRIMARY KEY,
				user_id      BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				placement_id BIGINT NOT NULL REFERENCES placements(id) ON DELETE CASCADE,
				status       TEXT CHECK(status IN ('Applied','Shortlisted','Selected','Rejected')) NOT NULL DEFAULT 'Applied',
				applied_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
			)`,
			`CREATE TABLE IF NOT EXISTS chat_logs (
				id         BIGSERIAL PRIMARY KEY,
				user_id    BIGINT REFERENCES users(id) ON DELETE CASCADE,
				role       TEXT NOT NULL,
				message    TEXT NOT NULL,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			)`,
			`CREATE TABLE IF NOT EXISTS feedback (
				id         BIGSERIAL PRIMARY KEY,
				user_id    BIGINT REFERENCES users(id) ON DELETE SET NULL,
				rating     INTEGER NOT NULL CHECK(rating >= 1 AND rating <= 5),
				comment    TEXT NOT NULL,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			)`,
		},
	},
	{
		Version: 2,
		Name:    "add_profile_and_placement_details",
		SQLite: []string{
			`ALTER TABLE users ADD COLUMN phone TEXT`,
			`ALTER TABLE users ADD COLUMN skills TEXT`,
			`ALTER TABLE users ADD COLUMN profile_pic TEXT`,
			`ALTER TABLE users ADD COLUMN resume TEXT`,
			`ALTER TABLE placements ADD COLUMN eligibility TEXT`,
			`ALTER TABLE placements ADD COLUMN deadline TEXT`,
		},
		Postgres: []string{
			`ALTER TABLE users ADD COLUMN IF NOT EXISTS phone TEXT`,
			`ALTER TABLE users ADD COLUMN IF NOT EXISTS skills TEXT`,
			`ALTER TABLE users ADD COLUMN IF NOT EXISTS profile_pic TEXT`,
			`ALTER TABLE users ADD COLUMN IF NOT EXISTS resume TEXT`,
			`ALTER TABLE placements ADD COLUMN IF NOT EXISTS eligibility TEXT`,
			`ALTER TABLE placements ADD COLUMN IF NOT EXISTS deadline TEXT`,
		},
	},
	{
		Version: 3,
		Name:    "add_application_indexes",
		SQLite: []string{
			`CREATE INDEX IF NOT EXISTS idx_applications_user ON applications(user_id)`,
			`CREATE INDEX IF NOT EXISTS idx_applications_placement ON applications(placement_id)`,
			`CREATE INDEX IF NOT EXISTS idx_resumes_user ON resumes(user_id)`,
		},
		Postgres: []string{
			`CREATE INDEX IF NOT EXISTS idx_applications_user ON applications(user_id)`,
			`CREATE INDEX IF NOT EXISTS idx_applications_placement ON applications(placement_id)`,
			`CREATE INDEX IF NOT EXISTS idx_resumes_user ON resumes(user_id)`,
		},
	},
}

const migrationsTable = `CREATE TABLE IF NOT EXISTS schema_migrations (
	version    INTEGER PRIMARY KEY,
	name       TEXT NOT NULL,
	applied_at TIMESTAMP NOT NULL
)`

// Migrate applies every pending migration and returns how many ran.
func (d *DB) Migrate(ctx context.Context) (int, error) {
	return d.migrate(ctx, Migrations)
}

func (d *DB) migrate(ctx context.Context, migrations []Migration) (int, error) {
	if _, err := d.Client.ExecContext(ctx, migrationsTable); err != nil {
		return 0, fmt.Errorf("create schema_migrations: %w", err)
	}
	applied, err := d.appliedVersions(ctx)
	if err != nil {
		return 0, err
	}

	ran := 0
	for _, m := range migrations {
		if applied[m.Version] {
			continue
		}
		if err := d.apply(ctx, m); err != nil {
			return ran, fmt.Errorf("migration %d (%s): %w", m.Version, m.Name, err)
		}
		slog.Info("migration applied", slog.Int("version", m.Version), slog.String("name", m.Name))
		ran++
	}
	return ran, nil
}

func (d *DB) appliedVersions(ctx context.Context) (map[int]bool, error) {
	rows, err := d.Client.QueryContext(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("read schema_migrations: %w", err)
	}
	defer rows.Close()
	out := map[int]bool{}
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out[v] = true
	}
	return out, rows.Err()
}

func (d *DB) apply(ctx context.Context, m Migration) error {
	tx, err := d.Client.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range m.statements(d.Dialect) {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO schema_migrations (version, name, applied_at) VALUES ($1, $2, $3)`,
		m.Version, m.Name, time.Now().UTC(),
	); err != nil {
		return err
	}
	return tx.Commit()
}
