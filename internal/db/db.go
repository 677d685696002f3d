package db

import (
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strconv"
	"strings"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var embedded embed.FS

// Migrations returns the SQL migrations compiled into the binary.
func Migrations() fs.FS {
	sub, err := fs.Sub(embedded, "migrations")
	if err != nil {
		panic(err)
	}
	return sub
}

// DB wraps the database connection
type DB struct {
	*sql.DB
	log *zap.Logger
}

// New opens and pings a PostgreSQL connection. When the first ping fails
// and the DSN has no sslmode, it retries once with sslmode=disable.
func New(connectionString string, log *zap.Logger) (*DB, error) {
	if connectionString == "" {
		return nil, fmt.Errorf("database connection string is required")
	}
	if log == nil {
		log = zap.NewNop()
	}

	sqlDB, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		if strings.Contains(strings.ToLower(connectionString), "sslmode") {
			sqlDB.Close()
			return nil, fmt.Errorf("failed to ping database: %w", err)
		}
		log.Info("retrying database connection with SSL disabled")
		sqlDB.Close()
		sqlDB, err = sql.Open("postgres", withSSLDisabled(connectionString))
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		if err := sqlDB.Ping(); err != nil {
			sqlDB.Close()
			return nil, fmt.Errorf("failed to ping database: %w", err)
		}
	}

	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)

	return &DB{DB: sqlDB, log: log}, nil
}

func withSSLDisabled(dsn string) string {
	if strings.Contains(dsn, "?") {
		return dsn + "&sslmode=disable"
	}
	if strings.Contains(dsn, "://") {
		return dsn + "?sslmode=disable"
	}
	// key=value DSN
	return dsn + " sslmode=disable"
}

// HealthCheck verifies the database connection is healthy
func (db *DB) HealthCheck() error {
	return db.Ping()
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.DB.Close()
}

// RunMigrations applies every NNN_name.sql file of migrations that is not
// yet recorded in schema_migrations, each in its own transaction.
func (db *DB) RunMigrations(migrations fs.FS) error {
	list, err := ReadMigrations(migrations)
	if err != nil {
		return fmt.Errorf("failed to read migrations: %w", err)
	}
	if len(list) == 0 {
		db.log.Info("no migrations found")
		return nil
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TIMESTAMP DEFAULT NOW()
		)
	`); err != nil {
		return fmt.Errorf("failed to create migration table: %w", err)
	}

	for _, m := range list {
		var count int
		if err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations WHERE version = $1", m.Number).Scan(&count); err != nil {
			return fmt.Errorf("failed to check migration status: %w", err)
		}
		if count > 0 {
			continue
		}

		db.log.Info("applying migration", zap.Int("version", m.Number), zap.String("name", m.Name))
		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}
		if _, err := tx.Exec(m.SQL); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to execute migration %d: %w", m.Number, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_migrations (version, name) VALUES ($1, $2)", m.Number, m.Name); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration: %w", err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration: %w", err)
		}
	}
	return nil
}

// Migration represents a single migration file
type Migration struct {
	Number int
	Name   string
	SQL    string
}

// ReadMigrations lists NNN_name.sql files sorted by number. Files without
// a numeric prefix are ignored.
func ReadMigrations(migrations fs.FS) ([]Migration, error) {
	var out []Migration
	err := fs.WalkDir(migrations, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(p, ".sql") {
			return nil
		}
		filename := path.Base(p)
		number, name, ok := strings.Cut(filename, "_")
		if !ok {
			return nil
		}
		n, err := strconv.Atoi(number)
		if err != nil {
			return nil
		}
		b, err := fs.ReadFile(migrations, p)
		if err != nil {
			return fmt.Errorf("failed to read migration file %s: %w", filename, err)
		}
		out = append(out, Migration{Number: n, Name: strings.TrimSuffix(name, ".sql"), SQL: string(b)})
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}
