package database

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"railway/pkg/database/migrations"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
)

func Connect(connStr string) (*sql.DB, error) {
	if connStr == "" {
		return nil, errors.New("DATABASE_URL is not set")
	}

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(3 * time.Minute)
	db.SetConnMaxIdleTime(30 * time.Second)

	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	log.Println("[DB] PostgreSQL connection established")
	return db, nil
}

func init() {
	goose.SetBaseFS(migrations.FS)
}

// Migrate applies every pending embedded migration.
func Migrate(db *sql.DB) error {
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	if err := goose.Up(db, "."); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	log.Println("[DB] Schema up to date")
	return nil
}

// RunCommand executes a goose command (up, down, status, redo, version...)
// against the embedded migrations.
func RunCommand(db *sql.DB, command string, args ...string) error {
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	return goose.Run(command, db, ".", args...)
}

// CleanExpiredSessions drops refresh sessions past their expiry until stop
// is closed.
func CleanExpiredSessions(db *sql.DB, every time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			res, err := db.Exec(`DELETE FROM sessions WHERE expires_at < (NOW() AT TIME ZONE 'UTC')`)
			if err != nil {
				log.Printf("[DB] session cleanup failed: %v", err)
				continue
			}
			if n, _ := res.RowsAffected(); n > 0 {
				log.Printf("[DB] removed %d expired sessions", n)
			}
		}
	}
}
