package database

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/lib/pq"

	"pager/config"
)

const schema = `
CREATE TABLE IF NOT EXISTS badge_events (
    uuid       UUID PRIMARY KEY,
    session    TEXT NOT NULL,
    device_id  TEXT NOT NULL,
    kind       TEXT NOT NULL,
    response   SMALLINT NOT NULL DEFAULT 0,
    uptime_ms  BIGINT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS badge_events_device_idx ON badge_events (device_id, created_at);`

// ConnectDB opens the journal database, retrying with a linearly growing delay.
func ConnectDB(cfg config.Config) (*sql.DB, error) {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort)

	const maxRetries = 10
	var lastErr error
	for i := range maxRetries {
		db, err := sql.Open("postgres", dsn)
		if err != nil {
			lastErr = err
			log.Printf("Error opening database: %v. Retrying in %d seconds...", err, i+1)
			time.Sleep(time.Duration(i+1) * time.Second)
			continue
		}
		if err = db.Ping(); err == nil {
			log.Println("Database connection successful!")

			db.SetMaxOpenConns(2)
			db.SetMaxIdleConns(1)
			db.SetConnMaxLifetime(5 * time.Minute)

			return db, nil
		}
		lastErr = err
		log.Printf("Error pinging database: %v. Retrying in %d seconds...", err, i+1)
		db.Close()
		time.Sleep(time.Duration(i+1) * time.Second)
	}
	return nil, fmt.Errorf("database unreachable after %d attempts: %w", maxRetries, lastErr)
}

// EnsureSchema creates the journal table if it does not exist.
func EnsureSchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create journal schema: %w", err)
	}
	return nil
}
