package database

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	_ "github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/Q872/base-sniper-monitor/monitor/internal/models"
)

// MigrateDatabase handles database migrations using GORM's AutoMigrate and
// raw SQL as a fallback. A failure is returned, not fatal: the caller falls
// back to the in-memory ledger.
func MigrateDatabase(db *gorm.DB, dsn string) error {
	env := os.Getenv("APP_ENV")
	log.Printf("Running migrations for environment: %s", env)

	log.Println("Running GORM migrations...")
	if err := db.AutoMigrate(&models.TokenRecordRow{}); err != nil {
		return fmt.Errorf("gorm migrations: %w", err)
	}
	log.Println("GORM migrations executed successfully.")

	dbSQL, err := sql.Open("postgres", dsn)
	if err != nil {
		return fmt.Errorf("sql connection for raw migrations: %w", err)
	}
	defer dbSQL.Close()

	return executeSQLMigrations(dbSQL)
}

// executeSQLMigrations performs raw SQL migrations as a fallback
func executeSQLMigrations(db *sql.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS token_record_rows (
            address TEXT PRIMARY KEY,
            symbol TEXT NOT NULL,
            first_seen TIMESTAMP NOT NULL,
            initial_price FLOAT NOT NULL DEFAULT 0,
            initial_liquidity FLOAT NOT NULL DEFAULT 0,
            current_price FLOAT NOT NULL DEFAULT 0,
            highest_price FLOAT NOT NULL DEFAULT 0,
            lowest_price FLOAT NOT NULL DEFAULT 0,
            price_history JSONB NOT NULL DEFAULT '[]',
            notified_multiples JSONB NOT NULL DEFAULT '[]',
            last_updated TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
        );`,
		`CREATE INDEX IF NOT EXISTS idx_token_record_rows_first_seen ON token_record_rows (first_seen);`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("execute query: %w", err)
		}
	}
	log.Println("Raw SQL migrations executed successfully.")
	return nil
}
