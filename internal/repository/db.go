package repository

import (
	"database/sql"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// NewDB creates a new MySQL database connection pool with the given DSN.
func NewDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            BIGINT AUTO_INCREMENT PRIMARY KEY,
		email         VARCHAR(255) NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL,
		role          VARCHAR(16)  NOT NULL DEFAULT 'STANDARD',
		token         VARCHAR(512) NULL,
		created_at    TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at    TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS weather_records (
		id                  CHAR(36) PRIMARY KEY,
		record_date         DATE NOT NULL UNIQUE,
		weather_type        VARCHAR(16) NOT NULL,
		average_temperature DOUBLE NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS hourly_temperatures (
		id          BIGINT AUTO_INCREMENT PRIMARY KEY,
		record_id   CHAR(36) NOT NULL,
		hour        TINYINT NOT NULL,
		temperature DOUBLE NOT NULL,
		UNIQUE KEY uniq_record_hour (record_id, hour),
		FOREIGN KEY (record_id) REFERENCES weather_records(id) ON DELETE CASCADE
	)`,
}

// Migrate applies the schema. All statements are idempotent, so it is safe to
// run on every startup.
func Migrate(db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
