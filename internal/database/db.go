package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// Open connects to the MySQL instance holding the console audit trail and
// verifies the connection.  Catalog data never touches this database; it
// lives behind the upstream API.
func Open(user, pass, host, port, name string) (*sql.DB, error) {
	auth := user
	if pass != "" {
		auth = fmt.Sprintf("%s:%s", user, pass)
	}
	// parseTime=true -> DATETIME -> time.Time | loc=UTC keeps times consistent
	dsn := fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
		auth, host, port, name)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}

	// Pool settings
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	// Ping with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	return db, nil
}

// EnsureAuditSchema creates the audit_events table when it does not exist.
// The consumer calls this once at startup so a fresh database works
// without a separate migration step.
func EnsureAuditSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
        CREATE TABLE IF NOT EXISTS audit_events (
            id           BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
            action       VARCHAR(64)  NOT NULL,
            actor_id     VARCHAR(64)  NOT NULL DEFAULT '',
            actor_email  VARCHAR(255) NOT NULL DEFAULT '',
            target_id    VARCHAR(64)  NOT NULL DEFAULT '',
            target_label VARCHAR(255) NOT NULL DEFAULT '',
            occurred_at  DATETIME     NOT NULL,
            created_at   DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP,
            PRIMARY KEY (id),
            KEY idx_audit_action (action),
            KEY idx_audit_occurred (occurred_at)
        ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`)
	return err
}
