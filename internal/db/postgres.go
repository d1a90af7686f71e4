package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
)

const (
	defaultPostgresMaxConns = 25
	defaultPostgresMinConns = 5
	postgresPingTimeout     = 5 * time.Second
)

// OpenPostgres opens a database/sql handle backed by pgx. Sessions are tagged with
// application_name so board traffic is identifiable in pg_stat_activity.
// Non-positive pool sizes fall back to 25 open and 5 idle connections.
func OpenPostgres(dsn string, maxConns, minConns int) (*sql.DB, error) {
	connCfg, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("invalid postgres dsn: %w", err)
	}
	if _, ok := connCfg.RuntimeParams["application_name"]; !ok {
		connCfg.RuntimeParams["application_name"] = "boardly"
	}

	if maxConns <= 0 {
		maxConns = defaultPostgresMaxConns
	}
	if minConns <= 0 {
		minConns = defaultPostgresMinConns
	}

	conn := stdlib.OpenDB(*connCfg)
	conn.SetMaxOpenConns(maxConns)
	conn.SetMaxIdleConns(min(minConns, maxConns))
	conn.SetConnMaxIdleTime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), postgresPingTimeout)
	defer cancel()
	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to reach postgres at %s:%d: %w", connCfg.Host, connCfg.Port, err)
	}
	return conn, nil
}
