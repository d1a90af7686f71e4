// Package persistence opens the database pool selected by configuration.
package persistence

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/dongwonkwak/boardly-sub001/internal/common/config"
	"github.com/dongwonkwak/boardly-sub001/internal/common/logger"
	"github.com/dongwonkwak/boardly-sub001/internal/db"
)

// Provide creates the connection pool used by repositories.
func Provide(cfg *config.Config, log *logger.Logger) (*db.Pool, func() error, error) {
	driver := strings.ToLower(cfg.Database.Driver)

	switch driver {
	case "", "sqlite":
		pool, err := db.OpenSQLitePool(cfg.Database.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open sqlite database: %w", err)
		}
		log.Info("Database initialized",
			zap.String("db_driver", "sqlite"),
			zap.String("db_path", cfg.Database.Path))
		cleanup := func() error {
			// Refresh planner statistics before closing.
			_, _ = pool.Writer().Exec("PRAGMA optimize")
			return pool.Close()
		}
		return pool, cleanup, nil
	case "postgres":
		conn, err := db.OpenPostgres(cfg.Database.DSN(), cfg.Database.MaxConns, cfg.Database.MinConns)
		if err != nil {
			return nil, nil, err
		}
		shared := sqlx.NewDb(conn, "pgx")
		pool := db.NewPool(shared, shared)
		log.Info("Database initialized",
			zap.String("db_driver", "postgres"),
			zap.String("db_host", cfg.Database.Host),
			zap.String("db_name", cfg.Database.DBName))
		return pool, pool.Close, nil
	default:
		return nil, nil, fmt.Errorf("unsupported database driver: %s", driver)
	}
}
