package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"storefront/internal/apperrors"
	"storefront/internal/logging"
	"storefront/internal/models"
)

const pingTimeout = 5 * time.Second

// Connector owns the process-wide connection to the product store.
// The handle is created lazily by Connect and released by Disconnect.
type Connector struct {
	dsn string

	mu sync.Mutex
	db *gorm.DB
}

// NewConnector creates a Connector for dsn without connecting.
func NewConnector(dsn string) *Connector {
	return &Connector{dsn: dsn}
}

// Dialector picks the gorm driver for dsn: PostgreSQL URLs and key/value
// DSNs use the postgres driver, anything else is a SQLite path.
func Dialector(dsn string) gorm.Dialector {
	if IsPostgres(dsn) {
		return postgres.Open(dsn)
	}
	return sqlite.Open(dsn)
}

// IsPostgres reports whether dsn addresses a PostgreSQL server.
func IsPostgres(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") ||
		strings.HasPrefix(dsn, "postgresql://") ||
		strings.Contains(dsn, "host=")
}

// Connect establishes the connection, or reuses it when it is already up.
// A connection that no longer answers a ping is closed and reopened.
func (c *Connector) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.db != nil {
		err := ping(ctx, c.db)
		if err == nil {
			return nil
		}
		log.Warn().Err(err).Msg("database connection not ready, reconnecting")
		closeDB(c.db)
		c.db = nil
	}

	db, err := gorm.Open(Dialector(c.dsn), &gorm.Config{
		Logger:         logging.GormLogger(),
		TranslateError: true,
	})
	if err != nil {
		return apperrors.Unavailable("connect", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return apperrors.Unavailable("connect", err)
	}
	if IsPostgres(c.dsn) {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetConnMaxLifetime(5 * time.Minute)
	} else {
		// SQLite allows a single writer; in-memory databases also live per connection.
		sqlDB.SetMaxOpenConns(1)
	}

	if err := ping(ctx, db); err != nil {
		closeDB(db)
		return apperrors.Unavailable("connect", err)
	}

	c.db = db
	log.Info().Str("driver", db.Dialector.Name()).Msg("database connected")
	return nil
}

// DB connects if needed and returns the shared handle.
func (c *Connector) DB(ctx context.Context) (*gorm.DB, error) {
	if err := c.Connect(ctx); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.db, nil
}

// Migrate creates or updates the product table.
func (c *Connector) Migrate(ctx context.Context) error {
	db, err := c.DB(ctx)
	if err != nil {
		return err
	}
	if err := db.WithContext(ctx).AutoMigrate(&models.Product{}); err != nil {
		return fmt.Errorf("failed to migrate products: %w", err)
	}
	return nil
}

// Ping checks the current connection without reconnecting.
func (c *Connector) Ping(ctx context.Context) error {
	c.mu.Lock()
	db := c.db
	c.mu.Unlock()

	if db == nil {
		return apperrors.Unavailable("ping", errors.New("not connected"))
	}
	if err := ping(ctx, db); err != nil {
		return apperrors.Unavailable("ping", err)
	}
	return nil
}

// Disconnect releases the connection. It is meant for shutdown only.
func (c *Connector) Disconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.db == nil {
		return nil
	}
	sqlDB, err := c.db.DB()
	c.db = nil
	if err != nil {
		return fmt.Errorf("failed to get database handle: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	log.Info().Msg("database disconnected")
	return nil
}

func ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return sqlDB.PingContext(ctx)
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
