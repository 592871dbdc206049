// Package database provides the MySQL or PostgreSQL connection used to dump
// live schemas.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strconv"
	"time"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver, registered as "pgx"

	"github.com/dbsmedya/erdsql/internal/config"
	"github.com/dbsmedya/erdsql/internal/logger"
)

// Manager owns a single connection pool.
type Manager struct {
	DB     *sql.DB
	config *config.DatabaseConfig
	log    *logger.Logger

	open       func(dsn string) (*sql.DB, error)
	maxRetries int
	backoff    time.Duration
}

// NewManager creates a manager for cfg. A nil log discards output.
func NewManager(cfg *config.DatabaseConfig, log *logger.Logger) *Manager {
	if log == nil {
		log = logger.NewNop()
	}
	return &Manager{
		config: cfg,
		log:    log,
		open: func(dsn string) (*sql.DB, error) {
			return sql.Open(DriverName(cfg), dsn)
		},
		maxRetries: 3,
		backoff:    time.Second,
	}
}

// Connect opens and verifies the connection.
func (m *Manager) Connect(ctx context.Context) error {
	db, err := m.connectWithRetry(ctx)
	if err != nil {
		return fmt.Errorf("failed to connect to %s:%d: %w", m.config.Host, m.config.Port, err)
	}
	m.DB = db
	return nil
}

// connectWithRetry attempts to connect with exponential backoff.
func (m *Manager) connectWithRetry(ctx context.Context) (*sql.DB, error) {
	var db *sql.DB
	var err error

	backoff := m.backoff
	for i := 0; i < m.maxRetries; i++ {
		db, err = m.connect()
		if err == nil {
			if pingErr := db.PingContext(ctx); pingErr == nil {
				m.log.Debugw("connected", "host", m.config.Host, "database", m.config.Database, "attempt", i+1)
				return db, nil
			} else {
				db.Close()
				err = pingErr
			}
		}

		if i < m.maxRetries-1 {
			m.log.Warnw("connection attempt failed", "attempt", i+1, "retry_in", backoff.String(), "error", err)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
				backoff *= 2
			}
		}
	}

	return nil, fmt.Errorf("failed after %d retries: %w", m.maxRetries, err)
}

// connect creates a database handle and configures its pool.
func (m *Manager) connect() (*sql.DB, error) {
	db, err := m.open(BuildDSN(m.config))
	if err != nil {
		return nil, err
	}

	if m.config.MaxConnections > 0 {
		db.SetMaxOpenConns(m.config.MaxConnections)
	}
	if m.config.MaxIdleConnections > 0 {
		db.SetMaxIdleConns(m.config.MaxIdleConnections)
	}
	db.SetConnMaxLifetime(10 * time.Minute)

	return db, nil
}

// IsPostgres reports whether cfg selects the PostgreSQL driver.
func IsPostgres(cfg *config.DatabaseConfig) bool {
	return cfg.Driver == "postgres"
}

// DriverName returns the database/sql driver name for cfg.
func DriverName(cfg *config.DatabaseConfig) string {
	if IsPostgres(cfg) {
		return "pgx"
	}
	return "mysql"
}

// BuildDSN constructs the DSN for the configured driver.
func BuildDSN(cfg *config.DatabaseConfig) string {
	if IsPostgres(cfg) {
		return buildPostgresDSN(cfg)
	}
	return buildMySQLDSN(cfg)
}

func buildMySQLDSN(cfg *config.DatabaseConfig) string {
	// Format: user:password@tcp(host:port)/database?params
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
	)

	if cfg.Database != "" {
		dsn += cfg.Database
	}

	params := "?parseTime=true"
	switch cfg.TLS {
	case "disable":
		params += "&tls=false"
	case "required":
		params += "&tls=true"
	case "preferred", "":
		params += "&tls=preferred"
	}

	return dsn + params
}

// buildPostgresDSN builds a postgres:// URL. Credentials are escaped.
func buildPostgresDSN(cfg *config.DatabaseConfig) string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(cfg.User, cfg.Password),
		Host:   cfg.Host + ":" + strconv.Itoa(cfg.Port),
		Path:   "/" + cfg.Database,
	}

	q := url.Values{}
	switch cfg.TLS {
	case "disable":
		q.Set("sslmode", "disable")
	case "required":
		q.Set("sslmode", "require")
	case "preferred", "":
		q.Set("sslmode", "prefer")
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// Close closes the connection if one is open.
func (m *Manager) Close() error {
	if m.DB == nil {
		return nil
	}
	if err := m.DB.Close(); err != nil {
		return fmt.Errorf("close: %w", err)
	}
	m.DB = nil
	return nil
}

// Ping verifies the connection is alive.
func (m *Manager) Ping(ctx context.Context) error {
	if m.DB == nil {
		return fmt.Errorf("ping failed: not connected")
	}
	if err := m.DB.PingContext(ctx); err != nil {
		return fmt.Errorf("ping failed: %w", err)
	}
	return nil
}
