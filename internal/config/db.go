package config

import (
	"context"
	"fmt"
	"time"

	"recruitment_portal/internal/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DBConfig holds database connection parameters
type DBConfig struct {
	Host     string `yaml:"host" env:"DB_HOST"`
	Port     string `yaml:"port" env:"DB_PORT"`
	User     string `yaml:"user" env:"DB_USER"`
	Password string `yaml:"password" env:"DB_PASSWORD"`
	Name     string `yaml:"name" env:"DB_NAME"`
	SSLMode  string `yaml:"sslmode" env:"DB_SSLMODE"`
	URL      string `yaml:"url" env:"DATABASE_URL"` // overrides the discrete fields when set
	MaxConns int32  `yaml:"max_conns" env:"DB_MAX_CONNS"`
}

// DSN returns the connection string for pgx
func (c DBConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

const (
	connectAttempts = 5
	connectInterval = 5 * time.Second
)

// ConnectDB establishes a connection pool, retrying while the database comes up
func ConnectDB(ctx context.Context, cfg DBConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("invalid database configuration: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}

	var pool *pgxpool.Pool
	for i := 0; i < connectAttempts; i++ {
		pool, err = pgxpool.NewWithConfig(ctx, poolCfg)
		if err == nil {
			err = pool.Ping(ctx)
			if err == nil {
				logger.Info().Str("host", poolCfg.ConnConfig.Host).Msg("Connected to PostgreSQL")
				return pool, nil
			}
			pool.Close()
		}
		logger.Warn().Err(err).Int("attempt", i+1).Int("max_attempts", connectAttempts).
			Dur("retry_in", connectInterval).Msg("Failed to connect to database")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(connectInterval):
		}
	}
	return nil, fmt.Errorf("unable to connect to database after %d attempts: %w", connectAttempts, err)
}
