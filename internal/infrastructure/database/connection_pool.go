package database

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"noticeboard-http-service/internal/infrastructure/config"
)

// ConnectionPool wraps the gorm handle together with its pool settings.
type ConnectionPool struct {
	DB              *gorm.DB
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration

	log *zap.Logger
}

// NewConnectionPool opens the MySQL database described by cfg and configures its pool.
func NewConnectionPool(cfg *config.Config, log *zap.Logger) (*ConnectionPool, error) {
	logLevel := logger.Warn
	if cfg.IsLocal() {
		logLevel = logger.Info
	}

	db, err := gorm.Open(mysql.Open(cfg.GetDSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, err
	}

	pool := NewConnectionPoolFromDB(db, log)
	if err := pool.ConfigurePool(); err != nil {
		return nil, err
	}
	return pool, nil
}

// NewConnectionPoolFromDB wraps an already opened handle with the default pool settings.
func NewConnectionPoolFromDB(db *gorm.DB, log *zap.Logger) *ConnectionPool {
	return &ConnectionPool{
		DB:              db,
		MaxIdleConns:    10,
		MaxOpenConns:    100,
		ConnMaxLifetime: time.Hour,
		ConnMaxIdleTime: 30 * time.Minute,
		log:             log,
	}
}

// ConfigurePool applies the pool settings and pings the database.
func (p *ConnectionPool) ConfigurePool() error {
	sqlDB, err := p.DB.DB()
	if err != nil {
		return err
	}

	sqlDB.SetMaxIdleConns(p.MaxIdleConns)
	sqlDB.SetMaxOpenConns(p.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(p.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(p.ConnMaxIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return err
	}

	p.log.Info("database pool configured",
		zap.Int("max_idle_conns", p.MaxIdleConns),
		zap.Int("max_open_conns", p.MaxOpenConns))
	return nil
}

// Stats returns the driver pool statistics in a loggable form.
func (p *ConnectionPool) Stats() (map[string]interface{}, error) {
	sqlDB, err := p.DB.DB()
	if err != nil {
		return nil, err
	}

	stats := sqlDB.Stats()
	return map[string]interface{}{
		"max_open_connections": stats.MaxOpenConnections,
		"open_connections":     stats.OpenConnections,
		"in_use":               stats.InUse,
		"idle":                 stats.Idle,
		"wait_count":           stats.WaitCount,
		"wait_duration":        stats.WaitDuration.String(),
		"max_idle_closed":      stats.MaxIdleClosed,
		"max_lifetime_closed":  stats.MaxLifetimeClosed,
	}, nil
}

func (p *ConnectionPool) Close() error {
	sqlDB, err := p.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// HealthCheck pings the database with a short timeout.
func (p *ConnectionPool) HealthCheck(ctx context.Context) error {
	sqlDB, err := p.DB.DB()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return sqlDB.PingContext(ctx)
}

func (p *ConnectionPool) GetDB() *gorm.DB {
	return p.DB
}
