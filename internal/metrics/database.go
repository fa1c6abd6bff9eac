package metrics

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DatabaseCollector samples connection pool statistics into the DB gauges.
type DatabaseCollector struct {
	metrics *Metrics
	logger  *zap.Logger
	sqlDB   *sql.DB
}

func NewDatabaseCollector(metrics *Metrics, logger *zap.Logger, db *gorm.DB) *DatabaseCollector {
	sqlDB, err := db.DB()
	if err != nil {
		logger.Error("Failed to get sql.DB from gorm.DB", zap.Error(err))
		metrics.RecordDBConnectionError()
	}

	return &DatabaseCollector{metrics: metrics, logger: logger, sqlDB: sqlDB}
}

// Run samples every interval until ctx is cancelled.
func (c *DatabaseCollector) Run(ctx context.Context, interval time.Duration) {
	if c.sqlDB == nil {
		c.logger.Warn("Cannot start database metrics collector: sqlDB is nil")
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	c.collect()
	for {
		select {
		case <-ticker.C:
			c.collect()
		case <-ctx.Done():
			return
		}
	}
}

func (c *DatabaseCollector) collect() {
	stats := c.sqlDB.Stats()

	c.metrics.DBConnectionsInUse.Set(float64(stats.InUse))
	c.metrics.DBConnectionsIdle.Set(float64(stats.Idle))

	c.logger.Debug("Database connection stats",
		zap.Int("openConnections", stats.OpenConnections),
		zap.Int("inUse", stats.InUse),
		zap.Int("idle", stats.Idle),
		zap.Int64("waitCount", stats.WaitCount),
		zap.Duration("waitDuration", stats.WaitDuration),
	)
}
