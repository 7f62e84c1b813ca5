package metrics

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	startTimeKey       = "metrics:start_time"
	slowQueryThreshold = 100 * time.Millisecond
)

// DatabaseMetricsCollector samples pool statistics and times every gorm
// statement through callbacks.
type DatabaseMetricsCollector struct {
	metrics *Metrics
	logger  *zap.Logger
	db      *gorm.DB
	sqlDB   *sql.DB
	ticker  *time.Ticker
	stopCh  chan struct{}
}

// NewDatabaseMetricsCollector reports pool stats for db. Query timing starts once
// RegisterCallbacks is called.
func NewDatabaseMetricsCollector(metrics *Metrics, logger *zap.Logger, db *gorm.DB) *DatabaseMetricsCollector {
	sqlDB, err := db.DB()
	if err != nil {
		logger.Error("Failed to get sql.DB from gorm.DB", zap.Error(err))
		metrics.RecordDBConnectionError()
	}

	return &DatabaseMetricsCollector{
		metrics: metrics,
		logger:  logger,
		db:      db,
		sqlDB:   sqlDB,
		stopCh:  make(chan struct{}),
	}
}

// RegisterCallbacks installs timing hooks around gorm's create, query, update
// and delete chains.
func (dmc *DatabaseMetricsCollector) RegisterCallbacks() error {
	cb := dmc.db.Callback()

	hooks := []struct {
		operation string
		before    func(name string, fn func(*gorm.DB)) error
		after     func(name string, fn func(*gorm.DB)) error
	}{
		{"insert", cb.Create().Before("gorm:create").Register, cb.Create().After("gorm:create").Register},
		{"select", cb.Query().Before("gorm:query").Register, cb.Query().After("gorm:query").Register},
		{"update", cb.Update().Before("gorm:update").Register, cb.Update().After("gorm:update").Register},
		{"delete", cb.Delete().Before("gorm:delete").Register, cb.Delete().After("gorm:delete").Register},
	}

	for _, h := range hooks {
		if err := h.before("metrics:before_"+h.operation, dmc.begin); err != nil {
			return err
		}
		if err := h.after("metrics:after_"+h.operation, dmc.finish(h.operation)); err != nil {
			return err
		}
	}

	return nil
}

func (dmc *DatabaseMetricsCollector) begin(db *gorm.DB) {
	db.InstanceSet(startTimeKey, time.Now())
}

func (dmc *DatabaseMetricsCollector) finish(operation string) func(*gorm.DB) {
	return func(db *gorm.DB) {
		v, ok := db.InstanceGet(startTimeKey)
		if !ok {
			return
		}
		start, ok := v.(time.Time)
		if !ok {
			return
		}

		duration := time.Since(start)
		status := queryStatus(db.Error)
		table := db.Statement.Table

		dmc.metrics.RecordDBQuery(operation, table, status, duration)

		if duration > slowQueryThreshold {
			dmc.logger.Warn("Slow database query",
				zap.String("operation", operation),
				zap.String("table", table),
				zap.String("status", status),
				zap.Duration("duration", duration),
			)
		}
	}
}

func queryStatus(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, gorm.ErrRecordNotFound):
		return "not_found"
	default:
		return "error"
	}
}

func (dmc *DatabaseMetricsCollector) Start(interval time.Duration) {
	if dmc.sqlDB == nil {
		dmc.logger.Warn("Cannot start database metrics collector: sqlDB is nil")
		return
	}

	dmc.ticker = time.NewTicker(interval)
	go dmc.collectLoop()
	dmc.logger.Info("Database metrics collector started", zap.Duration("interval", interval))
}

func (dmc *DatabaseMetricsCollector) Stop() {
	if dmc.ticker != nil {
		dmc.ticker.Stop()
	}
	close(dmc.stopCh)
	dmc.logger.Info("Database metrics collector stopped")
}

func (dmc *DatabaseMetricsCollector) collectLoop() {
	dmc.collect()

	for {
		select {
		case <-dmc.ticker.C:
			dmc.collect()
		case <-dmc.stopCh:
			return
		}
	}
}

func (dmc *DatabaseMetricsCollector) collect() {
	if dmc.sqlDB == nil || dmc.metrics == nil {
		return
	}

	stats := dmc.sqlDB.Stats()
	dmc.metrics.DBConnectionsInUse.Set(float64(stats.InUse))
	dmc.metrics.DBConnectionsIdle.Set(float64(stats.Idle))
}

// HealthCheck pings the database, counting failures as connection errors.
func (dmc *DatabaseMetricsCollector) HealthCheck(ctx context.Context) error {
	if dmc.sqlDB == nil {
		dmc.metrics.RecordDBConnectionError()
		return sql.ErrConnDone
	}

	if err := dmc.sqlDB.PingContext(ctx); err != nil {
		dmc.metrics.RecordDBConnectionError()
		return err
	}

	return nil
}
