package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	"github.com/armadio/wardrobe-ai-gateway/internal/core"
)

// MySQLCache is a MySQL implementation of the AnalysisCache interface
type MySQLCache struct {
	db          *sql.DB
	logger      *zap.Logger
	cleanupFreq time.Duration
	stopCh      chan struct{}
}

// NewMySQLCache creates a new MySQL cache. The DSN must enable parseTime.
func NewMySQLCache(dsn string, logger *zap.Logger, cleanupFreq time.Duration) (*MySQLCache, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL connection: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping MySQL: %w", err)
	}

	// Create table if it doesn't exist
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS analysis_cache (
			content_key VARCHAR(128) PRIMARY KEY,
			payload TEXT NOT NULL,
			created_at TIMESTAMP NULL,
			expires_at TIMESTAMP NULL,
			INDEX idx_expires_at (expires_at)
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	cache := &MySQLCache{
		db:          db,
		logger:      logger,
		cleanupFreq: cleanupFreq,
		stopCh:      make(chan struct{}),
	}

	// Start background cleanup
	go cache.startCleanupTask()

	return cache, nil
}

// Get retrieves a cached analysis by content key
func (c *MySQLCache) Get(ctx context.Context, key string) (*core.GarmentAnalysis, bool, error) {
	var payload string

	err := c.db.QueryRowContext(ctx, `
		SELECT payload
		FROM analysis_cache
		WHERE content_key = ? AND expires_at > ?
	`, key, time.Now().UTC()).Scan(&payload)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to query cache: %w", err)
	}

	var analysis core.GarmentAnalysis
	if err := json.Unmarshal([]byte(payload), &analysis); err != nil {
		c.logger.Error("Discarding corrupt cache entry",
			zap.Error(err),
			zap.String("key", key))
		return nil, false, nil
	}

	return &analysis, true, nil
}

// Set stores an analysis under the content key
func (c *MySQLCache) Set(ctx context.Context, key string, analysis *core.GarmentAnalysis, ttl time.Duration) error {
	payload, err := json.Marshal(analysis)
	if err != nil {
		return fmt.Errorf("failed to serialize analysis: %w", err)
	}

	now := time.Now().UTC()
	_, err = c.db.ExecContext(ctx, `
		INSERT INTO analysis_cache (content_key, payload, created_at, expires_at)
		VALUES (?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE payload = VALUES(payload), expires_at = VALUES(expires_at)
	`, key, string(payload), now, now.Add(ttl))
	if err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}

	return nil
}

// Cleanup removes expired entries
func (c *MySQLCache) Cleanup(ctx context.Context) error {
	result, err := c.db.ExecContext(ctx, `
		DELETE FROM analysis_cache WHERE expires_at <= ?
	`, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to clean up cache: %w", err)
	}

	if count, err := result.RowsAffected(); err == nil {
		c.logger.Debug("Cleaned up expired cache entries", zap.Int64("expired_count", count))
	}
	return nil
}

// startCleanupTask starts a background task to clean up expired entries
func (c *MySQLCache) startCleanupTask() {
	ticker := time.NewTicker(c.cleanupFreq)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := c.Cleanup(context.Background()); err != nil {
				c.logger.Error("Failed to clean up cache", zap.Error(err))
			}
		case <-c.stopCh:
			return
		}
	}
}

// Stop stops the background cleanup task and closes the connection pool
func (c *MySQLCache) Stop() {
	close(c.stopCh)
	if err := c.db.Close(); err != nil {
		c.logger.Error("Failed to close MySQL connection", zap.Error(err))
	}
}
