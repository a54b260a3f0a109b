package pii

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"time"

	_ "github.com/lib/pq"

	"github.com/quanterra/finassist/config"
)

// AuditStore persists PII detection events for compliance reporting. Only
// the entity type, severity and content hash are stored - never the
// original span or the surrounding text.
type AuditStore interface {
	// RecordDetection stores one detection event.
	RecordDetection(ctx context.Context, sessionID string, entity Entity) error

	// CountsByType returns the number of stored detections per PII type.
	CountsByType(ctx context.Context) (map[string]int64, error)

	// CleanupOldEvents removes events older than the given duration.
	CleanupOldEvents(ctx context.Context, olderThan time.Duration) (int64, error)

	// Close releases the underlying resources.
	Close() error
}

// PostgresAuditStore implements AuditStore on PostgreSQL.
type PostgresAuditStore struct {
	db *sql.DB
}

// NewPostgresAuditStore opens the connection pool and creates the events
// table when missing.
func NewPostgresAuditStore(cfg config.DatabaseConfig) (*PostgresAuditStore, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.Username, cfg.Password, cfg.Database, cfg.SSLMode)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.MaxLifetime) * time.Second)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := createTableIfNotExists(db); err != nil {
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	return &PostgresAuditStore{db: db}, nil
}

func createTableIfNotExists(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS pii_audit_events (
		id SERIAL PRIMARY KEY,
		session_id VARCHAR(100) NOT NULL,
		pii_type VARCHAR(50) NOT NULL,
		severity VARCHAR(20) NOT NULL,
		content_hash CHAR(64) NOT NULL,
		detected_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_pii_audit_session ON pii_audit_events(session_id);
	CREATE INDEX IF NOT EXISTS idx_pii_audit_type ON pii_audit_events(pii_type);
	CREATE INDEX IF NOT EXISTS idx_pii_audit_detected_at ON pii_audit_events(detected_at);
	`

	_, err := db.Exec(query)
	return err
}

// RecordDetection stores one detection event.
func (p *PostgresAuditStore) RecordDetection(ctx context.Context, sessionID string, entity Entity) error {
	query := `
	INSERT INTO pii_audit_events (session_id, pii_type, severity, content_hash, detected_at)
	VALUES ($1, $2, $3, $4, NOW())
	`

	_, err := p.db.ExecContext(ctx, query, sessionID, string(entity.Type), string(entity.Severity), entity.Hash)
	return err
}

// CountsByType returns the number of stored detections per PII type.
func (p *PostgresAuditStore) CountsByType(ctx context.Context) (map[string]int64, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT pii_type, COUNT(*) FROM pii_audit_events GROUP BY pii_type`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var piiType string
		var count int64
		if err := rows.Scan(&piiType, &count); err != nil {
			return nil, err
		}
		counts[piiType] = count
	}
	return counts, rows.Err()
}

// CleanupOldEvents removes events older than the given duration.
func (p *PostgresAuditStore) CleanupOldEvents(ctx context.Context, olderThan time.Duration) (int64, error) {
	query := fmt.Sprintf(
		`DELETE FROM pii_audit_events WHERE detected_at < NOW() - INTERVAL '%d seconds'`,
		int(olderThan.Seconds()))

	result, err := p.db.ExecContext(ctx, query)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// Close closes the database connection.
func (p *PostgresAuditStore) Close() error {
	return p.db.Close()
}

type auditEvent struct {
	sessionID  string
	piiType    string
	severity   string
	hash       string
	detectedAt time.Time
}

// InMemoryAuditStore implements AuditStore in process memory, used when
// the database is disabled.
type InMemoryAuditStore struct {
	mu     sync.Mutex
	events []auditEvent
}

// NewInMemoryAuditStore creates an empty in-memory audit store.
func NewInMemoryAuditStore() *InMemoryAuditStore {
	return &InMemoryAuditStore{}
}

// RecordDetection stores one detection event in memory.
func (s *InMemoryAuditStore) RecordDetection(_ context.Context, sessionID string, entity Entity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, auditEvent{
		sessionID:  sessionID,
		piiType:    string(entity.Type),
		severity:   string(entity.Severity),
		hash:       entity.Hash,
		detectedAt: time.Now(),
	})
	return nil
}

// CountsByType returns the number of stored detections per PII type.
func (s *InMemoryAuditStore) CountsByType(_ context.Context) (map[string]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	counts := make(map[string]int64)
	for _, e := range s.events {
		counts[e.piiType]++
	}
	return counts, nil
}

// CleanupOldEvents removes events older than the given duration.
func (s *InMemoryAuditStore) CleanupOldEvents(_ context.Context, olderThan time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := time.Now().Add(-olderThan)
	kept := s.events[:0]
	var removed int64
	for _, e := range s.events {
		if e.detectedAt.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	s.events = kept
	return removed, nil
}

// Close is a no-op for in-memory storage.
func (s *InMemoryAuditStore) Close() error {
	return nil
}

// RunCleanup removes audit events older than the retention window at the
// given interval. It blocks until ctx is cancelled; callers run it in its
// own goroutine.
func RunCleanup(ctx context.Context, store AuditStore, interval, retention time.Duration, log *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := store.CleanupOldEvents(ctx, retention)
			if err != nil {
				log.Error("audit cleanup failed", "error", err)
				continue
			}
			if removed > 0 {
				log.Info("expired audit events removed", "count", removed)
			}
		}
	}
}
