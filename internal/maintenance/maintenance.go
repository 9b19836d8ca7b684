package maintenance

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"
)

// Status holds catalog maintenance status information.
type Status struct {
	DBFileSize   int64  `json:"db_file_size"`
	WALFileSize  int64  `json:"wal_file_size"`
	PageCount    int64  `json:"page_count"`
	PageSize     int64  `json:"page_size"`
	LastRunAt    string `json:"last_run_at,omitempty"`
	LastUpserted int    `json:"last_upserted"`
	LastRemoved  int    `json:"last_removed"`
	LastError    string `json:"last_error,omitempty"`
}

// Syncer reconciles the catalog with the metadata files on disk.
type Syncer interface {
	Sync(ctx context.Context) (upserted, removed int, err error)
}

// Service runs periodic catalog maintenance: a reconcile pass against the
// metadata directory, which picks up changes the watcher missed, followed by
// SQLite housekeeping.
type Service struct {
	db     *sql.DB
	dbPath string
	syncer Syncer
	logger *slog.Logger

	mu   sync.Mutex
	last Status
}

// NewService creates a maintenance service.
func NewService(db *sql.DB, dbPath string, syncer Syncer, logger *slog.Logger) *Service {
	return &Service{
		db:     db,
		dbPath: dbPath,
		syncer: syncer,
		logger: logger.With(slog.String("component", "maintenance")),
	}
}

// Status returns current database and last-run information.
func (s *Service) Status(ctx context.Context) (*Status, error) {
	s.mu.Lock()
	st := s.last
	s.mu.Unlock()

	if info, err := os.Stat(s.dbPath); err == nil {
		st.DBFileSize = info.Size()
	}
	if info, err := os.Stat(s.dbPath + "-wal"); err == nil {
		st.WALFileSize = info.Size()
	}

	if err := s.db.QueryRowContext(ctx, "PRAGMA page_count").Scan(&st.PageCount); err != nil {
		return nil, fmt.Errorf("reading page_count: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, "PRAGMA page_size").Scan(&st.PageSize); err != nil {
		return nil, fmt.Errorf("reading page_size: %w", err)
	}
	return &st, nil
}

// Optimize runs PRAGMA optimize followed by a WAL checkpoint.
func (s *Service) Optimize(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "PRAGMA optimize"); err != nil {
		return fmt.Errorf("PRAGMA optimize: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return fmt.Errorf("WAL checkpoint: %w", err)
	}
	return nil
}

// Run reconciles the catalog and then optimizes the database. The outcome is
// recorded for Status.
func (s *Service) Run(ctx context.Context) error {
	upserted, removed, err := s.syncer.Sync(ctx)
	if err == nil {
		err = s.Optimize(ctx)
	}

	s.mu.Lock()
	s.last = Status{
		LastRunAt:    time.Now().UTC().Format(time.RFC3339),
		LastUpserted: upserted,
		LastRemoved:  removed,
	}
	if err != nil {
		s.last.LastError = err.Error()
	}
	s.mu.Unlock()

	if err != nil {
		return err
	}
	s.logger.Info("maintenance complete",
		slog.Int("upserted", upserted),
		slog.Int("removed", removed))
	return nil
}

// StartScheduler runs maintenance on a fixed interval until the context is canceled.
func (s *Service) StartScheduler(ctx context.Context, interval time.Duration) {
	s.logger.Info("maintenance scheduler started",
		slog.String("interval", interval.String()))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("maintenance scheduler stopped")
			return
		case <-ticker.C:
			if err := s.Run(ctx); err != nil {
				s.logger.Error("scheduled maintenance failed", slog.Any("error", err))
			}
		}
	}
}
