package audit

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/soccercentral/assistant/internal/config"
	"github.com/soccercentral/assistant/internal/storage"
)

const archivePrefix = "audit"

type parquetEvent struct {
	ID             int64  `parquet:"id"`
	AskedAtUnixMs  int64  `parquet:"asked_at_unix_ms"`
	TraceID        string `parquet:"trace_id"`
	Caller         string `parquet:"caller"`
	Question       string `parquet:"question"`
	Outcome        string `parquet:"outcome"`
	SQLQuery       string `parquet:"sql_query"`
	RejectCategory string `parquet:"reject_category"`
	RowCount       int32  `parquet:"row_count"`
	Success        bool   `parquet:"success"`
	DurationMS     int64  `parquet:"duration_ms"`
}

// encodeEventsToParquet serializes a batch of audit events.
func encodeEventsToParquet(events []Event) ([]byte, error) {
	if len(events) == 0 {
		return nil, fmt.Errorf("events are required")
	}
	rows := make([]parquetEvent, 0, len(events))
	for _, event := range events {
		rows = append(rows, parquetEvent{
			ID:             event.ID,
			AskedAtUnixMs:  event.AskedAt.UnixMilli(),
			TraceID:        event.TraceID,
			Caller:         event.Caller,
			Question:       event.Question,
			Outcome:        event.Outcome,
			SQLQuery:       event.SQLQuery,
			RejectCategory: event.RejectCategory,
			RowCount:       int32(event.RowCount),
			Success:        event.Success,
			DurationMS:     event.DurationMS,
		})
	}

	buf := bytes.NewBuffer(nil)
	writer := parquet.NewGenericWriter[parquetEvent](buf)
	if _, err := writer.Write(rows); err != nil {
		return nil, fmt.Errorf("write parquet rows: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close parquet writer: %w", err)
	}
	return buf.Bytes(), nil
}

// Archiver periodically moves aged audit rows into parquet files on the
// object store and prunes the oldest archives past the retention count.
type Archiver struct {
	recorder *PostgresRecorder
	store    storage.ObjectStore
	logger   *slog.Logger
	interval time.Duration
	batch    int
	keep     int
	now      func() time.Time
}

func NewArchiver(recorder *PostgresRecorder, store storage.ObjectStore, logger *slog.Logger, cfg config.AuditConfig) *Archiver {
	interval := cfg.ArchiveInterval
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	batch := cfg.ArchiveBatch
	if batch <= 0 {
		batch = 500
	}
	return &Archiver{
		recorder: recorder,
		store:    store,
		logger:   logger,
		interval: interval,
		batch:    batch,
		keep:     cfg.KeepArchives,
		now:      time.Now,
	}
}

// Run sweeps on the configured interval until the context ends.
func (a *Archiver) Run(ctx context.Context) {
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := a.Sweep(ctx); err != nil {
				a.logger.WarnContext(ctx, "audit_archive_sweep_failed", slog.String("error", err.Error()))
			}
		}
	}
}

// Sweep archives one batch of events older than the archive interval, then
// enforces retention. Rows are deleted only after the archive upload
// succeeds.
func (a *Archiver) Sweep(ctx context.Context) error {
	cutoff := a.now().UTC().Add(-a.interval)
	events, err := a.recorder.oldestBatch(ctx, cutoff, a.batch)
	if err != nil {
		return err
	}
	if len(events) > 0 {
		data, err := encodeEventsToParquet(events)
		if err != nil {
			return err
		}
		key := a.archiveKey(events)
		if _, err := a.store.Put(ctx, key, bytes.NewReader(data), int64(len(data)), storage.PutOptions{
			ContentType: "application/octet-stream",
		}); err != nil {
			return fmt.Errorf("audit: upload archive %q: %w", key, err)
		}
		if err := a.recorder.deleteBatch(ctx, events); err != nil {
			return err
		}
		a.logger.InfoContext(ctx, "audit_archive_written",
			slog.String("key", key),
			slog.Int("events", len(events)),
		)
	}
	return a.enforceRetention(ctx)
}

func (a *Archiver) archiveKey(events []Event) string {
	first := events[0]
	last := events[len(events)-1]
	return fmt.Sprintf("%s/%s/events-%d-%d.parquet",
		archivePrefix,
		first.AskedAt.UTC().Format("2006/01/02"),
		first.ID, last.ID,
	)
}

// enforceRetention deletes the oldest archives beyond the keep count.
func (a *Archiver) enforceRetention(ctx context.Context) error {
	if a.keep <= 0 {
		return nil
	}
	infos, err := a.store.List(ctx, archivePrefix)
	if err != nil {
		return fmt.Errorf("audit: list archives: %w", err)
	}
	excess := len(infos) - a.keep
	for i := 0; i < excess; i++ {
		if err := a.store.Delete(ctx, infos[i].Key); err != nil {
			return fmt.Errorf("audit: prune archive %q: %w", infos[i].Key, err)
		}
		a.logger.InfoContext(ctx, "audit_archive_pruned", slog.String("key", infos[i].Key))
	}
	return nil
}
