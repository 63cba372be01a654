// Package export writes loaded logs and detected sequences to a DuckDB file
// for offline analysis.
package export

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/eif-viewer/backend/internal/models"
	"github.com/eif-viewer/backend/internal/parser"
	"github.com/marcboeker/go-duckdb"
)

var schema = []string{`
CREATE TABLE records (
	position  INTEGER PRIMARY KEY,
	line      INTEGER NOT NULL,
	raw       VARCHAR NOT NULL,
	ts        TIMESTAMP,
	subsystem VARCHAR,
	item      VARCHAR,
	signal    VARCHAR,
	value     VARCHAR
)`, `
CREATE TABLE sequences (
	item         VARCHAR NOT NULL,
	ordinal      INTEGER NOT NULL,
	start_ts     TIMESTAMP NOT NULL,
	end_ts       TIMESTAMP NOT NULL,
	record_count INTEGER NOT NULL
)`, `
CREATE TABLE sequence_positions (
	item     VARCHAR NOT NULL,
	ordinal  INTEGER NOT NULL,
	position INTEGER NOT NULL
)`,
}

// Summary describes a finished export.
type Summary struct {
	Path      string        `json:"path"`
	Records   int           `json:"records"`
	Sequences int           `json:"sequences"`
	Elapsed   time.Duration `json:"elapsed"`
}

// Exporter writes DuckDB files.
type Exporter struct {
	Threads int // DuckDB worker threads; 0 keeps the DuckDB default
}

// ToDuckDB writes records and sequences to a new DuckDB file at path using
// default settings. An existing file at path is replaced.
func ToDuckDB(ctx context.Context, path string, records []models.LogRecord, sequences map[string][]models.Sequence) (*Summary, error) {
	return (&Exporter{}).Write(ctx, path, records, sequences)
}

// Write writes records and sequences to a new DuckDB file at path.
func (e *Exporter) Write(ctx context.Context, path string, records []models.LogRecord, sequences map[string][]models.Sequence) (*Summary, error) {
	start := time.Now()
	fmt.Printf("[Export] Writing %d records to %s\n", len(records), path)

	for _, p := range []string{path, path + ".wal"} {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("removing existing export: %w", err)
		}
	}

	connector, err := duckdb.NewConnector(path, func(execer driver.ExecerContext) error {
		if e.Threads <= 0 {
			return nil
		}
		_, err := execer.ExecContext(ctx, fmt.Sprintf("PRAGMA threads=%d", e.Threads), nil)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create DuckDB connector: %w", err)
	}

	db := sql.OpenDB(connector)
	defer db.Close()

	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return nil, fmt.Errorf("failed to create tables: %w", err)
		}
	}

	conn, err := db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get connection: %w", err)
	}
	defer conn.Close()

	count := 0
	err = conn.Raw(func(driverConn any) error {
		dConn, ok := driverConn.(*duckdb.Conn)
		if !ok {
			return fmt.Errorf("failed to cast to duckdb.Conn")
		}
		if err := appendRecords(dConn, records); err != nil {
			return err
		}
		count, err = appendSequences(dConn, sequences)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("appender error: %w", err)
	}

	summary := &Summary{
		Path:      path,
		Records:   len(records),
		Sequences: count,
		Elapsed:   time.Since(start),
	}
	fmt.Printf("[Export] Complete: %d records, %d sequences in %v\n", summary.Records, summary.Sequences, summary.Elapsed)
	return summary, nil
}

func appendRecords(conn *duckdb.Conn, records []models.LogRecord) error {
	appender, err := duckdb.NewAppenderFromConn(conn, "", "records")
	if err != nil {
		return fmt.Errorf("failed to create records appender: %w", err)
	}
	defer appender.Close()

	for _, rec := range records {
		fields := parser.Extract(rec.Raw)

		var ts driver.Value
		if fields.Timestamp != nil {
			ts = *fields.Timestamp
		}
		var value driver.Value
		if fields.Value != models.ValueNone {
			value = string(fields.Value)
		}

		err := appender.AppendRow(
			int32(rec.Position),
			int32(rec.Line),
			rec.Raw,
			ts,
			nullable(fields.Subsystem),
			nullable(fields.Item),
			nullable(fields.Signal),
			value,
		)
		if err != nil {
			return fmt.Errorf("failed to append record %d: %w", rec.Position, err)
		}
	}

	return appender.Flush()
}

func appendSequences(conn *duckdb.Conn, sequences map[string][]models.Sequence) (int, error) {
	seqAppender, err := duckdb.NewAppenderFromConn(conn, "", "sequences")
	if err != nil {
		return 0, fmt.Errorf("failed to create sequences appender: %w", err)
	}
	defer seqAppender.Close()

	posAppender, err := duckdb.NewAppenderFromConn(conn, "", "sequence_positions")
	if err != nil {
		return 0, fmt.Errorf("failed to create positions appender: %w", err)
	}
	defer posAppender.Close()

	items := make([]string, 0, len(sequences))
	for item := range sequences {
		items = append(items, item)
	}
	sort.Strings(items)

	count := 0
	for _, item := range items {
		for i, seq := range sequences[item] {
			ordinal := int32(i + 1)
			if err := seqAppender.AppendRow(item, ordinal, seq.Start, seq.End, int32(len(seq.Positions))); err != nil {
				return count, fmt.Errorf("failed to append sequence %s #%d: %w", item, ordinal, err)
			}
			for _, pos := range seq.Positions {
				if err := posAppender.AppendRow(item, ordinal, int32(pos)); err != nil {
					return count, fmt.Errorf("failed to append position %d: %w", pos, err)
				}
			}
			count++
		}
	}

	if err := seqAppender.Flush(); err != nil {
		return count, err
	}
	return count, posAppender.Flush()
}

func nullable(s *string) driver.Value {
	if s == nil {
		return nil
	}
	return *s
}
