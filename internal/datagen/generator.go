package datagen

import (
	"context"
	"fmt"
	"strings"

	"github.com/pgEdge/pgedge-dwload/internal/db"
	"github.com/pgEdge/pgedge-dwload/internal/logging"
	"github.com/pgEdge/pgedge-dwload/internal/schema"
	"github.com/pgEdge/pgedge-dwload/internal/sqlgen"
)

// BatchInsertConfig configures batch insert behavior.
type BatchInsertConfig struct {
	// BatchSize is the number of rows per batch insert.
	BatchSize int

	// ProgressInterval is how often to log progress (in rows).
	ProgressInterval int64
}

// DefaultBatchConfig returns default batch insert configuration.
func DefaultBatchConfig() BatchInsertConfig {
	return BatchInsertConfig{
		BatchSize:        500,
		ProgressInterval: 10000,
	}
}

// ProgressReporter tracks and reports data generation progress.
type ProgressReporter struct {
	tableName        string
	totalRows        int64
	currentRow       int64
	progressInterval int64
}

// NewProgressReporter creates a new progress reporter.
func NewProgressReporter(tableName string, totalRows int64, interval int64) *ProgressReporter {
	return &ProgressReporter{
		tableName:        tableName,
		totalRows:        totalRows,
		progressInterval: interval,
	}
}

// Update updates the progress and logs if necessary.
func (p *ProgressReporter) Update(rowsInserted int64) {
	oldRow := p.currentRow
	p.currentRow += rowsInserted

	// Check if we crossed a progress interval
	if p.progressInterval > 0 && p.currentRow/p.progressInterval > oldRow/p.progressInterval {
		pct := float64(p.currentRow) / float64(p.totalRows) * 100
		logging.Info().
			Str("table", p.tableName).
			Int64("rows", p.currentRow).
			Int64("total", p.totalRows).
			Float64("percent", pct).
			Msg("Seeding data")
	}
}

// Done logs completion.
func (p *ProgressReporter) Done() {
	logging.Debug().
		Str("table", p.tableName).
		Int64("rows", p.currentRow).
		Msg("Table complete")
}

// Seeder creates the source schema and fills it with a dataset.
type Seeder struct {
	db      db.DB
	dialect sqlgen.Dialect
	schema  string
	batch   BatchInsertConfig
}

// NewSeeder returns a seeder writing to schemaName.
func NewSeeder(database db.DB, dialect sqlgen.Dialect, schemaName string, batch BatchInsertConfig) *Seeder {
	if batch.BatchSize < 1 {
		batch.BatchSize = DefaultBatchConfig().BatchSize
	}
	return &Seeder{db: database, dialect: dialect, schema: schemaName, batch: batch}
}

// CreateSchema creates the source schema and its tables if absent.
func (s *Seeder) CreateSchema(ctx context.Context) error {
	ddl, err := schema.Render(s.dialect, schema.Source, s.schema)
	if err != nil {
		return err
	}
	n, err := schema.Apply(ctx, s.db, ddl)
	if err != nil {
		return fmt.Errorf("failed to create source schema: %w", err)
	}
	logging.Debug().Str("schema", s.schema).Int("statements", n).Msg("Source schema ready")
	return nil
}

// Seed replaces the contents of the source tables with ds in a single
// transaction.
func (s *Seeder) Seed(ctx context.Context, ds *Dataset) error {
	return s.db.InTx(ctx, func(tx db.Execer) error {
		for i := len(ds.Tables) - 1; i >= 0; i-- {
			t := ds.Tables[i]
			if _, err := tx.Exec(ctx, "DELETE FROM "+s.table(t.Name)); err != nil {
				return fmt.Errorf("failed to clear %s: %w", t.Name, err)
			}
		}
		for _, t := range ds.Tables {
			if err := s.insert(ctx, tx, t); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Seeder) table(name string) string {
	return sqlgen.Qualify(s.dialect, s.schema, name)
}

func (s *Seeder) insert(ctx context.Context, tx db.Execer, t *Table) error {
	progress := NewProgressReporter(t.Name, int64(len(t.Rows)), s.batch.ProgressInterval)
	prefix := fmt.Sprintf("INSERT INTO %s (%s) ", s.table(t.Name), strings.Join(t.Columns, ", "))

	for start := 0; start < len(t.Rows); start += s.batch.BatchSize {
		end := min(start+s.batch.BatchSize, len(t.Rows))
		rows := t.Rows[start:end]

		args := make([]any, 0, len(rows)*len(t.Columns))
		for _, r := range rows {
			args = append(args, r...)
		}
		query := prefix + sqlgen.Values(s.dialect, len(rows), len(t.Columns))
		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to insert into %s: %w", t.Name, err)
		}
		progress.Update(int64(len(rows)))
	}
	progress.Done()
	return nil
}
