//-------------------------------------------------------------------------
//
// pgEdge Data Warehouse Loader
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package etl

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pgEdge/pgedge-dwload/internal/calendar"
	"github.com/pgEdge/pgedge-dwload/internal/db"
	"github.com/pgEdge/pgedge-dwload/internal/logging"
	"github.com/pgEdge/pgedge-dwload/internal/sqlgen"
)

// DateColumn is a source date that facts turn into a calendar identity.
type DateColumn struct {
	Table  string
	Column string
}

// DateColumns lists every source date a fact references. The calendar
// must cover all of them.
var DateColumns = []DateColumn{
	{"application", "application_date"},
	{"loan", "decision_date"},
	{"payment_status_snapshot", "last_pymnt_d"},
	{"payment_status_snapshot", "next_pymnt_d"},
	{"settlement_case", "settlement_date"},
	{"hardship_case", "hardship_start_date"},
	{"hardship_case", "hardship_end_date"},
	{"hardship_case", "payment_plan_start_date"},
}

// CalendarGenerator fills dim_date with one row per day between the
// earliest and latest source date.
type CalendarGenerator struct {
	env *Env
}

// NewCalendarGenerator returns the calendar stage.
func NewCalendarGenerator(env *Env) *CalendarGenerator {
	return &CalendarGenerator{env: env}
}

// Name returns the stage name.
func (g *CalendarGenerator) Name() string { return StageCalendar }

// Description returns a short description of the stage.
func (g *CalendarGenerator) Description() string {
	return "Insert one dim_date row per day of the source date span"
}

// SpanQuery renders the query returning the global minimum and maximum
// source date.
func SpanQuery(env *Env) string {
	legs := make([]string, len(DateColumns))
	for i, dc := range DateColumns {
		legs[i] = fmt.Sprintf("SELECT MIN(%s) AS min_d, MAX(%s) AS max_d FROM %s",
			dc.Column, dc.Column, env.Src(dc.Table))
	}
	return "SELECT MIN(min_d), MAX(max_d) FROM (" + strings.Join(legs, " UNION ALL ") + ") spans"
}

// ReadSpan returns the span the calendar must cover, falling back to the
// default span when the source holds no dates.
func ReadSpan(ctx context.Context, env *Env, ex db.Execer) (calendar.Span, error) {
	var start, end *time.Time
	if err := ex.QueryRow(ctx, SpanQuery(env)).Scan(&start, &end); err != nil {
		return calendar.Span{}, fmt.Errorf("failed to read source date span: %w", err)
	}
	return calendar.NewSpan(start, end), nil
}

// Run generates and inserts the calendar rows in batches.
func (g *CalendarGenerator) Run(ctx context.Context, tx db.Execer) (int64, error) {
	log := logging.Stage(StageCalendar)

	span, err := ReadSpan(ctx, g.env, tx)
	if err != nil {
		return 0, err
	}
	log.Info().Str("span", span.String()).Int("days", span.Len()).Msg("Populating dim_date")

	batchSize := g.env.CalendarBatchSize
	batch := make([]calendar.Day, 0, batchSize)
	var total int64

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := g.insert(ctx, tx, batch)
		if err != nil {
			return err
		}
		total += n
		batch = batch[:0]
		return nil
	}

	err = span.Each(func(d calendar.Day) error {
		batch = append(batch, d)
		if len(batch) < batchSize {
			return nil
		}
		return flush()
	})
	if err == nil {
		err = flush()
	}
	if err != nil {
		return total, fmt.Errorf("failed to load dim_date: %w", err)
	}

	return total, nil
}

func (g *CalendarGenerator) insert(ctx context.Context, tx db.Execer, days []calendar.Day) (int64, error) {
	d := g.env.Dialect
	query := d.InsertIgnore(g.env.DW("dim_date"), calendar.Columns,
		sqlgen.Values(d, len(days), len(calendar.Columns)))

	args := make([]any, 0, len(days)*len(calendar.Columns))
	for _, day := range days {
		args = append(args, day.Values()...)
	}
	return tx.Exec(ctx, query, args...)
}
