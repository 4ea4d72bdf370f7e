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

	"github.com/pgEdge/pgedge-dwload/internal/calendar"
	"github.com/pgEdge/pgedge-dwload/internal/logging"
	"github.com/pgEdge/pgedge-dwload/internal/nullsafe"
)

// maxReported bounds the duplicate keys listed per dimension.
const maxReported = 5

// Check is the outcome of one reconciliation check.
type Check struct {
	Name   string
	Passed bool
	Detail string
}

// Report collects the checks of one verification.
type Report struct {
	Checks []Check
}

// OK reports whether every check passed.
func (r *Report) OK() bool {
	for _, c := range r.Checks {
		if !c.Passed {
			return false
		}
	}
	return true
}

// Failed returns the checks that did not pass.
func (r *Report) Failed() []Check {
	var failed []Check
	for _, c := range r.Checks {
		if !c.Passed {
			failed = append(failed, c)
		}
	}
	return failed
}

func (r *Report) add(c Check) {
	r.Checks = append(r.Checks, c)
	if c.Passed {
		logging.Debug().Str("check", c.Name).Str("detail", c.Detail).Msg("Check passed")
		return
	}
	logging.Warn().Str("check", c.Name).Str("detail", c.Detail).Msg("Check failed")
}

// Verifier audits a loaded warehouse against its source: every eligible
// loan has its fact rows, no dimension holds a natural key twice, and the
// calendar covers the source date span.
type Verifier struct {
	env *Env
}

// NewVerifier returns a verifier over env.
func NewVerifier(env *Env) *Verifier {
	return &Verifier{env: env}
}

// Run executes every check. An error means a check could not be
// evaluated; failed checks are reported in the Report.
func (v *Verifier) Run(ctx context.Context) (*Report, error) {
	report := &Report{}

	facts := []struct {
		table string
		from  string
	}{
		{"fact_originations", fmt.Sprintf("%s l JOIN %s a ON a.application_id = l.application_id",
			v.env.Src("loan"), v.env.Src("application"))},
		{"fact_performance_snapshot", v.env.Src("loan") + " l"},
	}
	for _, f := range facts {
		c, err := v.factCompleteness(ctx, f.table, f.from)
		if err != nil {
			return nil, err
		}
		report.add(c)
	}

	for _, dim := range Dimensions() {
		c, err := v.dimensionUniqueness(ctx, dim)
		if err != nil {
			return nil, err
		}
		report.add(c)
	}

	c, err := v.calendarCoverage(ctx)
	if err != nil {
		return nil, err
	}
	report.add(c)

	return report, nil
}

func (v *Verifier) factCompleteness(ctx context.Context, table, from string) (Check, error) {
	query := fmt.Sprintf(
		"SELECT COUNT(*), COUNT(f.loan_id) FROM %s LEFT JOIN %s f ON f.loan_id = l.loan_id",
		from, v.env.DW(table))

	var expected, present int64
	if err := v.env.DB.QueryRow(ctx, query).Scan(&expected, &present); err != nil {
		return Check{}, fmt.Errorf("failed to count %s: %w", table, err)
	}

	missing := expected - present
	return Check{
		Name:   table + " completeness",
		Passed: missing == 0,
		Detail: fmt.Sprintf("%d source loans, %d missing", expected, missing),
	}, nil
}

func (v *Verifier) dimensionUniqueness(ctx context.Context, dim *Dimension) (Check, error) {
	cols := dim.NaturalKey()
	exprs := make([]string, len(cols))
	for i, c := range cols {
		exprs[i] = v.env.Dialect.CastText(c)
	}
	query := fmt.Sprintf("SELECT %s FROM %s", strings.Join(exprs, ", "), v.env.DW(dim.Table))

	rows, err := v.env.DB.Query(ctx, query)
	if err != nil {
		return Check{}, fmt.Errorf("failed to read %s: %w", dim.Table, err)
	}
	defer rows.Close()

	index := nullsafe.NewIndex()
	for rows.Next() {
		members := make([]*string, len(cols))
		dest := make([]any, len(cols))
		for i := range members {
			dest[i] = &members[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return Check{}, fmt.Errorf("failed to scan %s: %w", dim.Table, err)
		}
		index.Add(nullsafe.NewKey(members...))
	}
	if err := rows.Err(); err != nil {
		return Check{}, fmt.Errorf("failed to read %s: %w", dim.Table, err)
	}

	dups := index.Duplicates()
	detail := fmt.Sprintf("%d distinct natural keys", index.Len())
	if len(dups) > 0 {
		shown := make([]string, 0, maxReported)
		for i, d := range dups {
			if i == maxReported {
				break
			}
			shown = append(shown, fmt.Sprintf("%s x%d", d.Key, d.Count))
		}
		detail = fmt.Sprintf("%d duplicated natural keys: %s", len(dups), strings.Join(shown, ", "))
	}

	return Check{
		Name:   dim.Table + " uniqueness",
		Passed: len(dups) == 0,
		Detail: detail,
	}, nil
}

func (v *Verifier) calendarCoverage(ctx context.Context) (Check, error) {
	span, err := ReadSpan(ctx, v.env, v.env.DB)
	if err != nil {
		return Check{}, err
	}

	d := v.env.Dialect
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE date_id BETWEEN %s AND %s",
		v.env.DW("dim_date"), d.Placeholder(1), d.Placeholder(2))

	var present int64
	err = v.env.DB.QueryRow(ctx, query,
		calendar.Identity(span.Start), calendar.Identity(span.End)).Scan(&present)
	if err != nil {
		return Check{}, fmt.Errorf("failed to count dim_date: %w", err)
	}

	expected := int64(span.Len())
	return Check{
		Name:   "dim_date coverage",
		Passed: present == expected,
		Detail: fmt.Sprintf("%s: %d of %d days", span, present, expected),
	}, nil
}
