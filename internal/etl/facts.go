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

	"github.com/pgEdge/pgedge-dwload/internal/db"
	"github.com/pgEdge/pgedge-dwload/internal/logging"
	"github.com/pgEdge/pgedge-dwload/internal/sqlgen"
)

// source is a source table joined into a fact query.
type source struct {
	table string
	alias string
	// on is the join condition; the first source has none.
	on    string
	inner bool
}

// keyRef resolves a dimension from the source row aliased from.
type keyRef struct {
	dim  *Dimension
	from string
}

// dateRef turns a source date into a calendar identity column.
type dateRef struct {
	col  string
	expr string
}

// measure copies a source column verbatim.
type measure struct {
	from string
	col  string
}

// factSpec describes one fact table load. The first source fixes the
// grain: one fact row per row of it.
type factSpec struct {
	table    string
	key      string
	ids      []measure
	sources  []source
	dates    []dateRef
	keys     []keyRef
	measures []measure
}

// FactLoader fully replaces one fact row per loan.
type FactLoader struct {
	env      *Env
	resolver *Resolver
	stage    string
	desc     string
	spec     factSpec
}

// Name returns the stage name.
func (l *FactLoader) Name() string { return l.stage }

// Description returns a short description of the stage.
func (l *FactLoader) Description() string { return l.desc }

// Table returns the fact table loaded.
func (l *FactLoader) Table() string { return l.spec.table }

// Columns returns the fact columns written, in statement order.
func (l *FactLoader) Columns() []string {
	return l.query().columns()
}

// Statement renders the full-replace statement.
func (l *FactLoader) Statement() string {
	return sqlgen.ReplaceFrom(l.env.Dialect, l.env.DW(l.Table()), l.Columns(), []string{l.spec.key}, l.query().String())
}

func (l *FactLoader) query() *selectQuery {
	spec := l.spec
	root := spec.sources[0]
	q := newSelect(fmt.Sprintf("%s %s", l.env.Src(root.table), root.alias))

	for _, s := range spec.sources[1:] {
		kind := "LEFT JOIN"
		if s.inner {
			kind = "JOIN"
		}
		q.join(fmt.Sprintf("%s %s %s ON %s", kind, l.env.Src(s.table), s.alias, s.on))
	}

	for _, id := range spec.ids {
		q.sel(id.col, id.from+"."+id.col)
	}
	for _, dr := range spec.dates {
		q.sel(dr.col, l.env.Dialect.DateKey(dr.expr))
	}
	for _, k := range spec.keys {
		l.resolver.Bind(q, k.dim, k.from)
	}
	for _, m := range spec.measures {
		q.sel(m.col, m.from+"."+m.col)
	}
	return q
}

// Run replaces the fact rows.
func (l *FactLoader) Run(ctx context.Context, tx db.Execer) (int64, error) {
	n, err := tx.Exec(ctx, l.Statement())
	if err != nil {
		return 0, fmt.Errorf("failed to load %s: %w", l.Table(), err)
	}
	logging.Stage(l.stage).Debug().Str("table", l.Table()).Int64("rows", n).Msg("Facts loaded")
	return n, nil
}

// NewOriginationLoader returns the fact_originations stage: one row per
// loan with an application.
func NewOriginationLoader(env *Env) *FactLoader {
	return &FactLoader{
		env:      env,
		resolver: NewResolver(env),
		stage:    StageOriginations,
		desc:     "Replace one fact_originations row per loan",
		spec: factSpec{
			table: "fact_originations",
			key:   "loan_id",
			ids:   []measure{{"l", "loan_id"}, {"a", "application_id"}},
			sources: []source{
				{table: "loan", alias: "l"},
				{table: "application", alias: "a", on: "a.application_id = l.application_id", inner: true},
				{table: "loan_terms", alias: "lt", on: "lt.loan_id = l.loan_id"},
				{table: "applicant_financials_snapshot", alias: "af", on: "af.application_id = a.application_id"},
				{table: "credit_history_snapshot", alias: "ch", on: "ch.application_id = a.application_id"},
				{table: "employment", alias: "e", on: "e.application_id = a.application_id"},
				{table: "application_address", alias: "aa", on: "aa.application_id = a.application_id"},
			},
			dates: []dateRef{
				{"application_date_id", "a.application_date"},
				{"decision_date_id", "l.decision_date"},
			},
			keys: []keyRef{
				{&Purpose, "a"},
				{&ApplicationType, "a"},
				{&VerificationStatus, "a"},
				{&PolicyCode, "a"},
				{&DisbursementMethod, "a"},
				{&Grade, "l"},
				{&SubGrade, "l"},
				{&Term, "l"},
				{&HomeOwnership, "e"},
				{&EmploymentLength, "e"},
				{&Location, "aa"},
			},
			measures: []measure{
				{"lt", "requested_amount"},
				{"lt", "funded_amount"},
				{"lt", "funded_amount_inv"},
				{"lt", "installment"},
				{"lt", "int_rate"},
				{"af", "annual_inc"},
				{"af", "annual_inc_joint"},
				{"af", "dti"},
				{"af", "dti_joint"},
				{"ch", "inq_last_6mths"},
				{"ch", "delinq_2yrs"},
				{"ch", "mths_since_last_delinq"},
				{"ch", "mths_since_recent_inq"},
				{"ch", "pub_rec"},
				{"ch", "total_acc"},
				{"ch", "open_acc"},
				{"ch", "revol_bal"},
				{"ch", "revol_util"},
			},
		},
	}
}

// NewPerformanceLoader returns the fact_performance_snapshot stage: one
// row per loan, whether or not it has payment, settlement or hardship
// records.
func NewPerformanceLoader(env *Env) *FactLoader {
	return &FactLoader{
		env:      env,
		resolver: NewResolver(env),
		stage:    StagePerformance,
		desc:     "Replace one fact_performance_snapshot row per loan",
		spec: factSpec{
			table: "fact_performance_snapshot",
			key:   "loan_id",
			ids:   []measure{{"l", "loan_id"}},
			sources: []source{
				{table: "loan", alias: "l"},
				{table: "payment_status_snapshot", alias: "ps", on: "ps.loan_id = l.loan_id"},
				{table: "settlement_case", alias: "sc", on: "sc.loan_id = l.loan_id"},
				{table: "hardship_case", alias: "hc", on: "hc.loan_id = l.loan_id"},
			},
			dates: []dateRef{
				{"last_payment_date_id", "ps.last_pymnt_d"},
				{"next_payment_date_id", "ps.next_pymnt_d"},
				{"settlement_date_id", "sc.settlement_date"},
				{"hardship_start_date_id", "hc.hardship_start_date"},
				{"hardship_end_date_id", "hc.hardship_end_date"},
				{"payment_plan_start_date_id", "hc.payment_plan_start_date"},
			},
			keys: []keyRef{
				{&LoanStatus, "l"},
				{&SettlementStatus, "sc"},
				{&HardshipType, "hc"},
				{&HardshipStatus, "hc"},
				{&HardshipLoanStatus, "hc"},
			},
			measures: []measure{
				{"ps", "last_pymnt_amnt"},
				{"ps", "total_pymnt"},
				{"ps", "total_pymnt_inv"},
				{"ps", "total_rec_prncp"},
				{"ps", "total_rec_int"},
				{"ps", "total_rec_late_fee"},
				{"ps", "recoveries"},
				{"ps", "collection_recovery_fee"},
				{"ps", "out_prncp"},
				{"ps", "out_prncp_inv"},
				{"ps", "pymnt_plan"},
				{"sc", "debt_settlement_flag"},
				{"sc", "settlement_amount"},
				{"sc", "settlement_percentage"},
				{"hc", "hardship_amount"},
				{"hc", "deferral_term"},
				{"hc", "hardship_length"},
				{"hc", "hardship_dpd"},
			},
		},
	}
}
