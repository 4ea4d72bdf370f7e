//-------------------------------------------------------------------------
//
// pgEdge Data Warehouse Loader
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package datagen

import (
	"fmt"
	"time"
)

// Loan ids are offset from application ids so the two never coincide.
const loanIDOffset = 1_000_000

// Date range applications are drawn from.
var (
	FirstApplication = time.Date(2007, 6, 1, 0, 0, 0, 0, time.UTC)
	LastApplication  = time.Date(2018, 12, 31, 0, 0, 0, 0, time.UTC)
)

// Table is a source table and the rows to insert into it.
type Table struct {
	Name    string
	Columns []string
	Rows    [][]any
}

// Dataset is a complete synthetic source, in insert order.
type Dataset struct {
	Tables []*Table
}

// Table returns the named table, or nil.
func (d *Dataset) Table(name string) *Table {
	for _, t := range d.Tables {
		if t.Name == name {
			return t
		}
	}
	return nil
}

// Rows returns the total row count.
func (d *Dataset) Rows() int64 {
	var n int64
	for _, t := range d.Tables {
		n += int64(len(t.Rows))
	}
	return n
}

// Generate builds a dataset with the given number of loans. About one
// application in twenty is declined and has no loan. Codes, addresses,
// employment and the settlement and hardship cases are left out or NULL
// for a share of rows so the loader's outer joins and null-safe matching
// are exercised.
func Generate(f *Faker, loans int) *Dataset {
	zip3s := generateZip3s(f, 60)
	ds := &Dataset{Tables: codeTables(zip3s)}

	g := &entities{
		f:           f,
		application: newTable("application", "application_id", "application_date", "purpose_id", "application_type_id", "verification_status_id", "policy_code_id", "disbursement_method_id"),
		address:     newTable("application_address", "application_id", "state_id", "zip3_id"),
		employment:  newTable("employment", "application_id", "emp_title", "home_ownership_id", "emp_length_id"),
		financials:  newTable("applicant_financials_snapshot", "application_id", "annual_inc", "annual_inc_joint", "dti", "dti_joint"),
		credit:      newTable("credit_history_snapshot", "application_id", "inq_last_6mths", "delinq_2yrs", "mths_since_last_delinq", "mths_since_recent_inq", "pub_rec", "total_acc", "open_acc", "revol_bal", "revol_util"),
		loan:        newTable("loan", "loan_id", "application_id", "decision_date", "grade_id", "sub_grade_id", "term_id", "loan_status_id"),
		terms:       newTable("loan_terms", "loan_id", "requested_amount", "funded_amount", "funded_amount_inv", "installment", "int_rate"),
		payment:     newTable("payment_status_snapshot", "loan_id", "last_pymnt_d", "next_pymnt_d", "last_pymnt_amnt", "total_pymnt", "total_pymnt_inv", "total_rec_prncp", "total_rec_int", "total_rec_late_fee", "recoveries", "collection_recovery_fee", "out_prncp", "out_prncp_inv", "pymnt_plan"),
		settlement:  newTable("settlement_case", "loan_id", "settlement_status_id", "debt_settlement_flag", "settlement_amount", "settlement_percentage", "settlement_date"),
		hardship:    newTable("hardship_case", "loan_id", "hardship_type_id", "hardship_status_id", "hardship_loan_status_id", "hardship_amount", "hardship_start_date", "hardship_end_date", "payment_plan_start_date", "deferral_term", "hardship_length", "hardship_dpd"),
		zip3s:       len(zip3s),
	}

	appID := int64(0)
	for made := 0; made < loans; {
		appID++
		applied := g.addApplication(appID)
		if f.Chance(0.05) {
			continue
		}
		g.addLoan(appID, applied)
		made++
	}

	ds.Tables = append(ds.Tables,
		g.application, g.address, g.employment, g.financials, g.credit,
		g.loan, g.terms, g.payment, g.settlement, g.hardship,
	)
	return ds
}

func newTable(name string, cols ...string) *Table {
	return &Table{Name: name, Columns: cols}
}

func generateZip3s(f *Faker, n int) []string {
	seen := make(map[string]bool, n)
	out := make([]string, 0, n)
	for len(out) < n {
		z := fmt.Sprintf("%03d", f.Int(10, 999))
		if seen[z] {
			continue
		}
		seen[z] = true
		out = append(out, z)
	}
	return out
}

type entities struct {
	f     *Faker
	zip3s int

	application *Table
	address     *Table
	employment  *Table
	financials  *Table
	credit      *Table
	loan        *Table
	terms       *Table
	payment     *Table
	settlement  *Table
	hardship    *Table
}

// pick returns a 1-based id into n values.
func (g *entities) pick(n int) int {
	return g.f.Int(1, n)
}

// weighted returns a 1-based id chosen by weight.
func (g *entities) weighted(weights []int) int {
	ids := make([]int, len(weights))
	for i := range ids {
		ids[i] = i + 1
	}
	return ChooseWeighted(g.f, ids, weights)
}

func (g *entities) addApplication(id int64) time.Time {
	f := g.f
	applied := f.Date(FirstApplication, LastApplication)
	joint := g.weighted(applicationTypeWeights) == 2

	g.application.Rows = append(g.application.Rows, []any{
		id,
		applied,
		f.Nullable(g.pick(len(Purposes)), 0.01),
		boolID(joint),
		g.weighted(verificationWeights),
		f.Nullable(ChooseWeighted(f, []int{1, 2}, []int{97, 3}), 0.02),
		f.Nullable(ChooseWeighted(f, []int{1, 2}, []int{90, 10}), 0.3),
	})

	if !f.Chance(0.02) {
		state := f.Nullable(g.pick(len(States)), 0.02)
		zip3 := f.Nullable(g.pick(g.zip3s), 0.05)
		g.address.Rows = append(g.address.Rows, []any{id, state, zip3})
	}

	if !f.Chance(0.04) {
		g.employment.Rows = append(g.employment.Rows, []any{
			id,
			f.Nullable(Truncate(f.JobTitle(), 128), 0.06),
			g.weighted(homeOwnershipWeights),
			f.Nullable(g.pick(len(EmploymentLengths())), 0.03),
		})
	}

	income := f.Money(18000, 250000)
	var incomeJoint, dtiJoint any
	if joint {
		incomeJoint = Round(income+f.Money(10000, 120000), 2)
		dtiJoint = f.Money(2, 35)
	}
	g.financials.Rows = append(g.financials.Rows, []any{
		id, income, incomeJoint, f.Nullable(f.Money(0, 40), 0.01), dtiJoint,
	})

	totalAcc := f.Int(3, 60)
	g.credit.Rows = append(g.credit.Rows, []any{
		id,
		f.Int(0, 6),
		f.Int(0, 4),
		f.Nullable(f.Int(0, 120), 0.5),
		f.Nullable(f.Int(0, 24), 0.1),
		f.Int(0, 3),
		totalAcc,
		f.Int(1, totalAcc),
		f.Money(0, 90000),
		f.Nullable(f.Money(0, 110), 0.01),
	})

	return applied
}

func (g *entities) addLoan(appID int64, applied time.Time) {
	f := g.f
	loanID := appID + loanIDOffset
	decided := applied.AddDate(0, 0, f.Int(0, 21))

	gradeID := ChooseWeighted(f, []int{1, 2, 3, 4, 5, 6, 7}, []int{18, 30, 27, 15, 6, 3, 1})
	subGradeID := (gradeID-1)*5 + f.Int(1, 5)
	termID := ChooseWeighted(f, []int{1, 2}, []int{72, 28})
	statusID := g.weighted(loanStatusWeights)

	g.loan.Rows = append(g.loan.Rows, []any{
		loanID, appID, decided, gradeID, subGradeID, termID, f.Nullable(statusID, 0.01),
	})

	requested := Round(float64(f.Int(20, 1400))*25, 2)
	funded := requested
	if f.Chance(0.1) {
		funded = Round(requested*f.Float64(0.6, 1), 2)
	}
	rate := Round(5+float64(gradeID)*3.1+f.Float64(-1.5, 1.5), 3)
	months := TermMonths[termID-1]
	installment := Round(amortize(funded, rate, months), 2)

	g.terms.Rows = append(g.terms.Rows, []any{
		loanID, requested, funded, Round(funded-f.Money(0, 50), 2), installment, rate,
	})

	if !f.Chance(0.03) {
		paid := f.Int(0, months)
		last := decided.AddDate(0, paid, 0)
		var next any
		outstanding := Round(funded*float64(months-paid)/float64(months), 2)
		if statusID == 2 {
			next = last.AddDate(0, 1, 0)
		}
		received := Round(installment*float64(paid), 2)
		var recoveries float64
		if statusID == 3 {
			recoveries = f.Money(0, funded/4)
		}
		g.payment.Rows = append(g.payment.Rows, []any{
			loanID,
			f.Nullable(last, 0.02),
			next,
			f.Nullable(installment, 0.02),
			received,
			Round(received*0.99, 2),
			Round(funded-outstanding, 2),
			Round(received-(funded-outstanding), 2),
			ChooseWeighted(f, []float64{0, 15}, []int{97, 3}),
			recoveries,
			Round(recoveries*0.18, 2),
			outstanding,
			outstanding,
			ChooseWeighted(f, []string{"n", "y"}, []int{99, 1}),
		})
	}

	if statusID == 3 && f.Chance(0.3) {
		amount := f.Money(funded/5, funded)
		g.settlement.Rows = append(g.settlement.Rows, []any{
			loanID,
			g.pick(len(SettlementStatuses)),
			"Y",
			amount,
			Round(amount/funded*100, 2),
			f.Nullable(decided.AddDate(0, f.Int(6, months), 0), 0.05),
		})
	}

	if f.Chance(0.05) {
		start := decided.AddDate(0, f.Int(3, months/2), 0)
		var planStart any
		if f.Chance(0.8) {
			planStart = start.AddDate(0, 0, f.Int(0, 10))
		}
		g.hardship.Rows = append(g.hardship.Rows, []any{
			loanID,
			g.pick(len(HardshipTypes)),
			g.pick(len(HardshipStatuses)),
			f.Nullable(g.pick(len(HardshipLoanStatuses)), 0.1),
			f.Money(10, 600),
			start,
			start.AddDate(0, 3, 0),
			planStart,
			3,
			3,
			f.Int(0, 90),
		})
	}
}

func boolID(b bool) int {
	if b {
		return 2
	}
	return 1
}

// amortize returns the monthly installment for a fixed-rate loan.
func amortize(principal, annualRate float64, months int) float64 {
	r := annualRate / 100 / 12
	if r == 0 {
		return principal / float64(months)
	}
	pow := 1.0
	for i := 0; i < months; i++ {
		pow *= 1 + r
	}
	return principal * r * pow / (pow - 1)
}
