//-------------------------------------------------------------------------
//
// pgEdge Data Warehouse Loader
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package datagen

import "fmt"

// Source code table values. Ids are assigned in list order from 1.
var (
	Purposes = []string{
		"debt_consolidation", "credit_card", "home_improvement", "other",
		"major_purchase", "medical", "small_business", "car", "moving",
		"vacation", "house", "wedding", "renewable_energy", "educational",
		// Legacy id carrying a code that already exists.
		"credit_card",
	}
	ApplicationTypes       = []string{"Individual", "Joint App"}
	VerificationStatuses   = []string{"Not Verified", "Source Verified", "Verified"}
	PolicyCodes            = []string{"1", "2"}
	DisbursementMethods    = []string{"Cash", "DirectPay"}
	Grades                 = []string{"A", "B", "C", "D", "E", "F", "G"}
	TermMonths             = []int{36, 60}
	HomeOwnerships         = []string{"RENT", "MORTGAGE", "OWN", "OTHER", "NONE", "ANY"}
	SettlementStatuses     = []string{"ACTIVE", "COMPLETE", "BROKEN"}
	HardshipTypes          = []string{"INTEREST ONLY-3 MONTHS DEFERRAL", "CUSTOM"}
	HardshipStatuses       = []string{"ACTIVE", "COMPLETED", "BROKEN"}
	HardshipLoanStatuses   = []string{"Current", "In Grace Period", "Late (16-30 days)", "Late (31-120 days)"}
	States                 = []string{"CA", "NY", "TX", "FL", "IL", "NJ", "PA", "OH", "GA", "VA", "NC", "MI", "MD", "AZ", "MA", "WA", "CO", "MN", "NV", "OR"}
	LoanStatuses           = []string{"Fully Paid", "Current", "Charged Off", "Late (31-120 days)", "In Grace Period", "Late (16-30 days)", "Default"}
	loanStatusWeights      = []int{45, 35, 12, 3, 2, 2, 1}
	homeOwnershipWeights   = []int{40, 45, 13, 1, 1, 0}
	verificationWeights    = []int{30, 40, 30}
	applicationTypeWeights = []int{95, 5}
)

// EmploymentLength is a source employment length bucket. Years is nil
// for "n/a".
type EmploymentLength struct {
	Text  string
	Years *int
}

// EmploymentLengths returns the employment length buckets.
func EmploymentLengths() []EmploymentLength {
	out := []EmploymentLength{{Text: "< 1 year", Years: intPtr(0)}, {Text: "1 year", Years: intPtr(1)}}
	for y := 2; y <= 9; y++ {
		out = append(out, EmploymentLength{Text: fmt.Sprintf("%d years", y), Years: intPtr(y)})
	}
	return append(out,
		EmploymentLength{Text: "10+ years", Years: intPtr(10)},
		EmploymentLength{Text: "n/a"},
	)
}

// SubGrades returns the sub grade codes with the 1-based id of their grade.
func SubGrades() ([]string, []int) {
	var codes []string
	var grades []int
	for gi, g := range Grades {
		for n := 1; n <= 5; n++ {
			codes = append(codes, fmt.Sprintf("%s%d", g, n))
			grades = append(grades, gi+1)
		}
	}
	return codes, grades
}

func intPtr(v int) *int {
	return &v
}

// codeTable builds an id/code lookup table.
func codeTable[T any](name, idCol, codeCol string, values []T) *Table {
	t := &Table{Name: name, Columns: []string{idCol, codeCol}}
	for i, v := range values {
		t.Rows = append(t.Rows, []any{i + 1, v})
	}
	return t
}

// codeTables returns every source lookup table. zip3s are generated per
// dataset.
func codeTables(zip3s []string) []*Table {
	subCodes, subGrades := SubGrades()
	subGrade := &Table{Name: "dim_sub_grade", Columns: []string{"sub_grade_id", "sub_grade_code", "grade_id"}}
	for i, code := range subCodes {
		subGrade.Rows = append(subGrade.Rows, []any{i + 1, code, subGrades[i]})
	}

	empLength := &Table{Name: "dim_emp_length", Columns: []string{"emp_length_id", "years", "original_text"}}
	for i, el := range EmploymentLengths() {
		var years any
		if el.Years != nil {
			years = *el.Years
		}
		empLength.Rows = append(empLength.Rows, []any{i + 1, years, el.Text})
	}

	return []*Table{
		codeTable("dim_purpose", "purpose_id", "purpose_code", Purposes),
		codeTable("dim_application_type", "application_type_id", "application_type_code", ApplicationTypes),
		codeTable("dim_verification_status", "verification_status_id", "verification_status_code", VerificationStatuses),
		codeTable("dim_policy_code", "policy_code_id", "policy_code", PolicyCodes),
		codeTable("dim_disbursement_method", "disbursement_method_id", "disbursement_method_code", DisbursementMethods),
		codeTable("dim_grade", "grade_id", "grade_code", Grades),
		subGrade,
		codeTable("dim_term", "term_id", "term_months", TermMonths),
		codeTable("dim_home_ownership", "home_ownership_id", "home_ownership_code", HomeOwnerships),
		empLength,
		codeTable("dim_loan_status", "loan_status_id", "loan_status_code", LoanStatuses),
		codeTable("dim_settlement_status", "settlement_status_id", "settlement_status_code", SettlementStatuses),
		codeTable("dim_hardship_type", "hardship_type_id", "hardship_type_code", HardshipTypes),
		codeTable("dim_hardship_status", "hardship_status_id", "hardship_status_code", HardshipStatuses),
		codeTable("dim_hardship_loan_status", "hardship_loan_status_id", "hardship_loan_status_code", HardshipLoanStatuses),
		codeTable("dim_state", "state_id", "state_code", States),
		codeTable("dim_zip3", "zip3_id", "zip3", zip3s),
	}
}
