//-------------------------------------------------------------------------
//
// pgEdge Data Warehouse Loader
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package etl

import "strings"

// Hop is one link from a referencing source row to a natural key member:
// the row's ID column selects a row of the source lookup Table, whose
// Code column holds the member. ID is named identically on both sides,
// and Code identically in the source and warehouse tables.
type Hop struct {
	Table string
	ID    string
	Code  string
}

// Alias is the table alias used for the hop's lookup table.
func (h Hop) Alias() string {
	return "s_" + strings.TrimPrefix(h.Table, "dim_")
}

// Parent ties a dimension to the dimension one level up. ID is the
// column of the child's source table referencing the parent's source
// table.
type Parent struct {
	Dimension *Dimension
	ID        string
}

// Dimension describes a warehouse dimension and how its natural key is
// reached from the source schema.
type Dimension struct {
	Name  string
	Table string
	Key   string
	Hops  []Hop

	// Attrs are carried from the lookup table alongside the natural key.
	// Only single-hop dimensions carry attributes.
	Attrs []string

	Parent *Parent

	// NullSafe makes two NULL members match when resolving keys.
	NullSafe bool
}

// NaturalKey returns the natural key columns.
func (d *Dimension) NaturalKey() []string {
	cols := make([]string, len(d.Hops))
	for i, h := range d.Hops {
		cols[i] = h.Code
	}
	return cols
}

// Alias is the table alias used for the warehouse table.
func (d *Dimension) Alias() string {
	return "d_" + d.Name
}

func reference(name, sourceTable, id, code string) Dimension {
	return Dimension{
		Name:  name,
		Table: "dim_" + name,
		Key:   name + "_key",
		Hops:  []Hop{{Table: sourceTable, ID: id, Code: code}},
	}
}

// Reference dimensions.
var (
	Purpose            = reference("purpose", "dim_purpose", "purpose_id", "purpose_code")
	ApplicationType    = reference("application_type", "dim_application_type", "application_type_id", "application_type_code")
	VerificationStatus = reference("verification_status", "dim_verification_status", "verification_status_id", "verification_status_code")
	PolicyCode         = reference("policy_code", "dim_policy_code", "policy_code_id", "policy_code")
	DisbursementMethod = reference("disbursement_method", "dim_disbursement_method", "disbursement_method_id", "disbursement_method_code")
	Grade              = reference("grade", "dim_grade", "grade_id", "grade_code")
	SubGrade           = withParent(reference("sub_grade", "dim_sub_grade", "sub_grade_id", "sub_grade_code"), &Grade, "grade_id")
	Term               = reference("term", "dim_term", "term_id", "term_months")
	HomeOwnership      = reference("home_ownership", "dim_home_ownership", "home_ownership_id", "home_ownership_code")
	EmploymentLength   = withAttrs(reference("employment_length", "dim_emp_length", "emp_length_id", "original_text"), "years")
	LoanStatus         = reference("loan_status", "dim_loan_status", "loan_status_id", "loan_status_code")
	SettlementStatus   = reference("settlement_status", "dim_settlement_status", "settlement_status_id", "settlement_status_code")
	HardshipType       = reference("hardship_type", "dim_hardship_type", "hardship_type_id", "hardship_type_code")
	HardshipStatus     = reference("hardship_status", "dim_hardship_status", "hardship_status_id", "hardship_status_code")
	HardshipLoanStatus = reference("hardship_loan_status", "dim_hardship_loan_status", "hardship_loan_status_id", "hardship_loan_status_code")
)

// Location is the (state, zip3) composite dimension. Either member may
// be unknown, so it resolves null-safely.
var Location = Dimension{
	Name:  "location",
	Table: "dim_location",
	Key:   "location_key",
	Hops: []Hop{
		{Table: "dim_state", ID: "state_id", Code: "state_code"},
		{Table: "dim_zip3", ID: "zip3_id", Code: "zip3"},
	},
	NullSafe: true,
}

// References lists the reference dimensions in load order. A parent
// always precedes its children.
var References = []*Dimension{
	&Purpose,
	&ApplicationType,
	&VerificationStatus,
	&PolicyCode,
	&DisbursementMethod,
	&Grade,
	&SubGrade,
	&Term,
	&HomeOwnership,
	&EmploymentLength,
	&LoanStatus,
	&SettlementStatus,
	&HardshipType,
	&HardshipStatus,
	&HardshipLoanStatus,
}

// Dimensions lists every natural-keyed dimension.
func Dimensions() []*Dimension {
	return append(append([]*Dimension{}, References...), &Location)
}

func withParent(d Dimension, parent *Dimension, id string) Dimension {
	d.Parent = &Parent{Dimension: parent, ID: id}
	return d
}

func withAttrs(d Dimension, attrs ...string) Dimension {
	d.Attrs = attrs
	return d
}
