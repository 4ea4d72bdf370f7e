package datagen

import (
	"reflect"
	"testing"
)

func column(t *testing.T, tbl *Table, name string) int {
	t.Helper()
	for i, c := range tbl.Columns {
		if c == name {
			return i
		}
	}
	t.Fatalf("%s has no column %s", tbl.Name, name)
	return -1
}

func TestGenerateLoanCount(t *testing.T) {
	ds := Generate(NewFakerWithSeed(42), 500)

	loans := ds.Table("loan")
	if len(loans.Rows) != 500 {
		t.Fatalf("loan rows = %d, want 500", len(loans.Rows))
	}
	apps := ds.Table("application")
	if len(apps.Rows) < 500 {
		t.Fatalf("application rows = %d, want at least 500", len(apps.Rows))
	}
	if got := len(ds.Table("loan_terms").Rows); got != 500 {
		t.Errorf("loan_terms rows = %d, want 500", got)
	}
}

func TestGenerateIsDeterministic(t *testing.T) {
	a := Generate(NewFakerWithSeed(99), 50)
	b := Generate(NewFakerWithSeed(99), 50)
	if !reflect.DeepEqual(a, b) {
		t.Fatal("same seed produced different datasets")
	}
}

func TestGenerateColumnsMatchRows(t *testing.T) {
	ds := Generate(NewFakerWithSeed(1), 200)
	for _, tbl := range ds.Tables {
		for i, r := range tbl.Rows {
			if len(r) != len(tbl.Columns) {
				t.Fatalf("%s row %d has %d values for %d columns", tbl.Name, i, len(r), len(tbl.Columns))
			}
		}
	}
}

func TestGenerateUniqueKeys(t *testing.T) {
	ds := Generate(NewFakerWithSeed(3), 300)
	for _, tbl := range ds.Tables {
		seen := make(map[any]bool, len(tbl.Rows))
		for _, r := range tbl.Rows {
			if seen[r[0]] {
				t.Fatalf("%s has duplicate key %v", tbl.Name, r[0])
			}
			seen[r[0]] = true
		}
	}
}

func TestGenerateLoansReferenceApplications(t *testing.T) {
	ds := Generate(NewFakerWithSeed(5), 300)

	apps := make(map[any]bool)
	for _, r := range ds.Table("application").Rows {
		apps[r[0]] = true
	}
	loans := ds.Table("loan")
	appCol := column(t, loans, "application_id")
	for _, r := range loans.Rows {
		if !apps[r[appCol]] {
			t.Fatalf("loan %v references missing application %v", r[0], r[appCol])
		}
	}
}

func TestGenerateSubGradeMatchesGrade(t *testing.T) {
	ds := Generate(NewFakerWithSeed(8), 300)
	loans := ds.Table("loan")
	gc, sc := column(t, loans, "grade_id"), column(t, loans, "sub_grade_id")

	_, parents := SubGrades()
	for _, r := range loans.Rows {
		grade, sub := r[gc].(int), r[sc].(int)
		if parents[sub-1] != grade {
			t.Fatalf("loan %v has sub grade %d outside grade %d", r[0], sub, grade)
		}
	}
}

// The loader must cope with missing children and NULL codes, so the
// generator has to produce them.
func TestGenerateProducesGaps(t *testing.T) {
	ds := Generate(NewFakerWithSeed(11), 2000)
	loans := len(ds.Table("loan").Rows)

	if n := len(ds.Table("settlement_case").Rows); n == 0 || n >= loans {
		t.Errorf("settlement_case rows = %d, want some but fewer than %d", n, loans)
	}
	if n := len(ds.Table("hardship_case").Rows); n == 0 || n >= loans {
		t.Errorf("hardship_case rows = %d, want some but fewer than %d", n, loans)
	}
	if len(ds.Table("application").Rows) == loans {
		t.Error("no application without a loan")
	}

	addr := ds.Table("application_address")
	zc := column(t, addr, "zip3_id")
	nullZip := 0
	for _, r := range addr.Rows {
		if r[zc] == nil {
			nullZip++
		}
	}
	if nullZip == 0 {
		t.Error("no address with a NULL zip3")
	}
}

func TestEmploymentLengths(t *testing.T) {
	lengths := EmploymentLengths()
	if len(lengths) != 12 {
		t.Fatalf("got %d employment lengths, want 12", len(lengths))
	}
	if lengths[0].Text != "< 1 year" || *lengths[0].Years != 0 {
		t.Errorf("first bucket = %+v", lengths[0])
	}
	last := lengths[len(lengths)-1]
	if last.Text != "n/a" || last.Years != nil {
		t.Errorf("last bucket = %+v, want n/a with no years", last)
	}
}

func TestCodeTablesCoverSource(t *testing.T) {
	ds := Generate(NewFakerWithSeed(2), 10)
	if len(ds.Tables) != 27 {
		t.Fatalf("got %d tables, want 27", len(ds.Tables))
	}
	if got := len(ds.Table("dim_sub_grade").Rows); got != 35 {
		t.Errorf("dim_sub_grade rows = %d, want 35", got)
	}
	if got := len(ds.Table("dim_zip3").Rows); got != 60 {
		t.Errorf("dim_zip3 rows = %d, want 60", got)
	}
	if ds.Table("missing") != nil {
		t.Error("Table returned a table for an unknown name")
	}
}
