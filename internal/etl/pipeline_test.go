package etl

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgEdge/pgedge-dwload/internal/config"
	"github.com/pgEdge/pgedge-dwload/internal/db"
)

func mockEnv(t *testing.T) (*Env, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	cfg := config.DefaultConfig()
	cfg.Dialect = config.DialectMySQL
	cfg.Schemas = config.SchemaConfig{Source: "lc_src", Warehouse: "lc_dw"}
	env, err := NewEnv(db.NewSQLDB(sqlDB), cfg)
	require.NoError(t, err)
	return env, mock
}

type fakeStage struct {
	name  string
	rows  int64
	err   error
	calls *[]string
}

func (s fakeStage) Name() string        { return s.name }
func (s fakeStage) Description() string { return "fake " + s.name }

func (s fakeStage) Run(ctx context.Context, tx db.Execer) (int64, error) {
	*s.calls = append(*s.calls, s.name)
	if s.err != nil {
		return 0, s.err
	}
	_, err := tx.Exec(ctx, "INSERT INTO "+s.name)
	return s.rows, err
}

func TestPipelineRunsStagesInOrder(t *testing.T) {
	env, mock := mockEnv(t)

	var calls []string
	p := &Pipeline{env: env}
	for i, name := range []string{"one", "two", "three"} {
		p.stages = append(p.stages, fakeStage{name: name, rows: int64(i + 1), calls: &calls})
		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO " + name).WillReturnResult(sqlmock.NewResult(0, int64(i+1)))
		mock.ExpectCommit()
	}

	result, err := p.Run(context.Background(), Selection{})
	require.NoError(t, err)

	assert.Equal(t, []string{"one", "two", "three"}, calls)
	require.Len(t, result.Stages, 3)
	assert.Equal(t, int64(6), result.Rows())
	assert.NotEmpty(t, result.RunID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPipelineStopsAtFailedStage(t *testing.T) {
	env, mock := mockEnv(t)
	driverErr := errors.New("Error 1146: Table 'lc_dw.dim_location' doesn't exist")

	var calls []string
	p := &Pipeline{env: env, stages: []Stage{
		fakeStage{name: "one", rows: 1, calls: &calls},
		fakeStage{name: "two", calls: &calls},
		fakeStage{name: "three", calls: &calls},
	}}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO one").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO two").WillReturnError(driverErr)
	mock.ExpectRollback()

	result, err := p.Run(context.Background(), Selection{})
	require.Error(t, err)

	var stageErr *StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, "two", stageErr.Stage)
	assert.ErrorIs(t, err, driverErr)
	assert.Contains(t, err.Error(), "stage two failed")

	assert.Equal(t, []string{"one", "two"}, calls)
	require.NotNil(t, result)
	require.Len(t, result.Stages, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPipelineSelect(t *testing.T) {
	env, _ := mockEnv(t)
	p := NewPipeline(env, Options{})

	names := func(stages []Stage) []string {
		out := make([]string, len(stages))
		for i, s := range stages {
			out[i] = s.Name()
		}
		return out
	}

	tests := []struct {
		name    string
		sel     Selection
		want    []string
		wantErr bool
	}{
		{
			name: "all",
			want: []string{StageSchema, StageReference, StageLocation, StageCalendar, StageOriginations, StagePerformance},
		},
		{
			name: "from calendar",
			sel:  Selection{From: StageCalendar},
			want: []string{StageCalendar, StageOriginations, StagePerformance},
		},
		{
			name: "only location",
			sel:  Selection{Only: StageLocation},
			want: []string{StageLocation},
		},
		{
			name:    "unknown stage",
			sel:     Selection{From: "staging"},
			wantErr: true,
		},
		{
			name:    "from and only",
			sel:     Selection{From: StageCalendar, Only: StageLocation},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.Select(tt.sel)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(got))
		})
	}
}

func TestPipelineFullRun(t *testing.T) {
	env, mock := mockEnv(t)
	env.CalendarBatchSize = 2

	p := NewPipeline(env, Options{})

	// schema: no DDL path configured
	mock.ExpectBegin()
	mock.ExpectCommit()

	mock.ExpectBegin()
	for _, dim := range References {
		mock.ExpectExec(regexp.QuoteMeta("INSERT IGNORE INTO `lc_dw`." + dim.Table + " (")).
			WillReturnResult(sqlmock.NewResult(0, 2))
	}
	mock.ExpectCommit()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT IGNORE INTO `lc_dw`.dim_location (state_code, zip3)")).
		WillReturnResult(sqlmock.NewResult(0, 4))
	mock.ExpectCommit()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT MIN(min_d), MAX(max_d) FROM (")).
		WillReturnRows(sqlmock.NewRows([]string{"min", "max"}).
			AddRow(time.Date(2024, 2, 27, 0, 0, 0, 0, time.UTC), time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)))
	for _, n := range []int64{2, 2, 1} {
		mock.ExpectExec(regexp.QuoteMeta("INSERT IGNORE INTO `lc_dw`.dim_date (date_id, full_date,")).
			WillReturnResult(sqlmock.NewResult(0, n))
	}
	mock.ExpectCommit()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("REPLACE INTO `lc_dw`.fact_originations (")).
		WillReturnResult(sqlmock.NewResult(0, 10))
	mock.ExpectCommit()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("REPLACE INTO `lc_dw`.fact_performance_snapshot (")).
		WillReturnResult(sqlmock.NewResult(0, 12))
	mock.ExpectCommit()

	result, err := p.Run(context.Background(), Selection{})
	require.NoError(t, err)
	require.Len(t, result.Stages, 6)

	rows := map[string]int64{}
	for _, s := range result.Stages {
		rows[s.Name] = s.Rows
	}
	assert.Equal(t, int64(0), rows[StageSchema])
	assert.Equal(t, int64(30), rows[StageReference])
	assert.Equal(t, int64(4), rows[StageLocation])
	assert.Equal(t, int64(5), rows[StageCalendar])
	assert.Equal(t, int64(10), rows[StageOriginations])
	assert.Equal(t, int64(12), rows[StagePerformance])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReferenceFailureRollsBackWholeStage(t *testing.T) {
	env, mock := mockEnv(t)
	p := NewPipeline(env, Options{})

	mock.ExpectBegin()
	for i, dim := range References {
		e := mock.ExpectExec(regexp.QuoteMeta("INSERT IGNORE INTO `lc_dw`." + dim.Table + " ("))
		if i == 6 {
			e.WillReturnError(assert.AnError)
			break
		}
		e.WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectRollback()

	_, err := p.Run(context.Background(), Selection{Only: StageReference})
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
	assert.Contains(t, err.Error(), "failed to load dim_sub_grade")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCalendarDefaultSpan(t *testing.T) {
	env, mock := mockEnv(t)
	env.CalendarBatchSize = 5000

	mock.ExpectQuery(regexp.QuoteMeta("SELECT MIN(min_d), MAX(max_d)")).
		WillReturnRows(sqlmock.NewRows([]string{"min", "max"}).AddRow(nil, nil))
	mock.ExpectExec("INSERT IGNORE INTO `lc_dw`.dim_date").WillReturnResult(sqlmock.NewResult(0, 5000))
	mock.ExpectExec("INSERT IGNORE INTO `lc_dw`.dim_date").WillReturnResult(sqlmock.NewResult(0, 3766))

	n, err := NewCalendarGenerator(env).Run(context.Background(), env.DB)
	require.NoError(t, err)
	assert.Equal(t, int64(8766), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCalendarBindsEveryValue(t *testing.T) {
	env, mock := mockEnv(t)

	day := time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT MIN(min_d), MAX(max_d)")).
		WillReturnRows(sqlmock.NewRows([]string{"min", "max"}).AddRow(day, day))
	mock.ExpectExec(regexp.QuoteMeta("INSERT IGNORE INTO `lc_dw`.dim_date (date_id, full_date, year, quarter, quarter_name, month, month_name, day, day_of_week, day_name, week_of_year) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")).
		WithArgs(20240229, day, 2024, 1, "Q1", 2, "February", 29, 5, "Thursday", 9).
		WillReturnResult(sqlmock.NewResult(0, 1))

	n, err := NewCalendarGenerator(env).Run(context.Background(), env.DB)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSchemaProvisioner(t *testing.T) {
	t.Run("path not set", func(t *testing.T) {
		env, mock := mockEnv(t)
		n, err := NewSchemaProvisioner("").Run(context.Background(), env.DB)
		require.NoError(t, err)
		assert.Zero(t, n)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing file is skipped", func(t *testing.T) {
		env, mock := mockEnv(t)
		path := filepath.Join(t.TempDir(), "absent.sql")
		_, err := NewSchemaProvisioner(path).Run(context.Background(), env.DB)
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("statements run in order", func(t *testing.T) {
		env, mock := mockEnv(t)
		path := filepath.Join(t.TempDir(), "dw.sql")
		ddl := "-- warehouse\nCREATE TABLE dim_a (id INT);\n\nCREATE TABLE dim_b (id INT);\n-- end\n"
		require.NoError(t, os.WriteFile(path, []byte(ddl), 0o600))

		mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE dim_a")).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE dim_b")).WillReturnResult(sqlmock.NewResult(0, 0))

		_, err := NewSchemaProvisioner(path).Run(context.Background(), env.DB)
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPipelineRecordsRunLog(t *testing.T) {
	env, mock := mockEnv(t)

	var calls []string
	p := NewPipeline(env, Options{RunLog: true})
	p.stages = []Stage{fakeStage{name: "one", err: assert.AnError, calls: &calls}}

	replace := regexp.QuoteMeta("REPLACE INTO `lc_dw`.etl_run_log")

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS `lc_dw`.etl_run_log")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(replace).
		WithArgs(sqlmock.AnyArg(), db.RunStage, db.StatusRunning, int64(0), sqlmock.AnyArg(), nil, nil).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(replace).
		WithArgs(sqlmock.AnyArg(), "one", db.StatusRunning, int64(0), sqlmock.AnyArg(), nil, nil).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectBegin()
	mock.ExpectRollback()
	mock.ExpectExec(replace).
		WithArgs(sqlmock.AnyArg(), "one", db.StatusFailed, int64(0), sqlmock.AnyArg(), sqlmock.AnyArg(), assert.AnError.Error()).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(replace).
		WithArgs(sqlmock.AnyArg(), db.RunStage, db.StatusFailed, int64(0), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 2))

	_, err := p.Run(context.Background(), Selection{})
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunLogFailureDoesNotFailLoad(t *testing.T) {
	env, mock := mockEnv(t)

	var calls []string
	p := NewPipeline(env, Options{RunLog: true})
	p.stages = []Stage{fakeStage{name: "one", rows: 3, calls: &calls}}

	create := regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS `lc_dw`.etl_run_log")
	mock.ExpectExec(create).WillReturnError(assert.AnError)
	mock.ExpectExec(create).WillReturnError(assert.AnError)
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO one").WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()
	mock.ExpectExec(create).WillReturnError(assert.AnError)
	mock.ExpectExec(create).WillReturnError(assert.AnError)

	result, err := p.Run(context.Background(), Selection{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), result.Rows())
	assert.NoError(t, mock.ExpectationsWereMet())
}
