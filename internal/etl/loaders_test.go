package etl

import (
	"bytes"
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgEdge/pgedge-dwload/internal/logging"
)

// captureLogs routes debug output into a buffer for the rest of the test.
func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	logging.Init(logging.Config{Level: "debug", Output: &buf})
	t.Cleanup(func() { logging.Init(logging.DefaultConfig()) })
	return &buf
}

func TestLocationLoaderRun(t *testing.T) {
	env, mock := mockEnv(t)
	logs := captureLogs(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT IGNORE INTO `lc_dw`.dim_location (state_code, zip3)")).
		WillReturnResult(sqlmock.NewResult(0, 7))

	n, err := NewLocationLoader(env).Run(context.Background(), env.DB)
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)
	assert.Contains(t, logs.String(), `"stage":"location"`)
	assert.Contains(t, logs.String(), `"rows":7`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLocationLoaderRunError(t *testing.T) {
	env, mock := mockEnv(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT IGNORE INTO `lc_dw`.dim_location")).
		WillReturnError(assert.AnError)

	n, err := NewLocationLoader(env).Run(context.Background(), env.DB)
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
	assert.Contains(t, err.Error(), "failed to load dim_location")
	assert.Zero(t, n)
}

func TestFactLoaderRun(t *testing.T) {
	tests := []struct {
		name   string
		loader func(*Env) *FactLoader
		prefix string
		stage  string
	}{
		{"originations", NewOriginationLoader, "REPLACE INTO `lc_dw`.fact_originations (", StageOriginations},
		{"performance", NewPerformanceLoader, "REPLACE INTO `lc_dw`.fact_performance_snapshot (", StagePerformance},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, mock := mockEnv(t)
			logs := captureLogs(t)

			mock.ExpectExec(regexp.QuoteMeta(tt.prefix)).
				WillReturnResult(sqlmock.NewResult(0, 11))

			n, err := tt.loader(env).Run(context.Background(), env.DB)
			require.NoError(t, err)
			assert.Equal(t, int64(11), n)
			assert.Contains(t, logs.String(), `"stage":"`+tt.stage+`"`)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestFactLoaderRunError(t *testing.T) {
	env, mock := mockEnv(t)

	mock.ExpectExec(regexp.QuoteMeta("REPLACE INTO `lc_dw`.fact_performance_snapshot")).
		WillReturnError(assert.AnError)

	_, err := NewPerformanceLoader(env).Run(context.Background(), env.DB)
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
	assert.Contains(t, err.Error(), "failed to load fact_performance_snapshot")
}
