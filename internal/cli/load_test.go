package cli

import (
	"strings"
	"testing"

	"github.com/pgEdge/pgedge-dwload/internal/config"
	"github.com/pgEdge/pgedge-dwload/internal/etl"
)

func TestValidateSelection(t *testing.T) {
	tests := []struct {
		name      string
		sel       etl.Selection
		wantError string
	}{
		{name: "all stages", sel: etl.Selection{}},
		{name: "from calendar", sel: etl.Selection{From: etl.StageCalendar}},
		{name: "only performance", sel: etl.Selection{Only: etl.StagePerformance}},
		{name: "unknown from", sel: etl.Selection{From: "facts"}, wantError: "unknown stage"},
		{name: "unknown only", sel: etl.Selection{Only: "dates"}, wantError: "unknown stage"},
		{
			name:      "both flags",
			sel:       etl.Selection{From: etl.StageLocation, Only: etl.StageCalendar},
			wantError: "mutually exclusive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateSelection(tt.sel)
			if tt.wantError == "" {
				if err != nil {
					t.Errorf("Expected no error, got: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantError) {
				t.Errorf("Expected error containing %q, got: %v", tt.wantError, err)
			}
		})
	}
}

func TestLoadRejectsUnknownStageBeforeConnecting(t *testing.T) {
	saved := cfg
	t.Cleanup(func() {
		cfg = saved
		loadOnly = ""
	})

	// Nothing listens on port 1, so reaching db.Open would surface a
	// connection error instead of the stage error.
	cfg = config.DefaultConfig()
	cfg.Database = config.DatabaseConfig{Host: "127.0.0.1", Port: 1, User: "etl", Name: "lending", SSLMode: "disable"}
	cfg.Schemas = config.SchemaConfig{Source: "lc_src", Warehouse: "lc_dw"}
	loadOnly = "dates"

	err := runLoad(loadCmd, nil)
	if err == nil {
		t.Fatal("Expected an error for an unknown stage")
	}
	if !strings.Contains(err.Error(), `unknown stage "dates"`) {
		t.Errorf("Expected unknown stage error, got: %v", err)
	}
	if strings.Contains(err.Error(), "connect") {
		t.Errorf("Expected no connection attempt, got: %v", err)
	}
}
