package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestInitLevel(t *testing.T) {
	defer Init(DefaultConfig())

	var buf bytes.Buffer
	Init(Config{Level: "warn", Output: &buf})

	Info().Msg("hidden")
	Warn().Msg("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("Info message should be filtered at warn level: %s", out)
	}
	if !strings.Contains(out, "shown") {
		t.Errorf("Warn message missing: %s", out)
	}
}

func TestInitInvalidLevelFallsBackToInfo(t *testing.T) {
	defer Init(DefaultConfig())

	var buf bytes.Buffer
	Init(Config{Level: "chatty", Output: &buf})

	Debug().Msg("debug")
	Info().Msg("info")

	out := buf.String()
	if strings.Contains(out, `"debug"`) {
		t.Errorf("Debug should be filtered: %s", out)
	}
	if !strings.Contains(out, `"message":"info"`) {
		t.Errorf("Expected JSON info line, got: %s", out)
	}
}

func TestStageLogger(t *testing.T) {
	defer Init(DefaultConfig())

	var buf bytes.Buffer
	Init(Config{Level: "info", Output: &buf})

	log := Stage("calendar")
	log.Info().Msg("populated")

	if !strings.Contains(buf.String(), `"stage":"calendar"`) {
		t.Errorf("Expected stage field, got: %s", buf.String())
	}
}

func TestStageLoggerChained(t *testing.T) {
	defer Init(DefaultConfig())

	var buf bytes.Buffer
	Init(Config{Level: "debug", Output: &buf})

	Stage("location").Debug().Int64("rows", 3).Msg("loaded")

	out := buf.String()
	if !strings.Contains(out, `"stage":"location"`) || !strings.Contains(out, `"rows":3`) {
		t.Errorf("Expected stage and rows fields, got: %s", out)
	}
}
