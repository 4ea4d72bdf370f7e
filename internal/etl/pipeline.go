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
	"time"

	"github.com/pgEdge/pgedge-dwload/internal/db"
	"github.com/pgEdge/pgedge-dwload/internal/logging"
)

// Stage names, in pipeline order.
const (
	StageSchema       = "schema"
	StageReference    = "reference"
	StageLocation     = "location"
	StageCalendar     = "calendar"
	StageOriginations = "originations"
	StagePerformance  = "performance"
)

// Stage is one step of the load. Run executes inside a transaction the
// pipeline owns and returns the number of rows it wrote.
type Stage interface {
	Name() string
	Description() string
	Run(ctx context.Context, tx db.Execer) (int64, error)
}

// StageError reports the stage a load failed in. It unwraps to the
// underlying error.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Selection restricts which stages run. From runs the named stage and
// every later one; Only runs a single stage. The zero value runs all.
type Selection struct {
	From string
	Only string
}

// Options configures a pipeline.
type Options struct {
	// DDLPath is the warehouse DDL file for the schema stage.
	DDLPath string

	// RunLog records progress in the warehouse run log table.
	RunLog bool
}

// StageResult is the outcome of one completed stage.
type StageResult struct {
	Name     string
	Rows     int64
	Duration time.Duration
}

// Result is the outcome of a pipeline run.
type Result struct {
	RunID    string
	Stages   []StageResult
	Duration time.Duration
}

// Rows returns the total rows written.
func (r *Result) Rows() int64 {
	var n int64
	for _, s := range r.Stages {
		n += s.Rows
	}
	return n
}

// Pipeline runs the stages in order, each in its own transaction. A
// failed stage is rolled back and stops the run; stages committed before
// it stay committed.
type Pipeline struct {
	env    *Env
	stages []Stage

	runLog       *db.RunLog
	runLogReady  bool
	runLogWarned bool
}

// NewPipeline returns the six-stage load pipeline.
func NewPipeline(env *Env, opts Options) *Pipeline {
	p := &Pipeline{
		env: env,
		stages: []Stage{
			NewSchemaProvisioner(opts.DDLPath),
			NewReferenceLoader(env),
			NewLocationLoader(env),
			NewCalendarGenerator(env),
			NewOriginationLoader(env),
			NewPerformanceLoader(env),
		},
	}
	if opts.RunLog {
		p.runLog = db.NewRunLog(env.DB, env.Dialect, env.WarehouseSchema)
	}
	return p
}

// Stages returns the stages in execution order.
func (p *Pipeline) Stages() []Stage {
	return append([]Stage(nil), p.stages...)
}

// StageNames returns the stage names in execution order.
func (p *Pipeline) StageNames() []string {
	names := make([]string, len(p.stages))
	for i, s := range p.stages {
		names[i] = s.Name()
	}
	return names
}

// Select returns the stages chosen by sel, in execution order.
func (p *Pipeline) Select(sel Selection) ([]Stage, error) {
	if sel.From != "" && sel.Only != "" {
		return nil, fmt.Errorf("--from and --only are mutually exclusive")
	}

	name := sel.From
	if sel.Only != "" {
		name = sel.Only
	}
	if name == "" {
		return p.Stages(), nil
	}

	for i, s := range p.stages {
		if s.Name() != name {
			continue
		}
		if sel.Only != "" {
			return []Stage{s}, nil
		}
		return append([]Stage(nil), p.stages[i:]...), nil
	}
	return nil, fmt.Errorf("unknown stage %q (valid: %s)", name, strings.Join(p.StageNames(), ", "))
}

// Run executes the selected stages.
func (p *Pipeline) Run(ctx context.Context, sel Selection) (*Result, error) {
	stages, err := p.Select(sel)
	if err != nil {
		return nil, err
	}

	result := &Result{RunID: db.NewRunID()}
	started := time.Now()

	logging.Info().
		Str("run_id", result.RunID).
		Str("dialect", p.env.Dialect.Name()).
		Str("source", p.env.SourceSchema).
		Str("warehouse", p.env.WarehouseSchema).
		Int("stages", len(stages)).
		Msg("Starting load")

	p.record(ctx, db.RunEntry{
		RunID:     result.RunID,
		Stage:     db.RunStage,
		Status:    db.StatusRunning,
		StartedAt: started,
	})

	for _, stage := range stages {
		sr, err := p.runStage(ctx, result.RunID, stage)
		if err != nil {
			result.Duration = time.Since(started)
			p.finish(ctx, result, started, err)
			return result, err
		}
		result.Stages = append(result.Stages, sr)
	}

	result.Duration = time.Since(started)
	p.finish(ctx, result, started, nil)

	logging.Info().
		Str("run_id", result.RunID).
		Int64("rows", result.Rows()).
		Dur("duration", result.Duration).
		Msg("Load completed successfully")

	return result, nil
}

func (p *Pipeline) runStage(ctx context.Context, runID string, stage Stage) (StageResult, error) {
	log := logging.Stage(stage.Name())
	log.Info().Msg("Stage started")

	started := time.Now()
	p.record(ctx, db.RunEntry{
		RunID:     runID,
		Stage:     stage.Name(),
		Status:    db.StatusRunning,
		StartedAt: started,
	})

	var rows int64
	err := p.env.DB.InTx(ctx, func(tx db.Execer) error {
		n, err := stage.Run(ctx, tx)
		rows = n
		return err
	})
	finished := time.Now()

	entry := db.RunEntry{
		RunID:      runID,
		Stage:      stage.Name(),
		Status:     db.StatusSucceeded,
		Rows:       rows,
		StartedAt:  started,
		FinishedAt: &finished,
	}

	if err != nil {
		entry.Status = db.StatusFailed
		entry.Rows = 0
		entry.Error = err.Error()
		p.record(ctx, entry)
		return StageResult{}, &StageError{Stage: stage.Name(), Err: err}
	}
	p.record(ctx, entry)

	sr := StageResult{Name: stage.Name(), Rows: rows, Duration: finished.Sub(started)}
	log.Info().
		Int64("rows", sr.Rows).
		Dur("duration", sr.Duration).
		Msg("Stage completed")
	return sr, nil
}

func (p *Pipeline) finish(ctx context.Context, result *Result, started time.Time, runErr error) {
	finished := started.Add(result.Duration)
	entry := db.RunEntry{
		RunID:      result.RunID,
		Stage:      db.RunStage,
		Status:     db.StatusSucceeded,
		Rows:       result.Rows(),
		StartedAt:  started,
		FinishedAt: &finished,
	}
	if runErr != nil {
		entry.Status = db.StatusFailed
		entry.Error = runErr.Error()
	}
	p.record(ctx, entry)
}

// record writes a run log entry. The run log never fails a load: it is
// written outside the stage transactions, survives cancellation of ctx,
// and problems are logged as warnings.
func (p *Pipeline) record(ctx context.Context, e db.RunEntry) {
	if p.runLog == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)

	if !p.runLogReady {
		if err := p.runLog.Ensure(ctx); err != nil {
			// The warehouse schema may not exist until the schema stage
			// has run.
			if p.runLogWarned {
				logging.Debug().Err(err).Msg("Run log unavailable")
			} else {
				logging.Warn().Err(err).Msg("Run log unavailable")
				p.runLogWarned = true
			}
			return
		}
		p.runLogReady = true
	}

	if err := p.runLog.Record(ctx, e); err != nil {
		logging.Warn().Err(err).Msg("Failed to update run log")
	}
}
