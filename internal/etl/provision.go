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
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/pgEdge/pgedge-dwload/internal/db"
	"github.com/pgEdge/pgedge-dwload/internal/logging"
	"github.com/pgEdge/pgedge-dwload/internal/schema"
)

// SchemaProvisioner executes a warehouse DDL file. The file is opaque
// ';'-delimited text; its statements run in the stage transaction.
type SchemaProvisioner struct {
	path string
}

// NewSchemaProvisioner returns the provisioning stage for the DDL file
// at path. An empty path disables provisioning.
func NewSchemaProvisioner(path string) *SchemaProvisioner {
	return &SchemaProvisioner{path: path}
}

// Name returns the stage name.
func (s *SchemaProvisioner) Name() string { return StageSchema }

// Description returns a short description of the stage.
func (s *SchemaProvisioner) Description() string {
	return "Execute the warehouse DDL file, if one is configured"
}

// Run executes the DDL. A missing file is not an error.
func (s *SchemaProvisioner) Run(ctx context.Context, tx db.Execer) (int64, error) {
	log := logging.Stage(StageSchema)

	if s.path == "" {
		log.Warn().Msg("DDL path not set; assuming the warehouse schema already exists")
		return 0, nil
	}

	text, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		log.Warn().Str("path", s.path).Msg("DDL file not found; skipping provisioning")
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read DDL file: %w", err)
	}

	log.Info().Str("path", s.path).Msg("Executing DDL")

	n, err := schema.Apply(ctx, tx, string(text))
	if err != nil {
		return 0, err
	}

	log.Debug().Int("statements", n).Msg("DDL executed")
	return 0, nil
}
