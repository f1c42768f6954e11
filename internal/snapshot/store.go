// Package snapshot persists per-request debug artifacts as JSON files keyed
// by season, gameweek, and artifact name. Snapshots are append-only
// diagnostics; nothing in the pipeline reads them back.
package snapshot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"pundit/pkg/logger"
)

// Store writes snapshots under a root directory. A Store with an empty root
// is disabled and every Save is a no-op.
type Store struct {
	root   string
	logger logger.Logger
}

// NewStore creates a snapshot store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{
		root:   dir,
		logger: logger.Get().Named("snapshot"),
	}
}

// Enabled reports whether snapshots will actually be written.
func (s *Store) Enabled() bool { return s.root != "" }

// Save writes v as indented JSON to <root>/<season>_GW<gw>/<name>.json,
// creating directories as needed. Failures are logged, never fatal: losing
// a diagnostic must not fail the request.
func (s *Store) Save(ctx context.Context, season string, gameweek int, name string, v any) {
	if !s.Enabled() {
		return
	}

	dir := filepath.Join(s.root, fmt.Sprintf("%s_GW%d", season, gameweek))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		s.logger.Warn(ctx, "snapshot dir creation failed", logger.String("dir", dir), logger.Error(err))
		return
	}

	buf := &bytes.Buffer{}
	enc := json.NewEncoder(buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		s.logger.Warn(ctx, "snapshot encode failed", logger.String("name", name), logger.Error(err))
		return
	}

	path := filepath.Join(dir, name+".json")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		s.logger.Warn(ctx, "snapshot write failed", logger.String("path", path), logger.Error(err))
		return
	}
	s.logger.Debug(ctx, "snapshot saved", logger.String("path", path))
}
