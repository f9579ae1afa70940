// Package status owns the durable status document: the latest RunResult
// per job plus batch counters, kept as human-readable JSON.
package status

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"backsync/internal/model"
	"backsync/internal/syncerr"

	"go.uber.org/zap"
)

type Store struct {
	path string
	log  *zap.Logger
	doc  *model.StatusDocument
}

func NewStore(path string, log *zap.Logger) *Store {
	return &Store{
		path: path,
		log:  log,
		doc:  model.NewStatusDocument(),
	}
}

// Load reads the persisted document. A missing file is the documented
// never-run state; any other read failure falls back to the same empty
// default so a batch can always proceed.
func (s *Store) Load() *model.StatusDocument {
	s.doc = model.NewStatusDocument()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.log.Error("failed to load status, starting empty",
				zap.Error(fmt.Errorf("%w: %w", syncerr.ErrStatusLoad, err)))
		}
		return s.doc
	}

	doc := model.NewStatusDocument()
	if err := json.Unmarshal(data, doc); err != nil {
		s.log.Error("failed to parse status, starting empty",
			zap.Error(fmt.Errorf("%w: %w", syncerr.ErrStatusLoad, err)))
		return s.doc
	}

	if doc.Jobs == nil {
		doc.Jobs = make(map[string]model.RunResult)
	}
	s.doc = doc
	return s.doc
}

// Document exposes the in-memory view without reloading.
func (s *Store) Document() *model.StatusDocument {
	return s.doc
}

// RecordRun upserts the job's latest result. History lives elsewhere.
func (s *Store) RecordRun(result model.RunResult) {
	s.doc.Jobs[result.Name] = result
}

// FinalizeRun stamps the batch onto the document; called exactly once per
// batch, after every job has been attempted.
func (s *Store) FinalizeRun(batchStart time.Time, successful, failed int) {
	s.doc.LastRun = &batchStart
	s.doc.TotalRuns++
	s.doc.LastSummary = &model.Summary{
		Successful: successful,
		Failed:     failed,
		Total:      successful + failed,
	}
}

// Persist writes the full document atomically. Callers log and swallow
// the error; a persist failure never aborts the batch.
func (s *Store) Persist() error {
	data, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %w", syncerr.ErrStatusPersist, err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("%w: %w", syncerr.ErrStatusPersist, err)
	}

	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("%w: %w", syncerr.ErrStatusPersist, err)
	}

	return nil
}
