package fs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aretw0/quill/pkg/core"
)

// sequenceState is the persisted identifier counter.
type sequenceState struct {
	Version int     `json:"version"`
	LastID  core.ID `json:"last_id"`
}

// sequence hands out identifiers that are never reused, even after the
// highest note is deleted. It lives in {path}/{systemDir}/sequence.json.
// Callers serialise access.
type sequence struct {
	Path  string
	state sequenceState
}

func newSequence(storePath, systemDir string) *sequence {
	return &sequence{
		Path:  filepath.Join(storePath, systemDir, "sequence.json"),
		state: sequenceState{Version: 1},
	}
}

// Load reads the counter. A missing file starts from floor, the highest id
// on disk. A corrupted file is an error: the ids of deleted notes are only
// recorded there, and guessing could hand one out again.
func (s *sequence) Load(floor core.ID) error {
	data, err := os.ReadFile(s.Path)
	switch {
	case os.IsNotExist(err):
		s.state.LastID = floor
		return nil
	case err != nil:
		return fmt.Errorf("failed to read sequence: %w", err)
	}

	var st sequenceState
	if err := json.Unmarshal(data, &st); err != nil {
		return fmt.Errorf("corrupt sequence %s: %w", s.Path, err)
	}
	s.state = st
	if s.state.LastID < floor {
		s.state.LastID = floor
	}
	return nil
}

// Next reserves and persists the next identifier.
func (s *sequence) Next() (core.ID, error) {
	next := s.state
	next.LastID++

	data, err := json.MarshalIndent(next, "", "  ")
	if err != nil {
		return 0, fmt.Errorf("failed to marshal sequence: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.Path), 0755); err != nil {
		return 0, fmt.Errorf("failed to create system directory: %w", err)
	}
	if err := replaceFile(s.Path, data); err != nil {
		return 0, fmt.Errorf("failed to persist sequence: %w", err)
	}

	s.state = next
	return next.LastID, nil
}

// Last returns the most recently reserved identifier.
func (s *sequence) Last() core.ID {
	return s.state.LastID
}
