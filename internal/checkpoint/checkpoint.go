// Package checkpoint persists the boundary of the last fully completed
// prefix batch, enabling resumption after interruption.
//
// The checkpoint is a two-line text file:
//
//	<start-hex>-<end-hex>
//	<output file path>
//
// with the batch interval as 4-digit lowercase hex. The file exists only
// while a multi-batch run is in progress; it is replaced whole after every
// completed batch and deleted on normal completion, so its absence means
// either "never started" or "fully completed".
package checkpoint

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ErrNoCheckpoint is returned by Load when no checkpoint file exists.
var ErrNoCheckpoint = errors.New("checkpoint: not found")

// Checkpoint names the last fully completed batch and the dataset it was
// flushed to.
type Checkpoint struct {
	First  uint32 // batch start, inclusive
	Last   uint32 // batch end, exclusive
	Output string // dataset file path
}

// Manager reads and writes the checkpoint file at a fixed path.
type Manager struct {
	path string
}

// NewManager creates a manager for the checkpoint file at path.
func NewManager(path string) *Manager {
	return &Manager{path: path}
}

// Path returns the checkpoint file path.
func (m *Manager) Path() string {
	return m.path
}

// Save replaces the checkpoint file with cp. The write truncates; the file
// always names exactly the most recently completed batch. Callers must have
// durably flushed the batch's records first.
func (m *Manager) Save(cp Checkpoint) error {
	content := fmt.Sprintf("%04x-%04x\n%s", cp.First, cp.Last, cp.Output)
	if err := os.WriteFile(m.path, []byte(content), 0644); err != nil {
		return fmt.Errorf("checkpoint: write %s: %w", m.path, err)
	}
	return nil
}

// Load reads the checkpoint file. Returns ErrNoCheckpoint if none exists.
func (m *Manager) Load() (Checkpoint, error) {
	data, err := os.ReadFile(m.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Checkpoint{}, ErrNoCheckpoint
		}
		return Checkpoint{}, fmt.Errorf("checkpoint: read %s: %w", m.path, err)
	}

	lines := strings.SplitN(strings.TrimRight(string(data), "\n"), "\n", 2)
	if len(lines) < 2 {
		return Checkpoint{}, fmt.Errorf("checkpoint: malformed file %s", m.path)
	}

	first, last, ok := strings.Cut(lines[0], "-")
	if !ok {
		return Checkpoint{}, fmt.Errorf("checkpoint: malformed range %q", lines[0])
	}
	from, err := strconv.ParseUint(first, 16, 32)
	if err != nil {
		return Checkpoint{}, fmt.Errorf("checkpoint: parse range start %q: %w", first, err)
	}
	to, err := strconv.ParseUint(last, 16, 32)
	if err != nil {
		return Checkpoint{}, fmt.Errorf("checkpoint: parse range end %q: %w", last, err)
	}

	return Checkpoint{
		First:  uint32(from),
		Last:   uint32(to),
		Output: lines[1],
	}, nil
}

// Clear removes the checkpoint file. Removing a missing file is not an
// error.
func (m *Manager) Clear() error {
	if err := os.Remove(m.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("checkpoint: remove %s: %w", m.path, err)
	}
	return nil
}
