// Package screenshot keeps the ordered list of page captures taken during a
// session and renders them, with the pointer marked, into an animated GIF.
package screenshot

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/v0xg/stepforge/internal/action"
	"github.com/v0xg/stepforge/internal/executor"
)

// Shot is one capture, taken after a navigation or an action
type Shot struct {
	Timestamp string // action.TimestampLayout
	Kind      action.Kind
	PNG       []byte
	Pointer   *executor.Pointer // where the action landed, if known
}

// Sink is an append-only list of shots. Like the action log it has a
// single owner and no locking.
type Sink struct {
	shots []Shot
}

func NewSink() *Sink {
	return &Sink{}
}

func (s *Sink) Add(shot Shot) {
	s.shots = append(s.shots, shot)
}

// List returns the shots in capture order
func (s *Sink) List() []Shot {
	out := make([]Shot, len(s.shots))
	copy(out, s.shots)
	return out
}

func (s *Sink) Len() int {
	return len(s.shots)
}

func (s *Sink) Clear() {
	s.shots = nil
}

// WriteFiles saves every shot as <prefix>_NNN.png in dir and returns the paths
func (s *Sink) WriteFiles(dir, prefix string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating screenshot directory: %w", err)
	}
	paths := make([]string, 0, len(s.shots))
	for i, shot := range s.shots {
		path := filepath.Join(dir, fmt.Sprintf("%s_%03d.png", prefix, i+1))
		if err := os.WriteFile(path, shot.PNG, 0o644); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}
