package history

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/v0xg/stepforge/internal/action"
)

// FilePrefix starts every saved log name
const FilePrefix = "actions_"

// Save writes actions as an indented JSON array of flat records.
func Save(w io.Writer, actions []action.Action) error {
	records := make([]action.Record, 0, len(actions))
	for _, a := range actions {
		records = append(records, action.ToRecord(a))
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("encoding action log: %w", err)
	}
	return nil
}

// Load parses a JSON action log. Entries with unknown kinds are kept.
func Load(r io.Reader) ([]action.Action, error) {
	var records []action.Record
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("decoding action log: %w", err)
	}
	actions := make([]action.Action, 0, len(records))
	for _, rec := range records {
		actions = append(actions, action.FromRecord(rec))
	}
	return actions, nil
}

// BaseName returns the timestamped file stem used for a save at t,
// e.g. actions_20261019_153000.
func BaseName(t time.Time) string {
	return FilePrefix + t.Format("20060102_150405")
}

// WriteFile saves actions into dir under BaseName(t) + ".json" and returns the path.
func WriteFile(dir string, actions []action.Action, t time.Time) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}
	path := filepath.Join(dir, BaseName(t)+".json")
	if err := createFile(path, func(w io.Writer) error { return Save(w, actions) }); err != nil {
		return "", err
	}
	return path, nil
}

// createFile writes path through write; on failure no partial file is left.
func createFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	err = write(f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return err
	}
	return nil
}

// ReadFile loads a saved action log
func ReadFile(path string) ([]action.Action, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f)
}
