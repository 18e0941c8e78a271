package history

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/v0xg/stepforge/internal/action"
)

var fixedTime = time.Date(2026, 10, 19, 15, 30, 0, 0, time.UTC)

func sampleActions(t *testing.T) []action.Action {
	t.Helper()
	q, err := action.NewLocator("name", "q")
	require.NoError(t, err)
	btn, err := action.NewLocator("xpath", `//button[text()="Go" and @data-x="<a&b>"]`)
	require.NoError(t, err)
	bin, err := action.NewLocator("id", "bin")
	require.NoError(t, err)

	return []action.Action{
		action.Capture(action.NewNavigate("https://example.com", 2), action.ResultNavigate, fixedTime),
		action.Capture(action.NewRequest(action.SendKeys, q, action.Params{Text: "golang", Keys: []action.SpecialKey{action.KeyEnter}}), "golang", fixedTime),
		action.Capture(action.NewRequest(action.Click, btn, action.Params{}), action.ResultClick, fixedTime.Add(time.Second)),
		action.Capture(action.NewRequest(action.GetAttribute, btn, action.Params{Attribute: "data-missing"}), "", fixedTime),
		action.Capture(action.NewRequest(action.DragAndDrop, btn, action.Params{Target: bin}), action.ResultDragAndDrop, fixedTime),
	}
}

func TestLog(t *testing.T) {
	log := NewLog()
	actions := sampleActions(t)
	for _, a := range actions {
		log.Append(a)
	}

	require.Equal(t, len(actions), log.Len())
	assert.Equal(t, actions, log.List(), "entries stay in insertion order")

	listed := log.List()
	listed[0].URL = "https://mutated.example"
	assert.Equal(t, "https://example.com", log.List()[0].URL, "List returns a copy")

	log.Clear()
	assert.Equal(t, 0, log.Len())
	assert.Empty(t, log.List())
	assert.NotNil(t, log.List(), "an empty log lists as an empty sequence")
}

func TestSaveLoadRoundTrip(t *testing.T) {
	actions := sampleActions(t)

	var buf bytes.Buffer
	require.NoError(t, Save(&buf, actions))
	assert.Contains(t, buf.String(), `"locator_type": "XPATH"`)
	assert.Contains(t, buf.String(), `//button[text()=\"Go\"`)
	assert.Contains(t, buf.String(), `<a&b>`, "html characters are not escaped")
	assert.NotContains(t, buf.String(), "null")

	loaded, err := Load(&buf)
	require.NoError(t, err)
	assert.Equal(t, actions, loaded)
}

func TestLoadKeepsUnknownKinds(t *testing.T) {
	input := `[{"action": "scroll", "locator_type": "ID", "locator_value": "x", "timestamp": "2026-01-01 00:00:00"}]`
	loaded, err := Load(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, action.Kind("scroll"), loaded[0].Kind)
	assert.False(t, loaded[0].Kind.Known())
}

func TestLoadRejectsMalformed(t *testing.T) {
	_, err := Load(strings.NewReader(`{"action": "click"}`))
	assert.Error(t, err)
}

func TestCreateFileRemovesPartialOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "actions_partial.json")
	boom := errors.New("disk full")
	err := createFile(path, func(w io.Writer) error {
		_, _ = io.WriteString(w, "[{")
		return boom
	})
	assert.ErrorIs(t, err, boom)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestWriteFileReadFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	path, err := WriteFile(dir, sampleActions(t), fixedTime)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "actions_20261019_153000.json"), path)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	loaded, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, sampleActions(t), loaded)
}
