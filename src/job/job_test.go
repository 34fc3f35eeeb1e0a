package job

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	j, err := Parse([]byte(`{
		"id": "batch-1",
		"rows": 2,
		"columns": 3,
		"steps": [
			{"action": "to-atlas", "inputs": ["a.png", "b.png"]},
			{"action": "gif-to-sequence", "inputs": ["c.gif"]}
		]
	}`))
	require.NoError(t, err)

	assert.Equal(t, "batch-1", j.ID)
	assert.Equal(t, 2, j.Rows)
	assert.Equal(t, 0, j.FrameRate)
	require.Len(t, j.Steps, 2)
	assert.Equal(t, ToAtlas, j.Steps[0].Action)
	assert.Equal(t, []string{"c.gif"}, j.Steps[1].Inputs)
}

func TestParseErrors(t *testing.T) {
	_, err := Parse([]byte(`{"id": "x"}`))
	assert.ErrorIs(t, err, ErrNoSteps)

	_, err = Parse([]byte(`{"steps": [{"action": "explode"}]}`))
	assert.ErrorIs(t, err, ErrUnknownAction)

	_, err = Parse([]byte(`{`))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "job.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"steps":[{"action":"preview","inputs":["x.png"]}]}`), 0600))

	j, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Preview, j.Steps[0].Action)
}

func TestDescribe(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "atlas_1.gif")
	require.NoError(t, os.WriteFile(file, []byte("GIF89a;"), 0600))

	f, err := Describe(file, 4, time.Second)
	require.NoError(t, err)
	assert.Equal(t, "atlas_1.gif", f.Name)
	assert.Equal(t, 7, f.Size)
	assert.Equal(t, "image/gif", f.ContentType)
	assert.True(t, f.Animated)

	d, err := Describe(dir, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, 7, d.Size)
	assert.Equal(t, "inode/directory", d.ContentType)
}

func TestResultMarshal(t *testing.T) {
	b, err := Result{TaskID: "t", Action: "to-gif", Success: true}.Marshal()
	require.NoError(t, err)
	assert.JSONEq(t, `{"task_id":"t","action":"to-gif","success":true,"files":null}`, string(b))
}
