package job

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"time"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var (
	ErrNoSteps       = fmt.Errorf("job has no steps")
	ErrUnknownAction = fmt.Errorf("unknown action")
)

// Action names a conversion the command line and job files can request.
type Action string

const (
	ToAtlas       Action = "to-atlas"
	ToSequence    Action = "to-sequence"
	ToGif         Action = "to-gif"
	AtlasToGif    Action = "atlas-to-gif"
	GifToSequence Action = "gif-to-sequence"
	GifToAtlas    Action = "gif-to-atlas"
	Preview       Action = "preview"
	Overlay       Action = "overlay"
	ToAvi         Action = "to-avi"
)

var Actions = []Action{ToAtlas, ToSequence, ToGif, AtlasToGif, GifToSequence, GifToAtlas, Preview, Overlay, ToAvi}

func (a Action) Valid() bool {
	for _, v := range Actions {
		if v == a {
			return true
		}
	}
	return false
}

// Job is a batch of conversions read from a JSON file. Zero values fall back
// to the loaded configuration.
type Job struct {
	ID string `json:"id"`

	Rows      int    `json:"rows"`
	Columns   int    `json:"columns"`
	FrameRate int    `json:"frame_rate"`
	OutputDir string `json:"output_dir"`

	Steps []Step `json:"steps"`
}

type Step struct {
	Action Action   `json:"action"`
	Inputs []string `json:"inputs"`
}

func Load(path string) (Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Job{}, err
	}
	return Parse(data)
}

func Parse(data []byte) (Job, error) {
	j := Job{}
	if err := json.Unmarshal(data, &j); err != nil {
		return Job{}, err
	}

	if len(j.Steps) == 0 {
		return Job{}, ErrNoSteps
	}
	for i, s := range j.Steps {
		if !s.Action.Valid() {
			return Job{}, fmt.Errorf("step %d: %w: %q", i, ErrUnknownAction, s.Action)
		}
	}

	return j, nil
}

// File describes one written output.
type File struct {
	Name        string        `json:"name"`
	Path        string        `json:"path"`
	Size        int           `json:"size"`
	ContentType string        `json:"content_type"`
	Animated    bool          `json:"animated"`
	Frames      int           `json:"frames"`
	TimeTaken   time.Duration `json:"time_taken"`
}

// Describe stats path and fills a File for it. Directories report the total
// size of the files directly inside them.
func Describe(path string, frames int, took time.Duration) (File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return File{}, err
	}

	f := File{
		Name:        filepath.Base(path),
		Path:        path,
		Size:        int(info.Size()),
		ContentType: mime.TypeByExtension(filepath.Ext(path)),
		Animated:    frames > 1,
		Frames:      frames,
		TimeTaken:   took,
	}

	if info.IsDir() {
		f.Size = 0
		f.ContentType = "inode/directory"
		entries, err := os.ReadDir(path)
		if err != nil {
			return File{}, err
		}
		for _, e := range entries {
			if i, err := e.Info(); err == nil && !i.IsDir() {
				f.Size += int(i.Size())
			}
		}
	}

	return f, nil
}

type Result struct {
	JobID   string `json:"job_id,omitempty"`
	TaskID  string `json:"task_id"`
	Action  string `json:"action"`
	Success bool   `json:"success"`
	Files   []File `json:"files"`
	Error   string `json:"error,omitempty"`
}

func (r Result) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
