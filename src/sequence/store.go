package sequence

import (
	nImage "image"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/nfnt/resize"
	"github.com/seventv/AtlasProcessor/src/containers"
	"github.com/seventv/AtlasProcessor/src/image"
	"github.com/sirupsen/logrus"
)

// Store is an ordered list of frames. A source file is loaded at most once;
// frames built in memory are never deduplicated.
type Store struct {
	mtx     sync.RWMutex
	frames  []image.Frame
	sources map[string]struct{}
}

func New() *Store {
	return &Store{
		sources: map[string]struct{}{},
	}
}

// Append decodes path and adds its frames to the end of the sequence. An
// animated GIF adds one frame per GIF frame. A path that is already loaded is
// skipped without error.
func (s *Store) Append(path string) error {
	_, err := s.append(path)
	return err
}

func (s *Store) append(path string) (bool, error) {
	s.mtx.RLock()
	_, dup := s.sources[path]
	s.mtx.RUnlock()
	if dup {
		logrus.WithField("file", path).Debug("already loaded")
		return false, nil
	}

	frames, err := containers.DecodeAll(path)
	if err != nil {
		return false, err
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	// another caller may have won the race while decoding
	if _, dup := s.sources[path]; dup {
		return false, nil
	}
	s.sources[path] = struct{}{}
	s.frames = append(s.frames, frames...)

	return true, nil
}

// AppendFiles appends every path in order. A failing file is reported in the
// returned error and does not stop the rest of the batch.
func (s *Store) AppendFiles(paths []string) (int, error) {
	var (
		added int
		err   error
	)
	for _, p := range paths {
		ok, e := s.append(p)
		if e != nil {
			logrus.WithError(e).Warn("skipping file")
			err = multierror.Append(err, e)
			continue
		}
		if ok {
			added++
		}
	}

	return added, err
}

// AppendDir appends the supported images directly inside dir in name order.
func (s *Store) AppendDir(dir string) (int, error) {
	files, err := containers.ListDir(dir)
	if err != nil {
		return 0, err
	}
	return s.AppendFiles(files)
}

// AppendFrames appends copies of frames. Frames decoded from a file that is
// already loaded are skipped, and their files count as loaded afterwards.
func (s *Store) AppendFrames(frames []image.Frame) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	added := map[string]struct{}{}
	for _, f := range frames {
		src := f.Source()
		if src != "" {
			if _, dup := s.sources[src]; dup {
				logrus.WithField("file", src).Debug("already loaded")
				continue
			}
			added[src] = struct{}{}
		}
		s.frames = append(s.frames, f.Clone())
	}

	for src := range added {
		s.sources[src] = struct{}{}
	}
}

// Replace swaps the whole content for copies of frames.
func (s *Store) Replace(frames []image.Frame) {
	s.Clear()
	s.AppendFrames(frames)
}

// Swap exchanges the frames at i and j.
func (s *Store) Swap(i, j int) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	n := len(s.frames)
	if i < 0 || i >= n {
		return &image.IndexError{Index: i, Length: n}
	}
	if j < 0 || j >= n {
		return &image.IndexError{Index: j, Length: n}
	}

	s.frames[i], s.frames[j] = s.frames[j], s.frames[i]
	return nil
}

// Reorder handles a drop of the item at from onto the item at to. It is a
// single swap, not a move.
func (s *Store) Reorder(from, to int) error {
	return s.Swap(from, to)
}

func (s *Store) Clear() {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.frames = nil
	s.sources = map[string]struct{}{}
}

// Frames returns the current order. The frames must be treated as read-only.
func (s *Store) Frames() []image.Frame {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	return append([]image.Frame(nil), s.frames...)
}

func (s *Store) Paths() []string {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	paths := make([]string, len(s.frames))
	for i, f := range s.frames {
		paths[i] = f.Path
	}
	return paths
}

func (s *Store) Len() int {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	return len(s.frames)
}

// Thumbnails scales every frame to fit a size x size box, keeping the aspect
// ratio.
func (s *Store) Thumbnails(size int) []nImage.Image {
	frames := s.Frames()
	out := make([]nImage.Image, len(frames))
	for i, f := range frames {
		if f.Empty() {
			out[i] = nImage.NewNRGBA(nImage.Rect(0, 0, 0, 0))
			continue
		}
		out[i] = resize.Thumbnail(uint(size), uint(size), f.Pixels, resize.Bicubic)
	}
	return out
}
