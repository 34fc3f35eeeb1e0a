package configure

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/seventv/AtlasProcessor/src/tilegrid"
	"github.com/sirupsen/logrus"
)

var (
	ErrNotANumber      = fmt.Errorf("value is not a number")
	ErrNotPositive     = fmt.Errorf("value must be greater than zero")
	ErrFrameRateBounds = fmt.Errorf("frame rate must be between %d and %d", MinFrameRate, MaxFrameRate)
)

// Settings holds the conversion parameters every panel reads: the grid and
// the frame rate. Writes go through the Set* parsers, which keep the previous
// value when the input is rejected.
type Settings struct {
	mtx       sync.RWMutex
	grid      tilegrid.Spec
	frameRate int
	onChange  []func(tilegrid.Spec, int)
}

func NewSettings(cfg *Config) *Settings {
	s := &Settings{
		grid:      tilegrid.Default,
		frameRate: DefaultFrameRate,
	}
	if cfg == nil {
		return s
	}

	if g, err := tilegrid.New(cfg.Rows, cfg.Columns); err == nil {
		s.grid = g
	} else {
		logrus.WithField("rows", cfg.Rows).WithField("columns", cfg.Columns).Warn("invalid grid, using 1x1")
	}

	if ValidFrameRate(cfg.FrameRate) {
		s.frameRate = cfg.FrameRate
	} else {
		logrus.WithField("frame_rate", cfg.FrameRate).Warnf("invalid frame rate, using %d", DefaultFrameRate)
	}

	return s
}

func ValidFrameRate(fps int) bool {
	return fps >= MinFrameRate && fps <= MaxFrameRate
}

func (s *Settings) Grid() tilegrid.Spec {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	return s.grid
}

func (s *Settings) FrameRate() int {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	return s.frameRate
}

// OnChange registers fn to be called after every accepted update.
func (s *Settings) OnChange(fn func(grid tilegrid.Spec, frameRate int)) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	s.onChange = append(s.onChange, fn)
}

func (s *Settings) SetRowsText(text string) error {
	n, err := parsePositive(text)
	if err != nil {
		return err
	}
	s.update(func() { s.grid.Rows = n })
	return nil
}

func (s *Settings) SetColumnsText(text string) error {
	n, err := parsePositive(text)
	if err != nil {
		return err
	}
	s.update(func() { s.grid.Columns = n })
	return nil
}

func (s *Settings) SetFrameRateText(text string) error {
	n, err := parsePositive(text)
	if err != nil {
		return err
	}
	if !ValidFrameRate(n) {
		return ErrFrameRateBounds
	}
	s.update(func() { s.frameRate = n })
	return nil
}

func (s *Settings) update(fn func()) {
	s.mtx.Lock()
	fn()
	grid, fps := s.grid, s.frameRate
	listeners := append([]func(tilegrid.Spec, int){}, s.onChange...)
	s.mtx.Unlock()

	for _, l := range listeners {
		l(grid, fps)
	}
}

func parsePositive(text string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return 0, ErrNotANumber
	}
	if n <= 0 {
		return 0, ErrNotPositive
	}
	return n, nil
}
