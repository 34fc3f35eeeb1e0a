package configure

import (
	"image/color"
	"os"
	"path/filepath"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/sirupsen/logrus"
)

// DefaultOutputDir is the user's desktop, falling back to the home directory
// and then the working directory.
func DefaultOutputDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}

	desktop := filepath.Join(home, "Desktop")
	if info, err := os.Stat(desktop); err == nil && info.IsDir() {
		return desktop
	}

	return home
}

// BackgroundColor parses the configured hex colour, white when it is invalid.
func (c *Config) BackgroundColor() color.Color {
	return ParseColor(c.Background)
}

func ParseColor(hex string) color.Color {
	col, err := colorful.Hex(hex)
	if err != nil {
		logrus.WithField("background", hex).Warn("invalid colour, using white")
		return color.White
	}

	r, g, b := col.Clamped().RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 0xff}
}
