package palette

import (
	"image"
	"image/color"
	"math"
	"slices"
	"strings"

	"github.com/cenkalti/dominantcolor"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"
	"github.com/sirupsen/logrus"
)

type Method string

const (
	KMeans        Method = "kmeans"
	DominantColor Method = "dominantcolor"
)

// MaxSamples bounds the number of pixels fed to the clustering step.
const MaxSamples = 12000

func ParseMethod(s string) Method {
	switch Method(strings.ToLower(strings.TrimSpace(s))) {
	case DominantColor:
		return DominantColor
	default:
		return KMeans
	}
}

// Extract builds a single palette of at most k opaque colours shared by all
// images. When the images hold k or fewer distinct colours the palette is
// exact.
func Extract(images []image.Image, k int, method Method) color.Palette {
	if k <= 0 {
		return nil
	}

	samples := Sample(images, MaxSamples)
	if len(samples) == 0 {
		return nil
	}

	distinct := unique(samples)
	if len(distinct) <= k {
		return toPalette(distinct)
	}

	switch method {
	case DominantColor:
		return dominant(samples, k)
	default:
		p := clustered(samples, k)
		if len(p) != 0 {
			return p
		}
		logrus.Warn("palette: kmeans returned an empty palette, falling back to dominantcolor")
		return dominant(samples, k)
	}
}

// Sample draws an evenly spaced grid of opaque pixels from every image, about
// limit pixels in total.
func Sample(images []image.Image, limit int) []color.NRGBA {
	total := 0
	for _, img := range images {
		if img == nil {
			continue
		}
		b := img.Bounds()
		total += b.Dx() * b.Dy()
	}
	if total == 0 {
		return nil
	}

	step := 1
	if limit > 0 && total > limit {
		step = int(math.Sqrt(float64(total)/float64(limit))) + 1
	}

	out := make([]color.NRGBA, 0, min(total, max(limit, 1)))
	for _, img := range images {
		if img == nil {
			continue
		}
		b := img.Bounds()
		for y := b.Min.Y; y < b.Max.Y; y += step {
			for x := b.Min.X; x < b.Max.X; x += step {
				c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
				if c.A == 0 {
					continue
				}
				c.A = 0xff
				out = append(out, c)
			}
		}
	}

	return out
}

func unique(samples []color.NRGBA) []color.NRGBA {
	seen := make(map[color.NRGBA]struct{}, len(samples))
	out := []color.NRGBA{}
	for _, c := range samples {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}

	slices.SortFunc(out, func(a, b color.NRGBA) int {
		return int(pack(a)) - int(pack(b))
	})
	return out
}

func pack(c color.NRGBA) uint32 {
	return uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
}

func toPalette(cols []color.NRGBA) color.Palette {
	p := make(color.Palette, 0, len(cols))
	for _, c := range cols {
		p = append(p, c)
	}
	return p
}

func clustered(samples []color.NRGBA, k int) color.Palette {
	dataset := make(clusters.Observations, 0, len(samples))
	for _, c := range samples {
		dataset = append(dataset, clusters.Coordinates{
			float64(c.R) / 255.0,
			float64(c.G) / 255.0,
			float64(c.B) / 255.0,
		})
	}

	km := kmeans.New()
	cc, err := km.Partition(dataset, k)
	if err != nil || len(cc) == 0 {
		logrus.WithError(err).Debug("palette: kmeans partition failed")
		return nil
	}

	// most populated clusters first
	slices.SortFunc(cc, func(a, b clusters.Cluster) int {
		return len(b.Observations) - len(a.Observations)
	})

	out := make([]color.NRGBA, 0, len(cc))
	for _, c := range cc {
		if len(c.Observations) == 0 || len(c.Center) < 3 {
			continue
		}
		col := colorful.Color{R: c.Center[0], G: c.Center[1], B: c.Center[2]}
		out = append(out, toNRGBA(col))
	}

	return dedupe(out)
}

func dominant(samples []color.NRGBA, k int) color.Palette {
	side := int(math.Ceil(math.Sqrt(float64(len(samples)))))
	img := image.NewNRGBA(image.Rect(0, 0, side, side))
	for i := 0; i < side*side; i++ {
		img.SetNRGBA(i%side, i/side, samples[i%len(samples)])
	}

	found := dominantcolor.FindWeight(img, k)
	out := make([]color.NRGBA, 0, len(found))
	for _, c := range found {
		col, ok := colorful.MakeColor(c.RGBA)
		if !ok {
			continue
		}
		out = append(out, toNRGBA(col))
	}

	if len(out) == 0 {
		// keep the encoder supplied with at least one colour
		return color.Palette{samples[0]}
	}
	return dedupe(out)
}

func toNRGBA(c colorful.Color) color.NRGBA {
	r, g, b := c.Clamped().RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 0xff}
}

func dedupe(cols []color.NRGBA) color.Palette {
	seen := make(map[color.NRGBA]struct{}, len(cols))
	p := make(color.Palette, 0, len(cols))
	for _, c := range cols {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		p = append(p, c)
	}
	return p
}
