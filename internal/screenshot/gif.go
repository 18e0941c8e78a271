package screenshot

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/gif"
	"image/png"
	"io"
	"os"
	"sort"

	"github.com/nfnt/resize"
)

// ErrNoShots is returned when there is nothing to render
var ErrNoShots = errors.New("no screenshots captured")

// GIFOptions configures GIF rendering
type GIFOptions struct {
	FPS      int  // frames per second; each shot is one frame
	MaxWidth uint // frames are scaled down to this width, keeping aspect ratio
	Pointer  bool // mark where each action landed
}

// DefaultGIFOptions shows each step for a second at 800px wide
var DefaultGIFOptions = GIFOptions{FPS: 1, MaxWidth: 800, Pointer: true}

// WriteGIF renders shots as a looping animation
func WriteGIF(w io.Writer, shots []Shot, opts GIFOptions) error {
	if len(shots) == 0 {
		return ErrNoShots
	}
	if opts.FPS <= 0 {
		opts.FPS = DefaultGIFOptions.FPS
	}
	if opts.MaxWidth == 0 {
		opts.MaxWidth = DefaultGIFOptions.MaxWidth
	}
	// delay is in 100ths of a second
	delay := 100 / opts.FPS
	if delay < 2 {
		delay = 2
	}

	frames := make([]image.Image, 0, len(shots))
	for i, shot := range shots {
		img, err := png.Decode(bytes.NewReader(shot.PNG))
		if err != nil {
			return fmt.Errorf("decoding screenshot %d: %w", i+1, err)
		}
		if opts.Pointer && shot.Pointer != nil {
			img = MarkPointer(img, shot.Pointer)
		}
		frames = append(frames, img)
	}

	bounds := frames[0].Bounds()
	width := opts.MaxWidth
	if uint(bounds.Dx()) < width {
		width = uint(bounds.Dx())
	}
	height := uint(float64(width) * float64(bounds.Dy()) / float64(bounds.Dx()))

	palette := buildPalette(frames[0])
	g := &gif.GIF{LoopCount: 0}
	for _, frame := range frames {
		resized := resize.Resize(width, height, frame, resize.Lanczos3)
		paletted := image.NewPaletted(resized.Bounds(), palette)
		draw.FloydSteinberg.Draw(paletted, resized.Bounds(), resized, resized.Bounds().Min)
		g.Image = append(g.Image, paletted)
		g.Delay = append(g.Delay, delay)
	}
	return gif.EncodeAll(w, g)
}

// WriteGIFFile renders shots into path and returns the file size
func WriteGIFFile(path string, shots []Shot, opts GIFOptions) (int64, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	if err := WriteGIF(f, shots, opts); err != nil {
		return 0, err
	}
	info, err := f.Stat()
	if err != nil {
		return 0, err
	}
	return info.Size(), f.Close()
}

// buildPalette keeps the most frequent sampled colours of img, padded
// with a grey ramp to 256 entries.
func buildPalette(img image.Image) color.Palette {
	bounds := img.Bounds()
	counts := make(map[color.RGBA]int)
	const step = 4
	for y := bounds.Min.Y; y < bounds.Max.Y; y += step {
		for x := bounds.Min.X; x < bounds.Max.X; x += step {
			r, g, b, _ := img.At(x, y).RGBA()
			counts[color.RGBA{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8), 255}]++
		}
	}

	colors := make([]color.RGBA, 0, len(counts))
	for c := range counts {
		colors = append(colors, c)
	}
	sort.Slice(colors, func(i, j int) bool {
		ci, cj := counts[colors[i]], counts[colors[j]]
		if ci != cj {
			return ci > cj
		}
		// stable order for equal counts
		a, b := colors[i], colors[j]
		if a.R != b.R {
			return a.R < b.R
		}
		if a.G != b.G {
			return a.G < b.G
		}
		return a.B < b.B
	})

	palette := make(color.Palette, 0, 256)
	palette = append(palette, rippleColor, outlineColor, fillColor)
	for _, c := range colors {
		if len(palette) == 256 {
			break
		}
		palette = append(palette, c)
	}
	for len(palette) < 256 {
		v := uint8(len(palette))
		palette = append(palette, color.RGBA{v, v, v, 255})
	}
	return palette
}
