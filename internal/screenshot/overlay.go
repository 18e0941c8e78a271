package screenshot

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/v0xg/stepforge/internal/executor"
)

var (
	outlineColor = color.RGBA{0, 0, 0, 255}
	fillColor    = color.RGBA{255, 255, 255, 255}
	rippleColor  = color.RGBA{66, 133, 244, 255}
)

// arrow outline, relative to the hotspot
var arrow = []image.Point{{0, 0}, {0, 16}, {4, 12}, {7, 18}, {10, 17}, {7, 11}, {12, 11}}

// MarkPointer returns a copy of frame with an arrow cursor at p, plus a
// ripple ring when a button was pressed there. A nil pointer copies the frame.
func MarkPointer(frame image.Image, p *executor.Pointer) *image.RGBA {
	bounds := frame.Bounds()
	out := image.NewRGBA(bounds)
	draw.Draw(out, bounds, frame, bounds.Min, draw.Src)
	if p == nil {
		return out
	}

	x, y := bounds.Min.X+p.X, bounds.Min.Y+p.Y
	if p.Pressed {
		ring(out, x, y, 15)
	}
	for dy := 0; dy <= 16; dy++ {
		for dx := 0; dx <= 12; dx++ {
			if insideArrow(dx, dy) {
				setPixel(out, x+dx, y+dy, fillColor)
			}
		}
	}
	for i := range arrow {
		a, b := arrow[i], arrow[(i+1)%len(arrow)]
		line(out, x+a.X, y+a.Y, x+b.X, y+b.Y, outlineColor)
	}
	return out
}

func insideArrow(dx, dy int) bool {
	switch {
	case dx < 0 || dy < 0 || dy > 16:
		return false
	case dy <= 11:
		return dx <= dy*12/16
	default:
		return dx <= 4
	}
}

func ring(img *image.RGBA, cx, cy, r int) {
	for deg := 0; deg < 360; deg++ {
		rad := float64(deg) * math.Pi / 180
		px := cx + int(math.Round(float64(r)*math.Cos(rad)))
		py := cy + int(math.Round(float64(r)*math.Sin(rad)))
		setPixel(img, px, py, rippleColor)
		setPixel(img, px+1, py, rippleColor)
		setPixel(img, px, py+1, rippleColor)
	}
}

// line is Bresenham's algorithm
func line(img *image.RGBA, x1, y1, x2, y2 int, c color.RGBA) {
	dx, dy := abs(x2-x1), abs(y2-y1)
	sx, sy := 1, 1
	if x1 > x2 {
		sx = -1
	}
	if y1 > y2 {
		sy = -1
	}
	err := dx - dy
	for {
		setPixel(img, x1, y1, c)
		if x1 == x2 && y1 == y2 {
			return
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

func setPixel(img *image.RGBA, x, y int, c color.RGBA) {
	if (image.Point{x, y}).In(img.Bounds()) {
		img.SetRGBA(x, y, c)
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
