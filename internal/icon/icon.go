// Package icon renders the site favicon: a white hexagonal token on a
// rounded-square background.
package icon

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"sync"

	"golang.org/x/image/vector"
)

const (
	viewbox = 32.0
	cornerR = 6.0
)

var (
	bgColor    = color.NRGBA{R: 124, G: 58, B: 237, A: 255} // #7C3AED
	glyphColor = image.NewUniform(color.NRGBA{R: 255, G: 255, B: 255, A: 255})
)

// Sizes lists the square sizes the server will render.
var Sizes = []int{16, 32, 180, 192, 512}

// Render draws the icon at size x size pixels.
func Render(size int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	s := float64(size) / viewbox

	half := float64(size) / 2
	cr := cornerR * s
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			d := roundedBoxSDF(float64(x)+0.5-half, float64(y)+0.5-half, half, half, cr)
			switch {
			case d <= -0.5:
				img.SetNRGBA(x, y, bgColor)
			case d < 0.5:
				blend(img, x, y, bgColor, 0.5-d)
			}
		}
	}

	drawToken(img, size)
	return img
}

// drawToken rasterizes a hexagon outline with a smaller filled hexagon inside.
func drawToken(img *image.NRGBA, size int) {
	c := float32(size) / 2
	outer := float32(size) * 0.36
	ring := float32(size) * 0.27
	inner := float32(size) * 0.14

	var r vector.Rasterizer
	r.Reset(size, size)
	hexagon(&r, c, c, outer, false)
	hexagon(&r, c, c, ring, true)
	hexagon(&r, c, c, inner, false)
	r.Draw(img, img.Bounds(), glyphColor, image.Point{})
}

// hexagon adds a pointy-top hexagon path. Reverse winding punches a hole in
// an enclosing path under the non-zero fill rule.
func hexagon(r *vector.Rasterizer, cx, cy, radius float32, reverse bool) {
	var pts [6][2]float32
	for i := range pts {
		a := math.Pi/2 + float64(i)*math.Pi/3
		pts[i] = [2]float32{cx + radius*float32(math.Cos(a)), cy - radius*float32(math.Sin(a))}
	}
	if reverse {
		for i, j := 0, len(pts)-1; i < j; i, j = i+1, j-1 {
			pts[i], pts[j] = pts[j], pts[i]
		}
	}
	r.MoveTo(pts[0][0], pts[0][1])
	for _, p := range pts[1:] {
		r.LineTo(p[0], p[1])
	}
	r.ClosePath()
}

// roundedBoxSDF returns the signed distance from (px, py) to a rounded rect
// centered at the origin. Negative is inside.
func roundedBoxSDF(px, py, bx, by, r float64) float64 {
	qx := math.Abs(px) - bx + r
	qy := math.Abs(py) - by + r
	return math.Hypot(math.Max(qx, 0), math.Max(qy, 0)) + math.Min(math.Max(qx, qy), 0) - r
}

func blend(img *image.NRGBA, x, y int, c color.NRGBA, alpha float64) {
	if alpha <= 0 {
		return
	}
	if alpha > 1 {
		alpha = 1
	}
	dst := img.NRGBAAt(x, y)
	mix := func(a, b uint8) uint8 {
		return uint8(float64(a)*(1-alpha) + float64(b)*alpha)
	}
	img.SetNRGBA(x, y, color.NRGBA{
		R: mix(dst.R, c.R),
		G: mix(dst.G, c.G),
		B: mix(dst.B, c.B),
		A: mix(dst.A, c.A),
	})
}

// Cache holds encoded PNGs so each size is rendered once.
type Cache struct {
	mu   sync.Mutex
	pngs map[int][]byte
}

// NewCache creates an empty Cache.
func NewCache() *Cache {
	return &Cache{pngs: make(map[int][]byte)}
}

// PNG returns the encoded icon for size. Only sizes listed in Sizes are
// accepted.
func (c *Cache) PNG(size int) ([]byte, error) {
	if !supported(size) {
		return nil, fmt.Errorf("unsupported icon size: %d", size)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if b, ok := c.pngs[size]; ok {
		return b, nil
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, Render(size)); err != nil {
		return nil, fmt.Errorf("encoding icon: %w", err)
	}
	c.pngs[size] = buf.Bytes()
	return c.pngs[size], nil
}

func supported(size int) bool {
	for _, s := range Sizes {
		if s == size {
			return true
		}
	}
	return false
}
