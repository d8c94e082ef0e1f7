package graphics

import (
	"image"
	"image/color"
	"io"
	"sync"

	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
)

// Raster is an in-memory RGBA surface. The window uploads it to the screen
// once per Draw; headless runs read it directly.
type Raster struct {
	mu     sync.RWMutex
	img    *image.RGBA
	width  int
	height int
}

// NewRaster returns a raster for a cols x rows display at the given scale.
func NewRaster(cols, rows, scale int) *Raster {
	r := &Raster{width: cols, height: rows}
	r.img = image.NewRGBA(image.Rect(0, 0, cols*clampScale(scale), rows*clampScale(scale)))
	return r
}

// Resize reallocates the raster when the scale changed.
func (r *Raster) Resize(scale int) {
	scale = clampScale(scale)
	r.mu.Lock()
	defer r.mu.Unlock()
	want := image.Rect(0, 0, r.width*scale, r.height*scale)
	if r.img.Bounds() == want {
		return
	}
	r.img = image.NewRGBA(want)
}

// Clear paints the whole raster with c.
func (r *Raster) Clear(c color.Color) {
	r.mu.Lock()
	defer r.mu.Unlock()
	draw.Draw(r.img, r.img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
}

// Present asks p to paint onto the raster.
func (r *Raster) Present(p Presenter, scale int, paint color.Color) {
	p.Draw(r, scale, paint)
}

// FillRect paints a rectangle, clipped to the raster bounds.
func (r *Raster) FillRect(x, y, w, h int, c color.Color) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rect := image.Rect(x, y, x+w, y+h).Intersect(r.img.Bounds())
	if rect.Empty() {
		return
	}
	draw.Draw(r.img, rect, image.NewUniform(c), image.Point{}, draw.Src)
}

// Size returns the raster size in screen pixels.
func (r *Raster) Size() (int, int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b := r.img.Bounds()
	return b.Dx(), b.Dy()
}

// Pixels returns the raster's RGBA bytes, suitable for ebiten's WritePixels.
// The slice is shared; callers must not keep it across frames.
func (r *Raster) Pixels() []byte {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.img.Pix
}

// At returns the colour at screen pixel (x, y).
func (r *Raster) At(x, y int) color.RGBA {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.img.RGBAAt(x, y)
}

// Image returns a copy of the raster.
func (r *Raster) Image() *image.RGBA {
	r.mu.RLock()
	defer r.mu.RUnlock()
	dst := image.NewRGBA(r.img.Bounds())
	draw.Draw(dst, dst.Bounds(), r.img, image.Point{}, draw.Src)
	return dst
}

// WriteBMP encodes the current raster as a BMP image.
func (r *Raster) WriteBMP(w io.Writer) error {
	return bmp.Encode(w, r.Image())
}
