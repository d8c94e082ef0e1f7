// Package graphics is the render surface and its live configuration.
//
// Every frame is a full repaint: Clear paints the background, then Present
// asks the presenter to paint its display buffer on top. No pixel state is
// kept between frames beyond the raster itself.
package graphics

import (
	"image/color"

	"github.com/zurustar/oito/pkg/vm"
)

// Presenter paints a display buffer onto a canvas. *vm.Handle implements it.
type Presenter interface {
	Draw(c vm.Canvas, scale int, paint color.Color)
}

// Surface is what the frame driver paints on.
type Surface interface {
	Clear(c color.Color)
	Present(p Presenter, scale int, paint color.Color)
}

// Resizer is implemented by surfaces whose size follows the pixel scale.
type Resizer interface {
	Resize(scale int)
}
