package graphics

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// ParseHexColor parses "#RRGGBB" or "RRGGBB". A channel that is missing or not
// valid hexadecimal reads as 0, so the result is always opaque and valid.
func ParseHexColor(s string) color.RGBA {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	return color.RGBA{
		R: channel(s, 0),
		G: channel(s, 2),
		B: channel(s, 4),
		A: 0xFF,
	}
}

func channel(s string, at int) uint8 {
	if len(s) < at+2 {
		return 0
	}
	v, err := strconv.ParseUint(s[at:at+2], 16, 8)
	if err != nil {
		return 0
	}
	return uint8(v)
}

// FormatHexColor formats c as "#RRGGBB".
func FormatHexColor(c color.Color) string {
	r, g, b, _ := c.RGBA()
	// RGBA() は16ビット値を返すので8ビットに戻す
	return fmt.Sprintf("#%02X%02X%02X", r>>8, g>>8, b>>8)
}
