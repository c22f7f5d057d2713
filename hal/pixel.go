package hal

import "image/color"

// Color is a 16bpp pixel: rrrrrggggggbbbbb.
type Color uint16

func RGB(r, g, b uint8) Color {
	rr := uint16(r>>3) & 0x1F
	gg := uint16(g>>2) & 0x3F
	bb := uint16(b>>3) & 0x1F
	return Color((rr << 11) | (gg << 5) | bb)
}

// RGB expands the pixel back to 8 bits per channel.
func (c Color) RGB() (r, g, b uint8) {
	p := uint16(c)
	rr := (p >> 11) & 0x1F
	gg := (p >> 5) & 0x3F
	bb := p & 0x1F

	r = uint8((uint32(rr) * 255) / 31)
	g = uint8((uint32(gg) * 255) / 63)
	b = uint8((uint32(bb) * 255) / 31)
	return r, g, b
}

func ColorFromRGBA(c color.RGBA) Color { return RGB(c.R, c.G, c.B) }

func (c Color) RGBA() color.RGBA {
	r, g, b := c.RGB()
	return color.RGBA{R: r, G: g, B: b, A: 0xFF}
}
