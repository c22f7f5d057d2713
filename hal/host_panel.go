//go:build !tinygo

package hal

import (
	"fmt"
	"sync"
)

// hostPanel is an in-memory panel. The window snapshots it under the lock.
type hostPanel struct {
	mu     sync.Mutex
	width  int
	height int
	buf    []Color
	writes uint64
}

func newHostPanel(width, height int) *hostPanel {
	return &hostPanel{width: width, height: height, buf: make([]Color, width*height)}
}

func (p *hostPanel) Size() (int, int) { return p.width, p.height }

func (p *hostPanel) WriteRegion(r Region, pixels []Color) error {
	if !r.Valid() || r.X1 < 0 || r.Y1 < 0 || r.X2 >= p.width || r.Y2 >= p.height {
		return &PanelFault{Op: "window", Region: r, Err: fmt.Errorf("outside %dx%d", p.width, p.height)}
	}
	if len(pixels) != r.Area() {
		return &PanelFault{Op: "write", Region: r, Err: fmt.Errorf("%d pixels for %d", len(pixels), r.Area())}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	w := r.Width()
	for y := r.Y1; y <= r.Y2; y++ {
		off := y*p.width + r.X1
		copy(p.buf[off:off+w], pixels[(y-r.Y1)*w:])
	}
	p.writes++
	return nil
}

// snapshotRGBA expands the panel into dst, 4 bytes per pixel.
func (p *hostPanel) snapshotRGBA(dst []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, c := range p.buf {
		j := i * 4
		if j+3 >= len(dst) {
			return
		}
		dst[j], dst[j+1], dst[j+2] = c.RGB()
		dst[j+3] = 0xFF
	}
}

func (p *hostPanel) at(x, y int) Color {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.buf[y*p.width+x]
}
