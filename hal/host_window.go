//go:build !tinygo && cgo

package hal

import (
	"context"
	"errors"
	"image"

	"touchdrive/internal/buildinfo"

	"github.com/hajimehoshi/ebiten/v2"
)

// RunWindow shows the host panel in a desktop window and feeds mouse and touch
// input to the board's touch controller. The firmware runs on its own goroutine.
// When it stops the window stays open on the last frame until closed. Closing the
// window cancels the firmware's context.
func RunWindow(ctx context.Context, cfg HostConfig, run func(context.Context, HAL) error) error {
	h, err := NewHost(cfg)
	if err != nil {
		return err
	}
	defer h.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g := &hostGame{h: h, ctx: ctx, done: make(chan error, 1)}
	go func() { g.done <- run(ctx, h) }()

	ebiten.SetWindowTitle("touchdrive (" + buildinfo.Short() + ")")
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetTPS(60)
	werr := ebiten.RunGame(g)
	cancel()

	if !g.finished {
		g.loopErr = <-g.done
	}
	if werr != nil && !errors.Is(werr, ebiten.Termination) {
		return werr
	}
	if errors.Is(g.loopErr, context.Canceled) {
		return nil
	}
	return g.loopErr
}

type hostGame struct {
	h   *Host
	ctx context.Context

	done     chan error
	finished bool
	loopErr  error

	img      *image.RGBA
	fbImg    *ebiten.Image
	touchIDs []ebiten.TouchID
	last     TouchSample
}

func (g *hostGame) Update() error {
	if !g.finished {
		select {
		case err := <-g.done:
			g.finished = true
			g.loopErr = err
		default:
		}
	}
	if g.ctx.Err() != nil && g.finished {
		return ebiten.Termination
	}

	s := g.pointer()
	if s != g.last {
		g.h.pointer.Store(s)
		g.last = s
	}
	return nil
}

func (g *hostGame) pointer() TouchSample {
	g.touchIDs = ebiten.AppendTouchIDs(g.touchIDs[:0])
	if len(g.touchIDs) > 0 {
		x, y := ebiten.TouchPosition(g.touchIDs[0])
		return TouchSample{X: x, Y: y, Pressed: true}
	}
	if ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		x, y := ebiten.CursorPosition()
		return TouchSample{X: x, Y: y, Pressed: true}
	}
	return TouchSample{}
}

func (g *hostGame) Draw(screen *ebiten.Image) {
	p := g.h.panel
	if g.img == nil || g.img.Bounds().Dx() != p.width || g.img.Bounds().Dy() != p.height {
		g.img = image.NewRGBA(image.Rect(0, 0, p.width, p.height))
		if g.fbImg != nil {
			g.fbImg.Deallocate()
		}
		g.fbImg = ebiten.NewImage(p.width, p.height)
	}

	p.snapshotRGBA(g.img.Pix)
	g.fbImg.WritePixels(g.img.Pix)
	screen.DrawImage(g.fbImg, nil)
}

func (g *hostGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.h.panel.width, g.h.panel.height
}
