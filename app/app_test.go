package app

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"touchdrive/hal"
	"touchdrive/internal/logging"
	"touchdrive/runloop"
)

type testClock struct{ now time.Time }

func (c *testClock) Now() time.Time        { return c.now }
func (c *testClock) Sleep(d time.Duration) { c.now = c.now.Add(d) }

type testPanel struct {
	w, h   int
	fb     []hal.Color
	writes int
	fail   bool
}

func newTestPanel(w, h int) *testPanel {
	return &testPanel{w: w, h: h, fb: make([]hal.Color, w*h)}
}

func (p *testPanel) Size() (int, int) { return p.w, p.h }

func (p *testPanel) WriteRegion(r hal.Region, px []hal.Color) error {
	if p.fail {
		return errors.New("dma stalled")
	}
	p.writes++
	i := 0
	for y := r.Y1; y <= r.Y2; y++ {
		copy(p.fb[y*p.w+r.X1:y*p.w+r.X2+1], px[i:i+r.Width()])
		i += r.Width()
	}
	return nil
}

type testTouch struct {
	resets int
	polls  int
	failAt int
}

func (t *testTouch) Reset() error {
	t.resets++
	return nil
}

func (t *testTouch) Poll() (hal.TouchSample, bool, error) {
	t.polls++
	if t.failAt > 0 && t.polls >= t.failAt {
		return hal.TouchSample{}, false, errors.New("i2c nack")
	}
	return hal.TouchSample{}, false, nil
}

type testBacklight struct{ percent uint8 }

func (b *testBacklight) SetBrightness(p uint8) error {
	b.percent = p
	return nil
}

type testLogger struct{ lines []string }

func (l *testLogger) WriteLineString(s string) { l.lines = append(l.lines, s) }
func (l *testLogger) WriteLineBytes(b []byte)  { l.lines = append(l.lines, string(b)) }

type testHAL struct {
	log   *testLogger
	bl    *testBacklight
	panel *testPanel
	touch *testTouch
}

func newTestHAL() *testHAL {
	return &testHAL{
		log:   &testLogger{},
		bl:    &testBacklight{},
		panel: newTestPanel(320, 240),
		touch: &testTouch{},
	}
}

func (h *testHAL) Logger() hal.Logger         { return h.log }
func (h *testHAL) Backlight() hal.Backlight   { return h.bl }
func (h *testHAL) Panel() hal.Panel           { return h.panel }
func (h *testHAL) Touch() hal.TouchController { return h.touch }

func testConfig(cycles uint64) Config {
	cfg := DefaultConfig()
	cfg.Width, cfg.Height = 320, 240
	cfg.MaxCycles = cycles
	cfg.Clock = &testClock{now: time.Unix(0, 0)}
	return cfg
}

func TestRunDrawsScene(t *testing.T) {
	h := newTestHAL()

	s, err := New(h, testConfig(10))
	require.NoError(t, err)
	require.NoError(t, s.Run(context.Background()))

	assert.Equal(t, uint8(50), h.bl.percent)
	assert.Equal(t, 1, h.touch.resets)
	assert.Equal(t, 10, h.touch.polls)
	assert.Equal(t, runloop.Stopped, s.Scheduler().State())

	// Corner is background, the arc's indicator has advanced past its start.
	assert.Equal(t, sceneBackground, h.panel.fb[0])
	_, end := s.scene.arc.Angles()
	assert.Equal(t, 145, end)

	joined := strings.Join(h.log.lines, "\n")
	assert.Contains(t, joined, "touchdrive starting")
	assert.Contains(t, joined, "label=init")
}

func TestSceneLayout(t *testing.T) {
	h := newTestHAL()

	s, err := New(h, testConfig(1))
	require.NoError(t, err)

	start, end := s.scene.arc.Angles()
	assert.Equal(t, arcOffset, start)
	assert.Equal(t, arcOffset, end)
	assert.Equal(t, "Loading...", s.scene.label.Text())
	assert.Equal(t, hal.RGB(0, 0, 0xFF), s.scene.label.Color())

	require.NoError(t, s.Run(context.Background()))
	assert.Contains(t, h.panel.fb, labelColor, "label text drawn in blue")
}

func TestPanelSizeMismatch(t *testing.T) {
	cfg := testConfig(1)
	cfg.Width = 800

	_, err := New(newTestHAL(), cfg)
	assert.ErrorIs(t, err, ErrPanelSize)
}

func TestBusFaultDrawsFaultScreen(t *testing.T) {
	h := newTestHAL()
	h.touch.failAt = 4
	var buf bytes.Buffer
	cfg := testConfig(0)
	cfg.Logger = logging.New(&buf, slog.LevelInfo)

	s, err := New(h, cfg)
	require.NoError(t, err)
	err = s.Run(context.Background())

	var bf *hal.BusFault
	require.ErrorAs(t, err, &bf)
	assert.Equal(t, uint64(4), s.Scheduler().Cycles())
	assert.Equal(t, faultBackground, h.panel.fb[0])
	assert.Contains(t, h.panel.fb, faultForeground, "fault text drawn")
	assert.Contains(t, buf.String(), "loop faulted")
	assert.Contains(t, buf.String(), "err=")
}

func TestPanelFaultLeavesScreenAlone(t *testing.T) {
	h := newTestHAL()
	cfg := testConfig(0)
	cfg.Logger = logging.NewNop()
	cfg.Hooks.OnCycle = func(ci runloop.CycleInfo) {
		if ci.Cycle == 2 {
			h.panel.fail = true
		}
	}

	s, err := New(h, cfg)
	require.NoError(t, err)
	err = s.Run(context.Background())

	var pf *hal.PanelFault
	require.ErrorAs(t, err, &pf)
	assert.Equal(t, uint64(3), s.Scheduler().Cycles())
	assert.Equal(t, sceneBackground, h.panel.fb[0])
}

func TestFaultLinesWrap(t *testing.T) {
	lines := faultLines(errors.New("bus fault: gt911 status: i2c nack"), 12, 10)

	assert.Equal(t, []string{
		"touchdrive",
		"fault",
		"cycle: 12",
		"bus fault",
		"gt911 stat",
		"us",
		"i2c nack",
	}, lines)
}
