//go:build !tinygo

package hal

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPointerCellKeepsLatest(t *testing.T) {
	var c pointerCell
	s, seq := c.Load()
	assert.Equal(t, TouchSample{}, s)
	assert.Equal(t, uint32(0), seq)

	c.Store(TouchSample{X: 10, Y: 20, Pressed: true})
	c.Store(TouchSample{X: 799, Y: 479, Pressed: true})
	s, seq = c.Load()
	assert.Equal(t, TouchSample{X: 799, Y: 479, Pressed: true}, s)
	assert.Equal(t, uint32(2), seq)

	c.Store(TouchSample{X: -4, Y: 3, Pressed: true})
	s, _ = c.Load()
	assert.Equal(t, TouchSample{X: 0, Y: 3, Pressed: true}, s)

	c.Store(TouchSample{X: 5, Y: 5})
	s, _ = c.Load()
	assert.Equal(t, TouchSample{}, s, "release drops coordinates")
}

func TestHostPanelWriteRegion(t *testing.T) {
	p := newHostPanel(4, 3)
	px := []Color{1, 2, 3, 4}

	require.NoError(t, p.WriteRegion(Region{X1: 1, Y1: 1, X2: 2, Y2: 2}, px))
	assert.Equal(t, Color(1), p.at(1, 1))
	assert.Equal(t, Color(2), p.at(2, 1))
	assert.Equal(t, Color(3), p.at(1, 2))
	assert.Equal(t, Color(0), p.at(0, 0))

	var pf *PanelFault
	require.ErrorAs(t, p.WriteRegion(Region{X1: 3, Y1: 0, X2: 4, Y2: 0}, px[:2]), &pf)
	assert.Equal(t, "window", pf.Op)
	require.ErrorAs(t, p.WriteRegion(Region{X1: 0, Y1: 0, X2: 1, Y2: 0}, px), &pf)
	assert.Equal(t, "write", pf.Op)

	rgba := make([]byte, 4*3*4)
	p.snapshotRGBA(rgba)
	assert.Equal(t, byte(0xFF), rgba[3])
}

func TestTouchScriptReplay(t *testing.T) {
	s, err := ParseTouchScript([]byte(`
steps:
  - {x: 400, y: 240, pressed: true, polls: 2}
  - {polls: 1}
  - {fault: "i2c nack"}
`))
	require.NoError(t, err)
	require.NoError(t, s.Reset())

	for i := 0; i < 2; i++ {
		got, ok, err := s.Poll()
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, TouchSample{X: 400, Y: 240, Pressed: true}, got)
	}
	_, ok, err := s.Poll()
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = s.Poll()
	assert.EqualError(t, err, "i2c nack")

	_, ok, err = s.Poll()
	require.NoError(t, err)
	assert.False(t, ok, "finished script reports no touch")
}

func TestTouchScriptLoops(t *testing.T) {
	s, err := ParseTouchScript([]byte("loop: true\nsteps:\n  - {x: 1, y: 2, pressed: true}\n  - {}\n"))
	require.NoError(t, err)

	var pressed []bool
	for i := 0; i < 5; i++ {
		_, ok, err := s.Poll()
		require.NoError(t, err)
		pressed = append(pressed, ok)
	}
	assert.Equal(t, []bool{true, false, true, false, true}, pressed)
}

func TestTouchScriptErrors(t *testing.T) {
	_, err := ParseTouchScript([]byte("loop: true\n"))
	assert.Error(t, err)
	_, err = ParseTouchScript([]byte("steps: [oops"))
	assert.Error(t, err)
	_, err = LoadTouchScript(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParseTouchLine(t *testing.T) {
	cases := []struct {
		line string
		want TouchSample
		ok   bool
		err  bool
	}{
		{line: "down 10 20", want: TouchSample{X: 10, Y: 20, Pressed: true}, ok: true},
		{line: "move 11 21", want: TouchSample{X: 11, Y: 21, Pressed: true}, ok: true},
		{line: "  12   22 ", want: TouchSample{X: 12, Y: 22, Pressed: true}, ok: true},
		{line: "up", want: TouchSample{}, ok: true},
		{line: "", ok: false},
		{line: "# comment", ok: false},
		{line: "down 1", err: true},
		{line: "down x 2", err: true},
	}
	for _, tc := range cases {
		t.Run(tc.line, func(t *testing.T) {
			got, ok, err := ParseTouchLine(tc.line)
			if tc.err {
				assert.ErrorIs(t, err, errTouchLine)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

type pipePort struct {
	*io.PipeReader
	mu  sync.Mutex
	out bytes.Buffer
}

func (p *pipePort) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.out.Write(b)
}

func (p *pipePort) written() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.out.String()
}

func TestSerialTouch(t *testing.T) {
	r, w := io.Pipe()
	port := &pipePort{PipeReader: r}
	st := NewSerialTouch(port)

	require.NoError(t, st.Reset())
	assert.Equal(t, "reset\n", port.written())

	_, err := io.WriteString(w, "garbage\ndown 30 40\n")
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		s, ok, err := st.Poll()
		return err == nil && ok && s == TouchSample{X: 30, Y: 40, Pressed: true}
	}, time.Second, time.Millisecond)

	_, err = io.WriteString(w, "up\n")
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		_, ok, err := st.Poll()
		return err == nil && !ok
	}, time.Second, time.Millisecond)

	require.NoError(t, w.Close())
	require.Eventually(t, func() bool {
		_, _, err := st.Poll()
		return errors.Is(err, io.EOF)
	}, time.Second, time.Millisecond)
	assert.NoError(t, st.Close())
}

func TestNewHostPicksTouchSource(t *testing.T) {
	var log bytes.Buffer
	h, err := NewHost(HostConfig{Width: 320, Height: 240, Log: &log})
	require.NoError(t, err)
	w, ht := h.Panel().Size()
	assert.Equal(t, 320, w)
	assert.Equal(t, 240, ht)

	h.pointer.Store(TouchSample{X: 5, Y: 6, Pressed: true})
	s, ok, err := h.Touch().Poll()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, TouchSample{X: 5, Y: 6, Pressed: true}, s)

	require.NoError(t, h.Backlight().SetBrightness(150))
	assert.Equal(t, "backlight: 100%\n", log.String())
	assert.NoError(t, h.Close())

	script := filepath.Join(t.TempDir(), "touch.yaml")
	require.NoError(t, os.WriteFile(script, []byte("steps: [{x: 1, y: 1, pressed: true}]\n"), 0o644))
	h, err = NewHost(HostConfig{Width: 320, Height: 240, TouchScript: script, Log: io.Discard})
	require.NoError(t, err)
	assert.IsType(t, &TouchScript{}, h.Touch())

	_, err = NewHost(HostConfig{})
	assert.Error(t, err)
}

func TestRunHeadlessHandsOverBoard(t *testing.T) {
	var got HAL
	err := RunHeadless(context.Background(), HostConfig{Width: 10, Height: 10, Log: io.Discard}, func(_ context.Context, h HAL) error {
		got = h
		return errors.New("done")
	})
	assert.EqualError(t, err, "done")
	require.NotNil(t, got)
	assert.NotNil(t, got.Panel())
}
