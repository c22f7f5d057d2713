//go:build !tinygo

package hal

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"sync"

	"github.com/google/shlex"
	"go.bug.st/serial"
)

const defaultSerialBaud = 115200

// SerialTouch reads touch reports from a line protocol:
//
//	down X Y | move X Y | X Y   pressed at X,Y
//	up                          released
//
// Lines starting with # are ignored. Reset asks the far end to reset its
// controller.
type SerialTouch struct {
	port io.ReadWriteCloser
	cell pointerCell

	mu  sync.Mutex
	err error
}

// OpenSerialTouch opens a serial port at baud (default 115200).
func OpenSerialTouch(path string, baud int) (*SerialTouch, error) {
	if baud <= 0 {
		baud = defaultSerialBaud
	}
	port, err := serial.Open(path, &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, fmt.Errorf("hal: open %s: %w", path, err)
	}
	return NewSerialTouch(port), nil
}

// NewSerialTouch starts reading touch lines from port.
func NewSerialTouch(port io.ReadWriteCloser) *SerialTouch {
	t := &SerialTouch{port: port}
	go t.read()
	return t
}

func (t *SerialTouch) read() {
	scanner := bufio.NewScanner(t.port)
	for scanner.Scan() {
		s, ok, err := ParseTouchLine(scanner.Text())
		if err != nil || !ok {
			continue
		}
		t.cell.Store(s)
	}
	err := scanner.Err()
	if err == nil {
		err = io.EOF
	}
	t.mu.Lock()
	t.err = err
	t.mu.Unlock()
}

func (t *SerialTouch) Reset() error {
	_, err := io.WriteString(t.port, "reset\n")
	return err
}

// Poll returns the newest reported state. Once the port has failed every poll
// fails.
func (t *SerialTouch) Poll() (TouchSample, bool, error) {
	t.mu.Lock()
	err := t.err
	t.mu.Unlock()
	if err != nil {
		return TouchSample{}, false, fmt.Errorf("serial touch: %w", err)
	}
	s, _ := t.cell.Load()
	return s, s.Pressed, nil
}

func (t *SerialTouch) Close() error { return t.port.Close() }

var errTouchLine = errors.New("bad touch line")

// ParseTouchLine decodes one protocol line. ok is false for blank and comment lines.
func ParseTouchLine(line string) (s TouchSample, ok bool, err error) {
	fields, err := shlex.Split(line)
	if err != nil {
		return TouchSample{}, false, fmt.Errorf("%w: %v", errTouchLine, err)
	}
	if len(fields) == 0 {
		return TouchSample{}, false, nil
	}
	switch fields[0] {
	case "up":
		return TouchSample{}, true, nil
	case "down", "move":
		fields = fields[1:]
	}
	if len(fields) != 2 {
		return TouchSample{}, false, fmt.Errorf("%w: %q", errTouchLine, line)
	}
	x, err := strconv.Atoi(fields[0])
	if err != nil {
		return TouchSample{}, false, fmt.Errorf("%w: %q", errTouchLine, line)
	}
	y, err := strconv.Atoi(fields[1])
	if err != nil {
		return TouchSample{}, false, fmt.Errorf("%w: %q", errTouchLine, line)
	}
	return TouchSample{X: x, Y: y, Pressed: true}, true, nil
}
