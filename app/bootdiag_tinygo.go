//go:build tinygo && bootdebug

package app

import (
	"machine"
	"sync"
	"time"

	"touchdrive/hal"
)

var (
	bootDiagMu      sync.Mutex
	bootDiagStep    string
	bootDiagRunning bool
)

func bootStep(msg string) {
	bootDiagMu.Lock()
	bootDiagStep = msg
	bootDiagMu.Unlock()
}

// bootDiagStart repeats the current boot step every 250ms so a hang during
// bring-up shows where it stopped.
func bootDiagStart(l hal.Logger) {
	bootDiagMu.Lock()
	if bootDiagRunning {
		bootDiagMu.Unlock()
		return
	}
	bootDiagRunning = true
	bootDiagMu.Unlock()

	go func() {
		for {
			bootDiagMu.Lock()
			step := bootDiagStep
			bootDiagMu.Unlock()
			if step == "" {
				step = "<empty>"
			}
			line := "bootdiag: " + step
			if l != nil {
				l.WriteLineString(line)
			}
			// Also stream to USB CDC when it becomes available.
			if usb := machine.USBCDC; usb != nil {
				_, _ = usb.Write([]byte(line + "\r\n"))
			}
			if step == "ready" {
				return
			}
			time.Sleep(250 * time.Millisecond)
		}
	}()
}
