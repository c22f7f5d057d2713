//go:build !(tinygo && bootdebug)

package app

import "touchdrive/hal"

func bootDiagStart(hal.Logger) {}

func bootStep(string) {}
