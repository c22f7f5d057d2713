//go:build !tinygo && !cgo

package hal

import (
	"context"
	"errors"
)

func RunWindow(context.Context, HostConfig, func(context.Context, HAL) error) error {
	return errors.New("window mode requires cgo (build/run with CGO_ENABLED=1)")
}
