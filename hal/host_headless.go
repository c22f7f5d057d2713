//go:build !tinygo

package hal

import "context"

// RunHeadless builds a host board and runs the firmware on it without a window.
// It returns when run returns.
func RunHeadless(ctx context.Context, cfg HostConfig, run func(context.Context, HAL) error) error {
	h, err := NewHost(cfg)
	if err != nil {
		return err
	}
	defer h.Close()
	return run(ctx, h)
}
