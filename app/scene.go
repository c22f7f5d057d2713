package app

import (
	"fmt"

	"touchdrive/hal"
	"touchdrive/runloop"
	"touchdrive/ui"
)

// arcOffset rotates the indicator so angle 0 sits at the start of the arc.
const arcOffset = 135

var (
	sceneBackground = hal.RGB(0, 0, 0)
	labelColor      = hal.RGB(0, 0, 0xFF)
)

// scene is the loading screen: a centred arc with a label in its hole.
type scene struct {
	arc   *ui.Arc
	label *ui.Label
}

func newScene(rt *ui.Runtime) (*scene, error) {
	rt.SetBackground(sceneBackground)

	arc := rt.NewArc()
	if err := arc.SetStartAngle(arcOffset); err != nil {
		return nil, fmt.Errorf("app: scene arc: %w", err)
	}
	if err := arc.SetEndAngle(arcOffset); err != nil {
		return nil, fmt.Errorf("app: scene arc: %w", err)
	}

	label := rt.NewLabel("Loading...")
	label.SetColor(labelColor)
	label.SetAlign(ui.AlignCenter, 0, 0)

	return &scene{arc: arc, label: label}, nil
}

func (s *scene) Animate(st runloop.AnimationState) error {
	return s.arc.SetEndAngle(st.Angle + arcOffset)
}
