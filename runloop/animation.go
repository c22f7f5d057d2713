package runloop

// MaxAngle is the upper bound of the animation sweep in degrees.
const MaxAngle = 270

type Direction int8

const (
	Forward  Direction = 1
	Backward Direction = -1
)

func (d Direction) String() string {
	if d == Backward {
		return "backward"
	}
	return "forward"
}

// AnimationState is the indicator position advanced once per cycle.
//
// Counter counts cycles since the last direction change. The direction flips on
// the cycle after Counter reaches MaxAngle, so a full sweep takes MaxAngle cycles.
type AnimationState struct {
	Angle     int
	Direction Direction
	Counter   int
}

// NewAnimation returns the state at angle 0 moving forward.
func NewAnimation() AnimationState {
	return AnimationState{Direction: Forward}
}

// Step advances the animation by one cycle.
func (s *AnimationState) Step() {
	if s.Direction == 0 {
		s.Direction = Forward
	}
	s.Counter++
	if s.Counter > MaxAngle {
		s.Direction = -s.Direction
		s.Counter = 1
	}
	s.Angle += int(s.Direction)
	s.Angle = max(0, min(s.Angle, MaxAngle))
}
