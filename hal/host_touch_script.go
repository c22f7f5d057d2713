//go:build !tinygo

package hal

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// TouchStep holds one touch state for a number of polls. A step with Fault set
// fails the poll with that message instead.
type TouchStep struct {
	X       int    `yaml:"x"`
	Y       int    `yaml:"y"`
	Pressed bool   `yaml:"pressed"`
	Polls   int    `yaml:"polls"`
	Fault   string `yaml:"fault"`
}

// TouchScript replays recorded touches, one step state per poll. After the last
// step it reports no touch, or starts over when Loop is set.
type TouchScript struct {
	Loop  bool        `yaml:"loop"`
	Steps []TouchStep `yaml:"steps"`

	step   int
	polls  int
	resets int
}

// ParseTouchScript decodes a YAML script such as:
//
//	loop: true
//	steps:
//	  - {x: 400, y: 240, pressed: true, polls: 5}
//	  - {polls: 20}
func ParseTouchScript(data []byte) (*TouchScript, error) {
	var s TouchScript
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("hal: touch script: %w", err)
	}
	for i := range s.Steps {
		if s.Steps[i].Polls <= 0 {
			s.Steps[i].Polls = 1
		}
	}
	if s.Loop && len(s.Steps) == 0 {
		return nil, errors.New("hal: touch script: loop without steps")
	}
	return &s, nil
}

func LoadTouchScript(path string) (*TouchScript, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("hal: touch script: %w", err)
	}
	return ParseTouchScript(data)
}

func (s *TouchScript) Reset() error {
	s.resets++
	s.step, s.polls = 0, 0
	return nil
}

func (s *TouchScript) Poll() (TouchSample, bool, error) {
	if s.step >= len(s.Steps) {
		if !s.Loop {
			return TouchSample{}, false, nil
		}
		s.step = 0
	}
	st := s.Steps[s.step]
	s.polls++
	if s.polls >= st.Polls {
		s.step++
		s.polls = 0
	}
	if st.Fault != "" {
		return TouchSample{}, false, errors.New(st.Fault)
	}
	return TouchSample{X: st.X, Y: st.Y, Pressed: st.Pressed}, st.Pressed, nil
}
