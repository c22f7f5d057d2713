package hal

import "errors"

// BusFault reports a failed transaction with the touch controller.
type BusFault struct {
	Op  string
	Err error
}

func (f *BusFault) Error() string {
	if f.Err == nil {
		return "bus fault: " + f.Op
	}
	return "bus fault: " + f.Op + ": " + f.Err.Error()
}

func (f *BusFault) Unwrap() error { return f.Err }

// PanelFault reports a failed transfer to the display panel. The panel's write
// cursor is undefined afterwards.
type PanelFault struct {
	Op     string
	Region Region
	Err    error
}

func (f *PanelFault) Error() string {
	s := "panel fault: " + f.Op + " " + f.Region.String()
	if f.Err != nil {
		s += ": " + f.Err.Error()
	}
	return s
}

func (f *PanelFault) Unwrap() error { return f.Err }

// IsFault reports whether err carries a BusFault or a PanelFault.
func IsFault(err error) bool {
	var bf *BusFault
	var pf *PanelFault
	return errors.As(err, &bf) || errors.As(err, &pf)
}
