package controller

// Axis identifies one motor channel. The four axes are fixed for the life
// of the process; each owns one path generator and one step generator.
type Axis int

const (
	X Axis = iota
	Y
	Z
	A

	NumAxes = 4
)

var axisLetters = [NumAxes]string{"x", "y", "z", "a"}

func (a Axis) String() string {
	if a < 0 || a >= NumAxes {
		return "?"
	}
	return axisLetters[a]
}

// AxisByLetter resolves a flagset character to an axis. Unrecognized
// letters report false; the dispatcher skips them without consuming an
// argument slot.
func AxisByLetter(c byte) (Axis, bool) {
	switch c {
	case 'x':
		return X, true
	case 'y':
		return Y, true
	case 'z':
		return Z, true
	case 'a':
		return A, true
	}
	return 0, false
}
