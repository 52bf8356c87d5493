package project

// The Fisnar dispenser's logical command set. A Program is an ordered
// timeline of these; order is load-bearing, the sequence drives physical
// motion and material flow.

type FisnarCommand interface {
	Kind() string
	fisnarCommand()
}

type LineSpeed struct {
	Speed float64
}

type ZClearance struct {
	Clearance int
}

// DummyPoint is a travel move; whether material flows during it is carried
// by the surrounding Output commands, not by the point itself.
type DummyPoint struct {
	X, Y, Z float64
}

type LineStart struct {
	X, Y, Z float64
}

type LinePassing struct {
	X, Y, Z float64
}

type LineEnd struct {
	X, Y, Z float64
}

// Output energizes (state 1) or shuts off (state 0) dispenser output port
// 1..4.
type Output struct {
	Port  int
	State int
}

type EndProgram struct{}

// homePlaceholder reserves the home-move slot while a Program is being
// built; the coordinate transform replaces it with the real homing
// DummyPoint. It never survives a successful conversion.
type homePlaceholder struct{}

func (LineSpeed) Kind() string       { return "Line Speed" }
func (ZClearance) Kind() string      { return "Z Clearance" }
func (DummyPoint) Kind() string      { return "Dummy Point" }
func (LineStart) Kind() string       { return "Line Start" }
func (LinePassing) Kind() string     { return "Line Passing" }
func (LineEnd) Kind() string         { return "Line End" }
func (Output) Kind() string          { return "Output" }
func (EndProgram) Kind() string      { return "End Program" }
func (homePlaceholder) Kind() string { return "Home Placeholder" }

func (LineSpeed) fisnarCommand()       {}
func (ZClearance) fisnarCommand()      {}
func (DummyPoint) fisnarCommand()      {}
func (LineStart) fisnarCommand()       {}
func (LinePassing) fisnarCommand()     {}
func (LineEnd) fisnarCommand()         {}
func (Output) fisnarCommand()          {}
func (EndProgram) fisnarCommand()      {}
func (homePlaceholder) fisnarCommand() {}

type Program []FisnarCommand

// commandPosition returns the coordinates of positional commands
// (Dummy Point and the Line Start/Passing/End family).
func commandPosition(cmd FisnarCommand) (x, y, z float64, ok bool) {
	switch c := cmd.(type) {
	case DummyPoint:
		return c.X, c.Y, c.Z, true
	case LineStart:
		return c.X, c.Y, c.Z, true
	case LinePassing:
		return c.X, c.Y, c.Z, true
	case LineEnd:
		return c.X, c.Y, c.Z, true
	}
	return 0, 0, 0, false
}

func withPosition(cmd FisnarCommand, x, y, z float64) FisnarCommand {
	switch cmd.(type) {
	case DummyPoint:
		return DummyPoint{x, y, z}
	case LineStart:
		return LineStart{x, y, z}
	case LinePassing:
		return LinePassing{x, y, z}
	case LineEnd:
		return LineEnd{x, y, z}
	}
	return cmd
}
