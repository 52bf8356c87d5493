package project

import (
	"errors"
	"fmt"
)

// ErrInsufficientCommands means the motion program never deposits material,
// or no fully positioned travel move precedes the first deposit, so the
// translation range cannot be bounded.
var ErrInsufficientCommands = errors.New("not enough gcode commands to deduce Fisnar commands")

// UnconfiguredChannelError reports a logical extruder channel the program
// uses but the machine profile cannot drive. Channel is 0-based.
type UnconfiguredChannelError struct {
	Channel int
}

func (e *UnconfiguredChannelError) Error() string {
	return fmt.Sprintf("output for extruder %d must be entered", e.Channel+1)
}

// OutOfBoundsError reports a converted position outside the configured
// print surface. The whole conversion fails; points are never clamped or
// dropped.
type OutOfBoundsError struct {
	Command FisnarCommand
}

func (e *OutOfBoundsError) Error() string {
	return fmt.Sprintf("coordinates fell outside the print surface after conversion: %s", csvRow(e.Command))
}
