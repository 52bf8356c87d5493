package project

import (
	"fmt"
	"strconv"
	"strings"

	"fisnar/common/logger"
)

// GCodeCommand is one stripped line of a motion program: a command code
// (G1, T0, M104, ...) plus its single-letter numeric parameters. Immutable
// once parsed.
type GCodeCommand struct {
	command string
	params  map[string]float64
}

func NewGCodeCommand(line string) (*GCodeCommand, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty gcode line")
	}

	self := &GCodeCommand{
		command: fields[0],
		params:  map[string]float64{},
	}
	for _, field := range fields[1:] {
		letter := field[:1]
		value, err := strconv.ParseFloat(field[1:], 64)
		if err != nil {
			return nil, fmt.Errorf("malformed parameter %q in line %q", field, line)
		}
		self.params[letter] = value
	}
	return self, nil
}

func (self *GCodeCommand) Get_command() string {
	return self.command
}

func (self *GCodeCommand) Has_param(letter string) bool {
	_, ok := self.params[letter]
	return ok
}

func (self *GCodeCommand) Get_param(letter string) float64 {
	return self.params[letter]
}

func (self *GCodeCommand) Get_float(letter string, def float64) float64 {
	if value, ok := self.params[letter]; ok {
		return value
	}
	return def
}

// Get_stripped_commands turns raw motion-program text into parsed commands.
// Blank lines and ';' comments (whole-line or trailing) are dropped; lines
// that fail to parse are skipped with a warning.
func Get_stripped_commands(gcode string) []*GCodeCommand {
	commands := []*GCodeCommand{}
	for _, line := range strings.Split(gcode, "\n") {
		line = strings.TrimSpace(line)
		if len(line) == 0 || line[0] == ';' {
			continue
		}
		if i := strings.Index(line, ";"); i >= 0 {
			line = strings.TrimSpace(line[:i])
		}
		if len(line) == 0 {
			continue
		}
		command, err := NewGCodeCommand(line)
		if err != nil {
			logger.Warnf("skipping unparseable gcode line: %v", err)
			continue
		}
		commands = append(commands, command)
	}
	return commands
}
