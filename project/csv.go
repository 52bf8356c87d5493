package project

import (
	"strconv"
	"strings"

	"fisnar/common/logger"
)

// CSV persistence for Fisnar programs, one comma-separated row per command,
// in the column layout the Fisnar Smart Robot software reads back.

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func csvRow(command FisnarCommand) string {
	switch c := command.(type) {
	case LineSpeed:
		return "Line Speed," + formatFloat(c.Speed)
	case ZClearance:
		return "Z Clearance," + strconv.Itoa(c.Clearance)
	case Output:
		return "Output," + strconv.Itoa(c.Port) + "," + strconv.Itoa(c.State)
	case EndProgram:
		return "End Program"
	}
	if x, y, z, ok := commandPosition(command); ok {
		return command.Kind() + "," + formatFloat(x) + "," + formatFloat(y) + "," + formatFloat(z)
	}
	return command.Kind()
}

func (p Program) To_csv() string {
	var b strings.Builder
	for _, command := range p {
		b.WriteString(csvRow(command))
		b.WriteString("\n")
	}
	return b.String()
}

func parsePoint(fields []string) (x, y, z float64, ok bool) {
	if len(fields) != 4 {
		return 0, 0, 0, false
	}
	var err error
	if x, err = strconv.ParseFloat(fields[1], 64); err != nil {
		return 0, 0, 0, false
	}
	if y, err = strconv.ParseFloat(fields[2], 64); err != nil {
		return 0, 0, 0, false
	}
	if z, err = strconv.ParseFloat(fields[3], 64); err != nil {
		return 0, 0, 0, false
	}
	return x, y, z, true
}

func parseRow(fields []string) (FisnarCommand, bool) {
	switch fields[0] {
	case "Line Speed":
		if len(fields) == 2 {
			if speed, err := strconv.ParseFloat(fields[1], 64); err == nil {
				return LineSpeed{speed}, true
			}
		}
	case "Z Clearance":
		if len(fields) == 2 {
			if clearance, err := strconv.Atoi(fields[1]); err == nil {
				return ZClearance{clearance}, true
			}
		}
	case "Dummy Point":
		if x, y, z, ok := parsePoint(fields); ok {
			return DummyPoint{x, y, z}, true
		}
	case "Line Start":
		if x, y, z, ok := parsePoint(fields); ok {
			return LineStart{x, y, z}, true
		}
	case "Line Passing":
		if x, y, z, ok := parsePoint(fields); ok {
			return LinePassing{x, y, z}, true
		}
	case "Line End":
		if x, y, z, ok := parsePoint(fields); ok {
			return LineEnd{x, y, z}, true
		}
	case "Output":
		if len(fields) == 3 {
			port, err1 := strconv.Atoi(fields[1])
			state, err2 := strconv.Atoi(fields[2])
			if err1 == nil && err2 == nil {
				return Output{Port: port, State: state}, true
			}
		}
	case "End Program":
		if len(fields) == 1 {
			return EndProgram{}, true
		}
	}
	return nil, false
}

// ParseProgramCSV parses a program back from its CSV form. Unrecognized or
// malformed rows are skipped with a warning; everything else round-trips
// field for field.
func ParseProgramCSV(text string) Program {
	commands := Program{}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		fields := strings.Split(line, ",")
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
		}
		command, ok := parseRow(fields)
		if !ok {
			logger.Warnf("skipping unrecognized Fisnar CSV row: %q", line)
			continue
		}
		commands = append(commands, command)
	}
	return commands
}
