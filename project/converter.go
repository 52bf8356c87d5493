package project

import (
	"fmt"
	"strings"

	"fisnar/common/logger"

	uuid "github.com/satori/go.uuid"
)

// Conversion modes. With an I/O card the Fisnar drives up to four dispensing
// outputs and every move is a Dummy Point framed by Output toggles; without
// one a single needle is driven through typed Line Start/Passing/End points.
const (
	IO_CARD    = 2
	NO_IO_CARD = 3
)

const (
	// default line speed in mm/s; gcode F values are mm/min
	defaultLineSpeed = 30.0

	defaultZClearance = 5

	// footprint of the gcode <-> Fisnar x/y mirror remap
	coordFootprint = 200.0
)

// PrintSurface is the reachable volume of the dispenser in device
// coordinates; z is implicitly bounded below by 0.
type PrintSurface struct {
	XMin, XMax float64
	YMin, YMax float64
	ZMax       float64
}

func (s PrintSurface) Validate() error {
	if s.XMin >= s.XMax || s.YMin >= s.YMax || s.ZMax <= 0 {
		return fmt.Errorf("invalid print surface: x %v..%v y %v..%v z max %v",
			s.XMin, s.XMax, s.YMin, s.YMax, s.ZMax)
	}
	return nil
}

// Converter turns a gcode motion program into a Fisnar command Program.
// One instance handles one machine profile; each Convert call owns its
// Program exclusively until it is returned.
type Converter struct {
	surface    PrintSurface
	outputs    [4]int // extruder channel -> output port, 0 = unset
	mode       int
	continuous bool

	gcode_commands []*GCodeCommand

	// single-slot cache of the last successful conversion, read by the
	// serial upload path
	last_converted Program
}

func NewConverter() *Converter {
	self := new(Converter)
	self.surface = PrintSurface{XMin: 0, XMax: 200, YMin: 0, YMax: 200, ZMax: 100}
	self.outputs = [4]int{1, 2, 3, 4}
	self.mode = IO_CARD
	return self
}

func (self *Converter) Set_print_surface(surface PrintSurface) {
	self.surface = surface
}

func (self *Converter) Get_print_surface() PrintSurface {
	return self.surface
}

// Set_extruder_outputs assigns output ports to extruders 1..4; 0 marks an
// extruder as unconfigured.
func (self *Converter) Set_extruder_outputs(out1, out2, out3, out4 int) {
	self.outputs = [4]int{out1, out2, out3, out4}
}

func (self *Converter) Set_conversion_mode(mode int) {
	self.mode = mode
}

func (self *Converter) Set_continuous_extrusion(on bool) {
	self.continuous = on
}

func (self *Converter) Set_gcode(gcode string) {
	self.gcode_commands = Get_stripped_commands(gcode)
}

func (self *Converter) Last_converted() Program {
	return self.last_converted
}

// Convert runs the full pipeline: extent analysis, translation, coordinate
// transform, redundancy elimination, boundary validation. On success the
// returned Program is also cached for the upload path; on failure nothing
// is cached and no partial Program escapes.
func (self *Converter) Convert() (Program, error) {
	cid := uuid.NewV4()

	if err := self.surface.Validate(); err != nil {
		return nil, err
	}

	channels := self.channelsInGcode()
	if err := self.checkChannels(channels); err != nil {
		return nil, err
	}

	commands, err := self.translate()
	if err != nil {
		return nil, err
	}

	invertCoords(commands, self.surface.ZMax)

	// effectively a homing command, already in device coordinates
	commands[2] = DummyPoint{self.surface.XMin, self.surface.YMin, self.surface.ZMax}

	if self.mode == IO_CARD {
		commands = optimizeOutputs(commands)
	}
	commands = collapseSpeeds(commands)
	if self.mode == IO_CARD && self.continuous {
		commands = mergeContinuous(commands)
	}

	if err := boundaryCheck(commands, self.surface); err != nil {
		return nil, err
	}

	logger.Infof("conversion %s: %d gcode commands -> %d Fisnar commands",
		cid, len(self.gcode_commands), len(commands))

	self.last_converted = commands
	return commands, nil
}

// channelsInGcode reports which logical extruder channels the program
// selects. A program with no toolhead-select command uses channel 0 only.
func (self *Converter) channelsInGcode() [4]bool {
	var channels [4]bool
	for _, command := range self.gcode_commands {
		if ch, ok := toolheadChannel(command); ok {
			channels[ch] = true
		}
	}
	if channels == [4]bool{} {
		logger.Debug("only one extruder is being used")
		channels[0] = true
	}
	return channels
}

func (self *Converter) checkChannels(channels [4]bool) error {
	if self.mode == NO_IO_CARD {
		if channels != [4]bool{true, false, false, false} {
			for ch := 1; ch < 4; ch++ {
				if channels[ch] {
					return &UnconfiguredChannelError{Channel: ch}
				}
			}
		}
		return nil
	}
	for ch, used := range channels {
		if used && self.outputs[ch] == 0 {
			return &UnconfiguredChannelError{Channel: ch}
		}
	}
	return nil
}

func toolheadChannel(command *GCodeCommand) (int, bool) {
	code := command.Get_command()
	if len(code) == 2 && code[0] == 'T' && code[1] >= '0' && code[1] <= '3' {
		return int(code[1] - '0'), true
	}
	return 0, false
}

func isMotion(command *GCodeCommand) bool {
	code := command.Get_command()
	return code == "G0" || code == "G1"
}

func extrudes(command *GCodeCommand) bool {
	return command.Has_param("E") && command.Get_param("E") > 0
}

func hasAnyAxis(command *GCodeCommand) bool {
	return command.Has_param("X") || command.Has_param("Y") || command.Has_param("Z")
}

func hasAllAxes(command *GCodeCommand) bool {
	return command.Has_param("X") && command.Has_param("Y") && command.Has_param("Z")
}

// firstExtrudingIndex finds the earliest motion command that deposits
// material while moving at least one axis. Returns -1 if the program never
// deposits.
func firstExtrudingIndex(commands []*GCodeCommand) int {
	for i, command := range commands {
		if isMotion(command) && hasAnyAxis(command) && extrudes(command) {
			return i
		}
	}
	return -1
}

// firstPositionalIndex finds the translation start boundary: scanning
// backward from the first deposit, the nearest motion command that fixes
// all three axes without depositing.
func firstPositionalIndex(commands []*GCodeCommand) int {
	first := firstExtrudingIndex(commands)
	if first < 0 {
		return -1
	}
	for i := first; i >= 0; i-- {
		command := commands[i]
		if isMotion(command) && hasAllAxes(command) && !extrudes(command) {
			return i
		}
	}
	return -1
}

func lastExtrudingIndex(commands []*GCodeCommand) int {
	for i := len(commands) - 1; i >= 0; i-- {
		command := commands[i]
		if isMotion(command) && hasAnyAxis(command) && extrudes(command) {
			return i
		}
	}
	return -1
}

// translate walks every gcode command in source order, emitting Fisnar
// commands for the bounded sub-range. Speed changes register wherever they
// appear in the stream.
func (self *Converter) translate() (Program, error) {
	first := firstPositionalIndex(self.gcode_commands)
	last := lastExtrudingIndex(self.gcode_commands)
	if first < 0 || last < 0 {
		return nil, ErrInsufficientCommands
	}

	commands := Program{
		LineSpeed{defaultLineSpeed},
		ZClearance{defaultZClearance},
		homePlaceholder{},
	}

	// first extruder selected anywhere in the stream
	currChannel := 0
	for _, command := range self.gcode_commands {
		if ch, ok := toolheadChannel(command); ok {
			currChannel = ch
			break
		}
	}

	currPos := [3]float64{}
	currSpeed := defaultLineSpeed
	outputsOn := [4]bool{}

	for i, command := range self.gcode_commands {
		if command.Has_param("F") && command.Get_param("F")/60 != currSpeed {
			currSpeed = command.Get_param("F") / 60
			commands = append(commands, LineSpeed{currSpeed})
		}

		if self.mode == IO_CARD {
			if first <= i && i <= last {
				switch {
				case isMotion(command):
					out := self.outputs[currChannel]
					state := 0
					if extrudes(command) {
						state = 1
						outputsOn[out-1] = true
					}
					resolvePosition(command, &currPos)
					commands = append(commands,
						Output{Port: out, State: state},
						DummyPoint{currPos[0], currPos[1], currPos[2]})
				case strings.HasPrefix(command.Get_command(), "T"):
					if ch, ok := toolheadChannel(command); ok {
						currChannel = ch
					}
				default:
					// G2/G3 arcs and G90/G91 positioning modes are
					// accepted but not translated; all input is treated
					// as absolute moves
				}
			}
		} else {
			if first <= i && i < last {
				if isMotion(command) {
					next := self.nextMotionCommand(i)
					commands = append(commands, g0g1NoIO(command, next, &currPos))
				}
			} else if i == last {
				resolvePosition(command, &currPos)
				commands = append(commands, LineEnd{currPos[0], currPos[1], currPos[2]})
			}
		}
	}

	if self.mode == IO_CARD {
		for port := 1; port <= 4; port++ {
			if outputsOn[port-1] {
				commands = append(commands, Output{Port: port, State: 0})
			}
		}
	}
	commands = append(commands, EndProgram{})

	return commands, nil
}

func (self *Converter) nextMotionCommand(i int) *GCodeCommand {
	for j := i + 1; j < len(self.gcode_commands); j++ {
		if isMotion(self.gcode_commands[j]) {
			return self.gcode_commands[j]
		}
	}
	return nil
}

func resolvePosition(command *GCodeCommand, currPos *[3]float64) {
	if command.Has_param("X") {
		currPos[0] = command.Get_param("X")
	}
	if command.Has_param("Y") {
		currPos[1] = command.Get_param("Y")
	}
	if command.Has_param("Z") {
		currPos[2] = command.Get_param("Z")
	}
}

// g0g1NoIO classifies a move by whether it and the following move deposit:
// deposit->deposit is a passing point, deposit->travel ends a line,
// travel->deposit starts one, travel->travel is a plain point.
func g0g1NoIO(command, next *GCodeCommand, currPos *[3]float64) FisnarCommand {
	resolvePosition(command, currPos)
	x, y, z := currPos[0], currPos[1], currPos[2]

	nextExtrudes := next != nil && extrudes(next)
	if extrudes(command) {
		if nextExtrudes {
			return LinePassing{x, y, z}
		}
		return LineEnd{x, y, z}
	}
	if nextExtrudes {
		return LineStart{x, y, z}
	}
	return DummyPoint{x, y, z}
}

// invertCoords remaps every positional command from the gcode frame to the
// Fisnar frame: mirrored in x/y over a 200x200 footprint, z measured down
// from the gantry's top travel limit.
func invertCoords(commands Program, zMax float64) {
	for i, command := range commands {
		if x, y, z, ok := commandPosition(command); ok {
			commands[i] = withPosition(command, coordFootprint-x, coordFootprint-y, zMax-z)
		}
	}
}

// optimizeOutputs drops Output commands that restate the retained state of
// their port. The first occurrence for a port is always retained. Idempotent.
func optimizeOutputs(commands Program) Program {
	kept := make(Program, 0, len(commands))
	states := map[int]int{}
	for _, command := range commands {
		if out, ok := command.(Output); ok {
			if state, seen := states[out.Port]; seen && state == out.State {
				continue
			}
			states[out.Port] = out.State
		}
		kept = append(kept, command)
	}
	for port := 1; port <= 4; port++ {
		if _, seen := states[port]; !seen {
			logger.Debugf("output %d does not appear in Fisnar commands", port)
		}
	}
	return kept
}

// collapseSpeeds keeps only the last speed of each contiguous run of Line
// Speed commands.
func collapseSpeeds(commands Program) Program {
	kept := make(Program, 0, len(commands))
	for _, command := range commands {
		if _, ok := command.(LineSpeed); ok {
			if len(kept) > 0 {
				if _, prev := kept[len(kept)-1].(LineSpeed); prev {
					kept[len(kept)-1] = command
					continue
				}
			}
		}
		kept = append(kept, command)
	}
	return kept
}

// mergeContinuous keeps a single dispensing output energized across what
// were discrete line segments. Only single-output programs are merged;
// multi-output programs are left as-is.
func mergeContinuous(commands Program) Program {
	port := 0
	for _, command := range commands {
		if out, ok := command.(Output); ok && out.State == 1 {
			if port != 0 && port != out.Port {
				logger.Warn("continuous extrusion requested but multiple outputs are used; leaving program unmodified")
				return commands
			}
			port = out.Port
		}
	}
	if port == 0 {
		return commands
	}

	firstOn := -1
	finalOff := -1
	for i, command := range commands {
		out, ok := command.(Output)
		if !ok || out.State != 1 {
			continue
		}
		if firstOn < 0 {
			firstOn = i
			continue
		}
		// record the off-toggle paired with this on; the last one recorded
		// wins
		for j := i + 1; j < len(commands); j++ {
			if off, ok := commands[j].(Output); ok && off.State == 0 {
				finalOff = j
				break
			}
		}
	}
	if firstOn < 0 || finalOff < 0 {
		return commands
	}

	kept := make(Program, 0, len(commands))
	for i, command := range commands {
		if _, ok := command.(Output); ok && i > firstOn && i < finalOff {
			continue
		}
		kept = append(kept, command)
	}
	return kept
}

// boundaryCheck verifies every position lies inside the print surface,
// bounds inclusive. Any violation fails the conversion outright.
func boundaryCheck(commands Program, surface PrintSurface) error {
	for _, command := range commands {
		x, y, z, ok := commandPosition(command)
		if !ok {
			continue
		}
		if x < surface.XMin || x > surface.XMax ||
			y < surface.YMin || y > surface.YMax ||
			z < 0 || z > surface.ZMax {
			logger.Errorf("out of bounds: %s", csvRow(command))
			return &OutOfBoundsError{Command: command}
		}
	}
	return nil
}
