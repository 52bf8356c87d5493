package project

import (
	"strconv"
	"strings"

	"fisnar/common/logger"
)

// Serial wire protocol of the Fisnar controller. Each frame is a two-byte
// opcode, a space, comma-separated decimal arguments and a carriage-return
// terminator.
const (
	OpOutput  = "OU" // OU port, state
	OpSpeed   = "SP" // SP speed
	OpVaPoint = "VA" // VA x,y,z  (queue a target position)
	OpGo      = "ID" // ID        (execute the queued move)

	frameTerminator = 0x0D

	// the controller accepts at most this many queued pulses per
	// dispensing session before it must be cycled
	maxQueuedPoints = 99
)

type Frame struct {
	Op   string
	Args []string
}

func (f Frame) Encode() []byte {
	buf := []byte(f.Op)
	buf = append(buf, ' ')
	buf = append(buf, strings.Join(f.Args, ",")...)
	buf = append(buf, frameTerminator)
	return buf
}

func ouFrame(port, state int) Frame {
	return Frame{Op: OpOutput, Args: []string{strconv.Itoa(port), strconv.Itoa(state)}}
}

func spFrame(speed float64) Frame {
	return Frame{Op: OpSpeed, Args: []string{formatFloat(speed)}}
}

func vaFrame(x, y, z float64) Frame {
	return Frame{Op: OpVaPoint, Args: []string{formatFloat(x), formatFloat(y), formatFloat(z)}}
}

func idFrame() Frame {
	return Frame{Op: OpGo}
}

// EncodeProgram converts a validated program into its ordered frame
// sequence. With continuous extrusion the mapping is one-to-one; otherwise
// deposit brackets buffer their points and the 99-point hardware ceiling is
// honored with a forced OU,ID,OU synchronization cycle.
func EncodeProgram(p Program, continuous bool) []Frame {
	if continuous {
		return encodeDirect(p)
	}
	return encodeBracketed(p)
}

func encodeDirect(p Program) []Frame {
	frames := []Frame{}
	for _, command := range p {
		switch c := command.(type) {
		case LineSpeed:
			frames = append(frames, spFrame(c.Speed))
		case Output:
			frames = append(frames, ouFrame(c.Port, c.State))
		case DummyPoint:
			frames = append(frames, vaFrame(c.X, c.Y, c.Z), idFrame())
		case ZClearance:
			// no wire opcode; clearance lives in the CSV form only
		case EndProgram:
			return frames
		default:
			logger.Warnf("unexpected %s command reached the protocol encoder, skipping", command.Kind())
		}
	}
	return frames
}

func encodeBracketed(p Program) []Frame {
	frames := []Frame{}
	currSpeed := defaultLineSpeed
	inBracket := false
	bracketPort := 0
	points := 0

	for _, command := range p {
		switch c := command.(type) {
		case LineSpeed:
			currSpeed = c.Speed
			frames = append(frames, spFrame(c.Speed))
		case Output:
			switch {
			case c.State == 1 && !inBracket:
				inBracket = true
				bracketPort = c.Port
				points = 0
				frames = append(frames, ouFrame(c.Port, 1))
			case c.State == 0 && inBracket && c.Port == bracketPort:
				inBracket = false
				frames = append(frames, ouFrame(c.Port, 0), spFrame(currSpeed))
			default:
				frames = append(frames, ouFrame(c.Port, c.State))
			}
		case DummyPoint:
			frames = append(frames, vaFrame(c.X, c.Y, c.Z), idFrame())
			if inBracket {
				points++
				if points == maxQueuedPoints {
					// cycle the output so the controller flushes its
					// pulse queue before more points are buffered
					frames = append(frames,
						ouFrame(bracketPort, 1), idFrame(), ouFrame(bracketPort, 0))
					points = 0
				}
			}
		case ZClearance:
			// no wire opcode; clearance lives in the CSV form only
		case EndProgram:
			return frames
		default:
			logger.Warnf("unexpected %s command reached the protocol encoder, skipping", command.Kind())
		}
	}
	return frames
}

// EncodeFrames flattens a frame sequence to the raw bytes sent down the
// serial line.
func EncodeFrames(frames []Frame) []byte {
	buf := []byte{}
	for _, frame := range frames {
		buf = append(buf, frame.Encode()...)
	}
	return buf
}
