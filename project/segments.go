package project

// PathSegment is a run of consecutive positional commands together with the
// output-state vector active while they execute, for path-coloring
// visualization.
type PathSegment struct {
	Points  [][3]float64
	Outputs [4]int
}

// SegmentProgram partitions a program into path segments. Output commands
// are consumed as state updates and break the current run; speed and
// clearance commands do not.
func SegmentProgram(p Program) []PathSegment {
	segments := []PathSegment{}
	var states [4]int
	open := false

	for _, command := range p {
		if out, ok := command.(Output); ok {
			if out.Port >= 1 && out.Port <= 4 {
				states[out.Port-1] = out.State
			}
			open = false
			continue
		}
		x, y, z, ok := commandPosition(command)
		if !ok {
			continue
		}
		if !open {
			segments = append(segments, PathSegment{Outputs: states})
			open = true
		}
		last := &segments[len(segments)-1]
		last.Points = append(last.Points, [3]float64{x, y, z})
	}
	return segments
}
