package project

import (
	"sort"
	"strconv"
	"strings"

	"github.com/flosch/pongo2/v5"
)

var reportTemplate = pongo2.Must(pongo2.FromString(
	`Fisnar conversion summary for {{ source }}
  commands:      {{ total }} ({{ moves }} moves, {{ toggles }} output toggles, {{ speeds }} speed changes)
  outputs used:  {{ used }}
  x range:       {{ xmin }} .. {{ xmax }}
  y range:       {{ ymin }} .. {{ ymax }}
  z range:       {{ zmin }} .. {{ zmax }}
  serial frames: {{ frames }}
`))

// BuildReport renders a human-readable summary of a converted program and
// its encoded frame sequence.
func BuildReport(p Program, frames []Frame, source string) (string, error) {
	moves, toggles, speeds := 0, 0, 0
	usedSet := map[int]bool{}
	var xmin, xmax, ymin, ymax, zmin, zmax float64
	havePos := false

	for _, command := range p {
		switch c := command.(type) {
		case LineSpeed:
			speeds++
		case Output:
			toggles++
			if c.State == 1 {
				usedSet[c.Port] = true
			}
		}
		x, y, z, ok := commandPosition(command)
		if !ok {
			continue
		}
		moves++
		if !havePos {
			xmin, xmax, ymin, ymax, zmin, zmax = x, x, y, y, z, z
			havePos = true
			continue
		}
		if x < xmin {
			xmin = x
		}
		if x > xmax {
			xmax = x
		}
		if y < ymin {
			ymin = y
		}
		if y > ymax {
			ymax = y
		}
		if z < zmin {
			zmin = z
		}
		if z > zmax {
			zmax = z
		}
	}

	ports := []int{}
	for port := range usedSet {
		ports = append(ports, port)
	}
	sort.Ints(ports)
	used := "none"
	if len(ports) > 0 {
		parts := make([]string, len(ports))
		for i, port := range ports {
			parts[i] = strconv.Itoa(port)
		}
		used = strings.Join(parts, ", ")
	}

	return reportTemplate.Execute(pongo2.Context{
		"source":  source,
		"total":   len(p),
		"moves":   moves,
		"toggles": toggles,
		"speeds":  speeds,
		"used":    used,
		"xmin":    formatFloat(xmin),
		"xmax":    formatFloat(xmax),
		"ymin":    formatFloat(ymin),
		"ymax":    formatFloat(ymax),
		"zmin":    formatFloat(zmin),
		"zmax":    formatFloat(zmax),
		"frames":  len(frames),
	})
}
