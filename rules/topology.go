package rules

import (
	"strings"

	"github.com/pkg/errors"
)

// Topology selects which of the 26 non-self cube offsets count as neighbors
type Topology int

const (
	// Moore considers all 26 surrounding cells
	Moore Topology = iota
	// VonNeumann keeps only offsets whose components sum to exactly +1
	VonNeumann
)

// MaxNeighbors is the largest neighbor count any topology can produce
const MaxNeighbors = 26

// Offset is a relative neighbor position
type Offset struct {
	DX, DY, DZ int
}

var (
	deltas = [3]int{0, 1, -1}

	mooreOffsets      = buildOffsets(Moore)
	vonNeumannOffsets = buildOffsets(VonNeumann)
)

func buildOffsets(t Topology) []Offset {
	offsets := make([]Offset, 0, MaxNeighbors)
	for _, dx := range deltas {
		for _, dy := range deltas {
			for _, dz := range deltas {
				if dx == 0 && dy == 0 && dz == 0 {
					continue
				}
				// Literal component-sum filter, not a face-adjacency test:
				// (1,1,-1) and its permutations are included, (-1,0,0) is not.
				if t == VonNeumann && dx+dy+dz != 1 {
					continue
				}
				offsets = append(offsets, Offset{DX: dx, DY: dy, DZ: dz})
			}
		}
	}
	return offsets
}

// Offsets returns the candidate neighbor offsets for the topology.
// The returned slice is shared and must not be modified.
func (t Topology) Offsets() []Offset {
	if t == VonNeumann {
		return vonNeumannOffsets
	}
	return mooreOffsets
}

// String returns the single-letter notation of the topology
func (t Topology) String() string {
	switch t {
	case Moore:
		return "M"
	case VonNeumann:
		return "V"
	default:
		return "?"
	}
}

// ParseTopology accepts "M", "moore", "V" or "vonneumann", ignoring case
func ParseTopology(s string) (Topology, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "m", "moore":
		return Moore, nil
	case "v", "vonneumann", "von-neumann", "von_neumann":
		return VonNeumann, nil
	}
	return Moore, errors.Errorf("[ParseTopology] unknown topology: %q", s)
}
