package rules

import (
	"slices"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

/*
RuleSet describes how a cell moves between states.

	Creates:  neighbor counts that turn a dead cell into a newborn
	Survives: neighbor counts that keep a cell at value 1 alive
	Initial:  the decay-stage value a newborn starts at
	Topology: which offsets are neighbors

No validation is performed; empty lists make birth or survival impossible.
*/
type RuleSet struct {
	Creates  []int
	Survives []int
	Initial  uint32
	Topology Topology
}

// New builds a rule set, copying the count slices so later caller edits do not leak in
func New(creates, survives []int, initial uint32, topology Topology) RuleSet {
	return RuleSet{
		Creates:  slices.Clone(creates),
		Survives: slices.Clone(survives),
		Initial:  initial,
		Topology: topology,
	}
}

// Clone returns a deep copy of the rule set
func (r RuleSet) Clone() RuleSet {
	return New(r.Creates, r.Survives, r.Initial, r.Topology)
}

// IsBirth reports whether a dead cell with n live neighbors is born
func (r RuleSet) IsBirth(n int) bool {
	return slices.Contains(r.Creates, n)
}

// IsSurvival reports whether a cell at value 1 with n live neighbors stays alive
func (r RuleSet) IsSurvival(n int) bool {
	return slices.Contains(r.Survives, n)
}

// String renders the rule set in "creates/survives/initial/topology" notation
func (r RuleSet) String() string {
	return strings.Join([]string{
		formatCounts(r.Creates),
		formatCounts(r.Survives),
		strconv.FormatUint(uint64(r.Initial), 10),
		r.Topology.String(),
	}, "/")
}

/*
Parse reads a rule set from "creates/survives/initial/topology" notation.

Count lists are comma separated and may contain inclusive ranges, so
"4/4/5/M" and "0-2,6/5-7/10/V" are both valid. A list may be empty.
*/
func Parse(notation string) (RuleSet, error) {
	parts := strings.Split(strings.TrimSpace(notation), "/")
	if len(parts) != 4 {
		return RuleSet{}, errors.Errorf("[Parse] expected 4 '/'-separated fields, got %d in %q", len(parts), notation)
	}

	creates, err := parseCounts(parts[0])
	if err != nil {
		return RuleSet{}, errors.Wrapf(err, "[Parse] invalid creates field in %q", notation)
	}
	survives, err := parseCounts(parts[1])
	if err != nil {
		return RuleSet{}, errors.Wrapf(err, "[Parse] invalid survives field in %q", notation)
	}
	initial, err := strconv.ParseUint(strings.TrimSpace(parts[2]), 10, 32)
	if err != nil {
		return RuleSet{}, errors.Wrapf(err, "[Parse] invalid initial field in %q", notation)
	}
	if initial < 1 {
		return RuleSet{}, errors.Errorf("[Parse] initial must be at least 1 in %q", notation)
	}
	topology, err := ParseTopology(parts[3])
	if err != nil {
		return RuleSet{}, errors.Wrapf(err, "[Parse] invalid topology field in %q", notation)
	}

	return RuleSet{
		Creates:  creates,
		Survives: survives,
		Initial:  uint32(initial),
		Topology: topology,
	}, nil
}

func parseCounts(field string) ([]int, error) {
	field = strings.TrimSpace(field)
	if field == "" {
		return []int{}, nil
	}

	var counts []int
	for _, item := range strings.Split(field, ",") {
		lo, hi, isRange := strings.Cut(strings.TrimSpace(item), "-")
		from, err := parseCount(lo)
		if err != nil {
			return nil, err
		}
		to := from
		if isRange {
			if to, err = parseCount(hi); err != nil {
				return nil, err
			}
			if to < from {
				return nil, errors.Errorf("descending range %q", item)
			}
		}
		for n := from; n <= to; n++ {
			if !slices.Contains(counts, n) {
				counts = append(counts, n)
			}
		}
	}
	slices.Sort(counts)
	return counts, nil
}

func parseCount(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, errors.Wrapf(err, "bad neighbor count %q", s)
	}
	if n < 0 || n > MaxNeighbors {
		return 0, errors.Errorf("neighbor count %d outside [0, %d]", n, MaxNeighbors)
	}
	return n, nil
}

// formatCounts collapses sorted runs into ranges, "1,2,3,5" becomes "1-3,5"
func formatCounts(counts []int) string {
	sorted := slices.Clone(counts)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	var parts []string
	for i := 0; i < len(sorted); {
		j := i
		for j+1 < len(sorted) && sorted[j+1] == sorted[j]+1 {
			j++
		}
		if j == i {
			parts = append(parts, strconv.Itoa(sorted[i]))
		} else {
			parts = append(parts, strconv.Itoa(sorted[i])+"-"+strconv.Itoa(sorted[j]))
		}
		i = j + 1
	}
	return strings.Join(parts, ",")
}
