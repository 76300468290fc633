package model

import (
	"math/rand"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sheikhrachel/go-gol3d/rules"
)

func newTestLattice(t *testing.T, w, h, d int, rs rules.RuleSet, opts ...Option) *Lattice {
	t.Helper()
	l, err := New(w, h, d, rs, opts...)
	require.NoError(t, err)
	return l
}

func mustGet(t *testing.T, l *Lattice, x, y, z int) Cell {
	t.Helper()
	v, err := l.Get(x, y, z)
	require.NoError(t, err)
	return v
}

func mustSet(t *testing.T, l *Lattice, x, y, z int, v Cell) {
	t.Helper()
	require.NoError(t, l.Set(x, y, z, v))
}

func TestNew_AllDead(t *testing.T) {
	l := newTestLattice(t, 3, 4, 5, rules.New([]int{4}, []int{4}, 5, rules.Moore))
	assert.Equal(t, 3, l.Width())
	assert.Equal(t, 4, l.Height())
	assert.Equal(t, 5, l.Depth())
	assert.Equal(t, 60, l.Size())
	assert.Equal(t, 0, l.CountLiving())
}

func TestNew_InvalidDimensions(t *testing.T) {
	rs := rules.New(nil, nil, 1, rules.Moore)
	for _, dims := range [][3]int{{0, 1, 1}, {1, 0, 1}, {1, 1, 0}, {-2, 3, 3}} {
		_, err := New(dims[0], dims[1], dims[2], rs)
		assert.Error(t, err, "dims %v", dims)
	}
}

func TestNew_CopiesRules(t *testing.T) {
	rs := rules.New([]int{4}, []int{4}, 5, rules.Moore)
	l := newTestLattice(t, 2, 2, 2, rs)
	rs.Creates[0] = 7
	assert.Equal(t, []int{4}, l.Rules().Creates)
}

func TestIndex(t *testing.T) {
	l := newTestLattice(t, 10, 10, 10, rules.New(nil, nil, 1, rules.Moore))
	assert.Equal(t, 0, l.Index(0, 0, 0))
	assert.Equal(t, 7, l.Index(7, 0, 0))
	assert.Equal(t, 30, l.Index(0, 3, 0))
	assert.Equal(t, 555, l.Index(5, 5, 5))
	assert.Equal(t, 999, l.Index(9, 9, 9))
}

func TestGetSet_OutOfBounds(t *testing.T) {
	l := newTestLattice(t, 2, 3, 4, rules.New(nil, nil, 1, rules.Moore))

	for _, c := range [][3]int{{-1, 0, 0}, {2, 0, 0}, {0, 3, 0}, {0, 0, 4}, {0, 0, -1}} {
		err := l.Set(c[0], c[1], c[2], 1)
		assert.True(t, errors.Is(err, ErrOutOfBounds), "set %v", c)

		_, err = l.Get(c[0], c[1], c[2])
		assert.True(t, errors.Is(err, ErrOutOfBounds), "get %v", c)
	}
	assert.Equal(t, 0, l.CountLiving(), "out of bounds writes must not touch the lattice")
}

func TestNext(t *testing.T) {
	l := newTestLattice(t, 1, 1, 1, rules.New([]int{3}, []int{2, 3}, 4, rules.Moore))

	tests := []struct {
		name      string
		v         Cell
		neighbors int
		want      Cell
	}{
		{"dead birth", 0, 3, 4},
		{"dead stays dead", 0, 2, 0},
		{"alive survives", 1, 2, 1},
		{"alive survives upper", 1, 3, 1},
		{"alive dies", 1, 4, 0},
		{"alive dies lonely", 1, 0, 0},
		{"decay ignores neighbors", 4, 3, 3},
		{"decay to terminal stage", 2, 26, 1},
		{"decay from max", 255, 0, 254},
		{"count out of range", 0, 40, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, l.Next(tt.v, tt.neighbors))
		})
	}
}

func TestAdvance_Birth(t *testing.T) {
	l := newTestLattice(t, 10, 10, 10, rules.New([]int{4}, []int{4}, 5, rules.Moore))

	seeds := [][3]int{{5, 5, 5}, {5, 5, 6}, {7, 5, 5}, {7, 5, 6}}
	for _, s := range seeds {
		mustSet(t, l, s[0], s[1], s[2], 5)
	}

	assert.Equal(t, 4, l.CountNeighbors(6, 5, 5))
	assert.Equal(t, 2, l.CountNeighbors(6, 5, 7))

	l.Advance()

	assert.Equal(t, Cell(5), mustGet(t, l, 6, 5, 5))
	assert.Equal(t, Cell(5), mustGet(t, l, 6, 5, 6))
	assert.Equal(t, Cell(0), mustGet(t, l, 6, 5, 7))
	for _, s := range seeds {
		assert.Equal(t, Cell(4), mustGet(t, l, s[0], s[1], s[2]), "seed %v", s)
	}
}

func TestAdvance_DecayIgnoresNeighbors(t *testing.T) {
	// every count causes birth and survival, decay must still win
	all := make([]int, rules.MaxNeighbors+1)
	for i := range all {
		all[i] = i
	}
	l := newTestLattice(t, 3, 3, 3, rules.New(all, all, 9, rules.Moore))
	for z := range 3 {
		for y := range 3 {
			for x := range 3 {
				mustSet(t, l, x, y, z, 9)
			}
		}
	}
	mustSet(t, l, 1, 1, 1, 6)

	for want := Cell(5); want >= 1; want-- {
		l.Advance()
		assert.Equal(t, want, mustGet(t, l, 1, 1, 1))
	}
}

func TestAdvance_SurvivalAndDeath(t *testing.T) {
	rs := rules.New(nil, []int{1}, 1, rules.Moore)
	l := newTestLattice(t, 4, 1, 1, rs)

	// pair survives with one neighbor each, lone cell dies
	mustSet(t, l, 0, 0, 0, 1)
	mustSet(t, l, 1, 0, 0, 1)
	mustSet(t, l, 3, 0, 0, 1)

	l.Advance()

	assert.Equal(t, Cell(1), mustGet(t, l, 0, 0, 0))
	assert.Equal(t, Cell(1), mustGet(t, l, 1, 0, 0))
	assert.Equal(t, Cell(0), mustGet(t, l, 2, 0, 0))
	assert.Equal(t, Cell(0), mustGet(t, l, 3, 0, 0))
}

func TestAdvance_NewbornWithoutDecayTail(t *testing.T) {
	l := newTestLattice(t, 3, 1, 1, rules.New([]int{2}, nil, 1, rules.Moore))
	mustSet(t, l, 0, 0, 0, 1)
	mustSet(t, l, 2, 0, 0, 1)

	l.Advance()
	assert.Equal(t, Cell(1), mustGet(t, l, 1, 0, 0))
	assert.Equal(t, Cell(0), mustGet(t, l, 0, 0, 0))

	// the newborn faces the survival test straight away
	l.Advance()
	assert.Equal(t, Cell(0), mustGet(t, l, 1, 0, 0))
}

func TestAdvance_SingleCellBoundary(t *testing.T) {
	for _, topo := range []rules.Topology{rules.Moore, rules.VonNeumann} {
		t.Run(topo.String(), func(t *testing.T) {
			l := newTestLattice(t, 1, 1, 1, rules.New([]int{1, 2, 26}, nil, 3, topo))
			assert.Equal(t, 0, l.CountNeighbors(0, 0, 0))
			l.Advance()
			assert.Equal(t, Cell(0), mustGet(t, l, 0, 0, 0))

			l = newTestLattice(t, 1, 1, 1, rules.New([]int{0}, nil, 3, topo))
			l.Advance()
			assert.Equal(t, Cell(3), mustGet(t, l, 0, 0, 0))
		})
	}
}

func TestCountNeighbors_Topology(t *testing.T) {
	build := func(topo rules.Topology) *Lattice {
		l := newTestLattice(t, 3, 3, 3, rules.New(nil, nil, 1, topo))
		mustSet(t, l, 2, 2, 0, 1) // offset (1,1,-1), component sum 1
		mustSet(t, l, 0, 1, 1, 1) // offset (-1,0,0), a face but sum -1
		mustSet(t, l, 2, 1, 1, 1) // offset (1,0,0)
		return l
	}

	moore := build(rules.Moore)
	vn := build(rules.VonNeumann)

	assert.Equal(t, 3, moore.CountNeighbors(1, 1, 1))
	assert.Equal(t, 2, vn.CountNeighbors(1, 1, 1))
}

func TestCountNeighbors_CornerMoore(t *testing.T) {
	l := newTestLattice(t, 3, 3, 3, rules.New(nil, nil, 1, rules.Moore))
	for i := range l.cells {
		l.cells[i] = 2
	}
	assert.Equal(t, 7, l.CountNeighbors(0, 0, 0))
	assert.Equal(t, 26, l.CountNeighbors(1, 1, 1))
	assert.Equal(t, 17, l.CountNeighbors(1, 1, 0))
}

func TestAdvance_ReadsSnapshotOnly(t *testing.T) {
	// a row of births: in-place updates would cascade along x
	l := newTestLattice(t, 5, 1, 1, rules.New([]int{1}, nil, 2, rules.Moore))
	mustSet(t, l, 0, 0, 0, 1)

	l.Advance()

	assert.Equal(t, []Cell{0, 2, 0, 0, 0}, l.Cells())
}

func TestAdvance_AllDeadStaysDead(t *testing.T) {
	l := newTestLattice(t, 6, 5, 4, rules.New([]int{1, 2, 3}, []int{2, 3}, 4, rules.Moore))
	for range 10 {
		l.Advance()
	}
	assert.Equal(t, 0, l.CountLiving())
}

func TestAdvance_DeterministicAcrossWorkers(t *testing.T) {
	rs := rules.New([]int{4, 5}, []int{3, 4, 5, 6}, 6, rules.Moore)

	seed := func(l *Lattice) {
		l.Randomize(rand.New(rand.NewSource(42)), 0.3)
	}

	serial := newTestLattice(t, 9, 7, 11, rs, WithWorkers(1))
	parallel := newTestLattice(t, 9, 7, 11, rs, WithWorkers(8))
	seed(serial)
	seed(parallel)
	require.Equal(t, serial.Cells(), parallel.Cells())

	for gen := range 15 {
		serial.Advance()
		parallel.Advance()
		require.Equal(t, serial.Cells(), parallel.Cells(), "generation %d", gen)
	}
}

func TestAdvance_InitialTruncatesToCellWidth(t *testing.T) {
	l := newTestLattice(t, 1, 1, 1, rules.New([]int{0}, nil, 258, rules.Moore))
	l.Advance()
	assert.Equal(t, Cell(2), mustGet(t, l, 0, 0, 0))
}

func TestAdvance_SharedPool(t *testing.T) {
	pool := NewBufferPool()
	rs := rules.New([]int{1}, []int{1}, 2, rules.VonNeumann)
	a := newTestLattice(t, 4, 4, 4, rs, WithBufferPool(pool))
	b := newTestLattice(t, 4, 4, 4, rs, WithBufferPool(pool))
	mustSet(t, a, 1, 1, 1, 1)
	mustSet(t, b, 1, 1, 1, 1)

	for range 5 {
		a.Advance()
		b.Advance()
		require.Equal(t, a.Cells(), b.Cells())
	}
}
