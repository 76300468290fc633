package model

import (
	"math"
	"runtime"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/sheikhrachel/go-gol3d/rules"
)

// Cell holds one lattice site: 0 is dead, 1 is alive, 2 and above is decaying
type Cell = uint8

// ErrOutOfBounds is returned when a coordinate falls outside the lattice
var ErrOutOfBounds = errors.New("coordinate out of bounds")

// Lattice is a dense 3D grid of cells evolving under a fixed rule set
type Lattice struct {
	width  int
	height int
	depth  int
	cells  []Cell
	rules  rules.RuleSet

	offsets []rules.Offset
	born    [rules.MaxNeighbors + 1]bool
	survive [rules.MaxNeighbors + 1]bool
	newborn Cell
	workers int
	pool    *BufferPool
	history []string // Store recent lattice hashes for cycle detection
}

// Option customizes a Lattice at construction
type Option func(*Lattice)

// WithWorkers sets how many goroutines Advance splits the work across.
// Values below 1 fall back to runtime.NumCPU().
func WithWorkers(n int) Option {
	return func(l *Lattice) {
		l.workers = n
	}
}

// WithBufferPool shares a buffer pool between lattices of the same size
func WithBufferPool(pool *BufferPool) Option {
	return func(l *Lattice) {
		l.pool = pool
	}
}

// New creates an all-dead lattice with the specified dimensions
func New(width, height, depth int, rs rules.RuleSet, opts ...Option) (*Lattice, error) {
	if width <= 0 || height <= 0 || depth <= 0 {
		return nil, errors.Errorf("[New] dimensions must be positive, got %dx%dx%d", width, height, depth)
	}
	if width > math.MaxInt/height || width*height > math.MaxInt/depth {
		return nil, errors.Errorf("[New] lattice %dx%dx%d is too large", width, height, depth)
	}

	l := &Lattice{
		width:   width,
		height:  height,
		depth:   depth,
		cells:   make([]Cell, width*height*depth),
		rules:   rs.Clone(),
		offsets: rs.Topology.Offsets(),
		// Truncated to the cell width: an Initial of 256 yields a dead newborn
		newborn: Cell(rs.Initial),
	}
	for _, n := range rs.Creates {
		if n >= 0 && n <= rules.MaxNeighbors {
			l.born[n] = true
		}
	}
	for _, n := range rs.Survives {
		if n >= 0 && n <= rules.MaxNeighbors {
			l.survive[n] = true
		}
	}

	for _, opt := range opts {
		opt(l)
	}
	if l.workers < 1 {
		l.workers = runtime.NumCPU()
	}
	if l.pool == nil {
		l.pool = NewBufferPool()
	}

	return l, nil
}

// Width returns the extent along x
func (l *Lattice) Width() int { return l.width }

// Height returns the extent along y
func (l *Lattice) Height() int { return l.height }

// Depth returns the extent along z
func (l *Lattice) Depth() int { return l.depth }

// Size returns the total number of cells
func (l *Lattice) Size() int { return len(l.cells) }

// Rules returns a copy of the rule set the lattice evolves under
func (l *Lattice) Rules() rules.RuleSet { return l.rules.Clone() }

// Index maps an in-range coordinate to its position in the cell array
func (l *Lattice) Index(x, y, z int) int {
	return x + y*l.width + z*l.width*l.height
}

// InBounds reports whether the coordinate lies inside the lattice
func (l *Lattice) InBounds(x, y, z int) bool {
	return x >= 0 && x < l.width && y >= 0 && y < l.height && z >= 0 && z < l.depth
}

// Get returns the value of a cell
func (l *Lattice) Get(x, y, z int) (Cell, error) {
	if !l.InBounds(x, y, z) {
		return 0, errors.Wrapf(ErrOutOfBounds, "[Get] (%d,%d,%d) in %dx%dx%d", x, y, z, l.width, l.height, l.depth)
	}
	return l.cells[l.Index(x, y, z)], nil
}

// Set overwrites the value of a cell
func (l *Lattice) Set(x, y, z int, v Cell) error {
	if !l.InBounds(x, y, z) {
		return errors.Wrapf(ErrOutOfBounds, "[Set] (%d,%d,%d) in %dx%dx%d", x, y, z, l.width, l.height, l.depth)
	}
	l.cells[l.Index(x, y, z)] = v
	l.history = nil
	return nil
}

// Cells returns a copy of the cell array in index order
func (l *Lattice) Cells() []Cell {
	out := make([]Cell, len(l.cells))
	copy(out, l.cells)
	return out
}

// CountNeighbors counts live neighbors of (x,y,z) in the current generation.
// Offsets falling outside the lattice are skipped.
func (l *Lattice) CountNeighbors(x, y, z int) int {
	count := 0
	for _, o := range l.offsets {
		nx, ny, nz := x+o.DX, y+o.DY, z+o.DZ
		if !l.InBounds(nx, ny, nz) {
			continue
		}
		if l.cells[l.Index(nx, ny, nz)] >= 1 {
			count++
		}
	}
	return count
}

// Next returns the value a cell currently at v takes when it has n live neighbors
func (l *Lattice) Next(v Cell, n int) Cell {
	inRange := n >= 0 && n <= rules.MaxNeighbors
	switch v {
	case 0:
		if inRange && l.born[n] {
			return l.newborn
		}
		return 0
	case 1:
		if inRange && l.survive[n] {
			return 1
		}
		return 0
	default:
		return v - 1
	}
}

// Advance moves the lattice forward one generation.
// Every cell is computed from the snapshot taken at the start of the call.
func (l *Lattice) Advance() {
	next := l.pool.Get(len(l.cells))
	copy(next, l.cells)

	var (
		eg            errgroup.Group
		rows          = l.height * l.depth
		numWorkers    = min(l.workers, rows)
		rowsPerWorker = (rows + numWorkers - 1) / numWorkers // Ceiling division
	)

	for i := range numWorkers {
		var (
			startRow = i * rowsPerWorker
			endRow   = min(startRow+rowsPerWorker, rows)
		)
		if startRow >= rows {
			break
		}

		eg.Go(func() error {
			l.advanceRows(next, startRow, endRow)
			return nil
		})
	}
	// Workers never fail; Wait only joins them
	_ = eg.Wait()

	l.pool.Put(l.cells)
	l.cells = next
}

// advanceRows writes the next values of x-rows [startRow, endRow) into next.
// Row r covers y = r % height, z = r / height.
func (l *Lattice) advanceRows(next []Cell, startRow, endRow int) {
	for r := startRow; r < endRow; r++ {
		y, z := r%l.height, r/l.height
		for x := range l.width {
			idx := l.Index(x, y, z)
			v := l.cells[idx]
			if v >= 2 {
				next[idx] = v - 1
				continue
			}
			if nv := l.Next(v, l.CountNeighbors(x, y, z)); nv != v {
				next[idx] = nv
			}
		}
	}
}

// CountLiving returns the number of cells with a value of at least 1
func (l *Lattice) CountLiving() (count int) {
	for _, v := range l.cells {
		if v >= 1 {
			count++
		}
	}
	return
}
