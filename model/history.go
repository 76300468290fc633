package model

import (
	"crypto/md5"
	"fmt"
	"math/rand"
)

const historySize = 5

// Hash returns an MD5 digest of the current cell values
func (l *Lattice) Hash() string {
	return fmt.Sprintf("%x", md5.Sum(l.cells))
}

// UpdateHistory adds the current state to history and maintains its size
func (l *Lattice) UpdateHistory() {
	l.history = append(l.history, l.Hash())

	if len(l.history) > historySize {
		l.history = l.history[1:]
	}
}

// IsStagnant reports whether the current state repeats one of the last three
// recorded states, covering still lifes and cycles of period up to three
func (l *Lattice) IsStagnant() bool {
	if len(l.history) < 3 {
		return false
	}

	current := l.Hash()
	for i := 1; i <= 3; i++ {
		if l.history[len(l.history)-i] == current {
			return true
		}
	}
	return false
}

// Randomize seeds every dead cell as a newborn with the given probability
func (l *Lattice) Randomize(rng *rand.Rand, density float64) {
	if density <= 0 {
		return
	}
	for i, v := range l.cells {
		if v == 0 && rng.Float64() < density {
			l.cells[i] = l.newborn
		}
	}
	l.history = nil
}
