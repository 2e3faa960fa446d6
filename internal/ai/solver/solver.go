// Package solver holds the closed-form strategies for Nim and Wythoff.
package solver

import (
	"encoding/json"
	"math"

	"github.com/hailam/boardroom/internal/game"
	"github.com/hailam/boardroom/internal/rules/nim"
	"github.com/hailam/boardroom/internal/rules/wythoff"
)

// NimMove picks the optimal misère move for the piles. Play follows normal
// Nim until the move would leave only piles of size one; then the mover
// leaves an odd count of one-piles so the opponent takes the last object.
func NimMove(piles []int) (nim.Move, bool) {
	big := -1  // index of a pile with 2+ objects
	bigs := 0  // how many such piles
	ones := 0  // piles of exactly one
	xor := 0
	for i, c := range piles {
		xor ^= c
		switch {
		case c >= 2:
			big = i
			bigs++
		case c == 1:
			ones++
		}
	}
	if bigs == 0 && ones == 0 {
		return nim.Move{}, false
	}

	if bigs == 1 {
		// Endgame pivot: choose the parity of the one-piles left behind.
		target := 0
		if ones%2 == 0 {
			target = 1
		}
		return nim.Move{PileIndex: big, Count: piles[big] - target}, true
	}

	if xor != 0 {
		for i, c := range piles {
			if t := c ^ xor; t < c {
				return nim.Move{PileIndex: i, Count: c - t}, true
			}
		}
	}

	// Losing position: concede slowly.
	for i, c := range piles {
		if c > 0 {
			return nim.Move{PileIndex: i, Count: 1}, true
		}
	}
	return nim.Move{}, false
}

var phi = (1 + math.Sqrt(5)) / 2

// WythoffCold reports whether (a, b) is a losing position for the mover:
// the pair equals (⌊kφ⌋, ⌊kφ²⌋) for k = |a−b|.
func WythoffCold(a, b int) bool {
	lo, hi := a, b
	if lo > hi {
		lo, hi = hi, lo
	}
	k := float64(hi - lo)
	return lo == int(math.Floor(k*phi)) && hi == int(math.Floor(k*phi*phi))
}

// WythoffMove finds a move into a cold position, or any legal move when
// the current position is already cold.
func WythoffMove(a, b int) (wythoff.Move, bool) {
	if a == 0 && b == 0 {
		return wythoff.Move{}, false
	}
	for take := 1; take <= a; take++ {
		if WythoffCold(a-take, b) {
			return wythoff.Move{Type: wythoff.Standard, PileIndex: 0, Count: take}, true
		}
	}
	for take := 1; take <= b; take++ {
		if WythoffCold(a, b-take) {
			return wythoff.Move{Type: wythoff.Standard, PileIndex: 1, Count: take}, true
		}
	}
	diag := a
	if b < diag {
		diag = b
	}
	for take := 1; take <= diag; take++ {
		if WythoffCold(a-take, b-take) {
			return wythoff.Move{Type: wythoff.Diagonal, Count: take}, true
		}
	}

	// Cold already: take one and hope.
	if a > 0 {
		return wythoff.Move{Type: wythoff.Standard, PileIndex: 0, Count: 1}, true
	}
	return wythoff.Move{Type: wythoff.Standard, PileIndex: 1, Count: 1}, true
}

// Nim is the strategy wrapper over NimMove.
type Nim struct{}

func (Nim) SelectMove(state game.State) (game.Move, error) {
	var s nim.State
	if err := json.Unmarshal(state, &s); err != nil {
		return nil, err
	}
	mv, ok := NimMove(s.Board)
	if !ok {
		return nil, game.ErrGameOver
	}
	return json.Marshal(mv)
}

// Wythoff is the strategy wrapper over WythoffMove.
type Wythoff struct{}

func (Wythoff) SelectMove(state game.State) (game.Move, error) {
	var s wythoff.State
	if err := json.Unmarshal(state, &s); err != nil {
		return nil, err
	}
	mv, ok := WythoffMove(s.Board[0], s.Board[1])
	if !ok {
		return nil, game.ErrGameOver
	}
	return json.Marshal(mv)
}
