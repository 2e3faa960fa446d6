// Package negamax implements the depth-bounded alpha-beta searcher for
// connect-4, with the windowed position evaluation and center bias.
package negamax

import (
	"encoding/json"
	"math/rand"
	"sort"
	"sync"

	"github.com/hailam/boardroom/internal/game"
	"github.com/hailam/boardroom/internal/rules/connect4"
)

const winScore = 1 << 20

// Strategy searches to a fixed depth and plays the best column.
type Strategy struct {
	Depth int

	mu  sync.Mutex
	rng *rand.Rand
}

// New builds a searcher; seed 0 draws from the global source.
func New(depth int, seed int64) *Strategy {
	if depth < 1 {
		depth = 4
	}
	if seed == 0 {
		seed = rand.Int63()
	}
	return &Strategy{Depth: depth, rng: rand.New(rand.NewSource(seed))}
}

func (st *Strategy) SelectMove(state game.State) (game.Move, error) {
	var s connect4.State
	if err := json.Unmarshal(state, &s); err != nil {
		return nil, err
	}
	col, ok := st.Search(&s)
	if !ok {
		return nil, game.ErrGameOver
	}
	return json.Marshal(connect4.Move{Column: col})
}

// Search returns the best column for the state's mover. ok is false only
// when no column is open or the game is decided.
func (st *Strategy) Search(s *connect4.State) (col int, ok bool) {
	moves := s.LegalMoves()
	if len(moves) == 0 {
		return 0, false
	}
	cols := st.ordered(moves)

	me := s.Turn
	best, bestVal := cols[0], -winScore*2
	alpha, beta := -winScore*2, winScore*2
	for _, c := range cols {
		v := st.valueOf(s, c, me, st.Depth, alpha, beta)
		if v > bestVal {
			best, bestVal = c, v
		}
		if v > alpha {
			alpha = v
		}
	}
	return best, true
}

// ordered sorts candidate columns center-out with a seeded shuffle to
// break ties between equally central columns.
func (st *Strategy) ordered(moves []connect4.Move) []int {
	cols := make([]int, len(moves))
	for i, m := range moves {
		cols[i] = m.Column
	}
	st.mu.Lock()
	st.rng.Shuffle(len(cols), func(i, j int) { cols[i], cols[j] = cols[j], cols[i] })
	st.mu.Unlock()
	sort.SliceStable(cols, func(i, j int) bool {
		return centerDist(cols[i]) < centerDist(cols[j])
	})
	return cols
}

func centerDist(c int) int {
	d := c - connect4.Cols/2
	if d < 0 {
		return -d
	}
	return d
}

// valueOf scores dropping piece into col, searching depth plies below.
func (st *Strategy) valueOf(s *connect4.State, col int, piece string, depth, alpha, beta int) int {
	child := *s
	child.Moves = nil
	row := child.Drop(col, piece)
	if row < 0 {
		return -winScore * 2
	}
	if child.Wins(piece) {
		return winScore + depth // prefer faster wins
	}
	if child.Full() {
		return 0
	}
	if depth <= 1 {
		return evaluate(&child, piece)
	}

	opp := opponent(piece)
	child.Turn = opp
	best := -winScore * 2
	for _, m := range child.LegalMoves() {
		v := -st.valueOf(&child, m.Column, opp, depth-1, -beta, -alpha)
		if v > best {
			best = v
		}
		if v > alpha {
			alpha = v
		}
		if alpha >= beta {
			break
		}
	}
	return best
}

func opponent(piece string) string {
	if piece == connect4.Red {
		return connect4.Blue
	}
	return connect4.Red
}

// evaluate scores the board for piece: every 4-cell window is credited by
// how close piece is to completing it and debited when the opponent is one
// cell away, plus a center-column occupancy bonus.
func evaluate(s *connect4.State, piece string) int {
	opp := opponent(piece)
	score := 0

	center := connect4.Cols / 2
	for r := 0; r < connect4.Rows; r++ {
		if s.At(r, center) == piece {
			score += 3
		}
	}

	dirs := [4][2]int{{0, 1}, {1, 0}, {1, 1}, {-1, 1}}
	for r := 0; r < connect4.Rows; r++ {
		for c := 0; c < connect4.Cols; c++ {
			for _, d := range dirs {
				er, ec := r+3*d[0], c+3*d[1]
				if er < 0 || er >= connect4.Rows || ec >= connect4.Cols {
					continue
				}
				mine, theirs := 0, 0
				for k := 0; k < 4; k++ {
					switch s.At(r+k*d[0], c+k*d[1]) {
					case piece:
						mine++
					case opp:
						theirs++
					}
				}
				score += windowScore(mine, theirs)
			}
		}
	}
	return score
}

func windowScore(mine, theirs int) int {
	if mine > 0 && theirs > 0 {
		return 0
	}
	switch {
	case mine == 4:
		return 100
	case mine == 3:
		return 5
	case mine == 2:
		return 2
	case theirs == 3:
		return -4
	}
	return 0
}
