// Package minimax implements the depth-bounded alpha-beta chess searcher
// with a material and piece-square evaluation.
package minimax

import (
	"encoding/json"
	"math/rand"
	"sort"
	"sync"

	"github.com/hailam/boardroom/internal/game"
	"github.com/hailam/boardroom/internal/rules/chess"
)

const mateScore = 1 << 20

// Strategy searches to a fixed depth and plays the best move.
type Strategy struct {
	Depth int

	mu  sync.Mutex
	rng *rand.Rand
}

// New builds a searcher; seed 0 draws from the global source.
func New(depth int, seed int64) *Strategy {
	if depth < 1 {
		depth = 2
	}
	if seed == 0 {
		seed = rand.Int63()
	}
	return &Strategy{Depth: depth, rng: rand.New(rand.NewSource(seed))}
}

func (st *Strategy) SelectMove(state game.State) (game.Move, error) {
	var s chess.State
	if err := json.Unmarshal(state, &s); err != nil {
		return nil, err
	}
	pos, err := chess.ParseFEN(s.BoardFEN)
	if err != nil {
		return nil, err
	}
	pos.Chess960 = s.Config.Chess960
	best, _, ok := st.Search(pos)
	if !ok {
		return nil, game.ErrGameOver
	}
	return json.Marshal(chess.MoveRequest{UCI: best.UCI(pos.Chess960)})
}

// Search returns the best move and its score in centipawns from the
// mover's perspective. ok is false only when the position has no legal
// move.
func (st *Strategy) Search(pos *chess.Position) (best chess.Move, score int, ok bool) {
	moves := st.ordered(pos)
	if len(moves) == 0 {
		return chess.Move{}, 0, false
	}
	best, score = moves[0], -mateScore*2
	alpha, beta := -mateScore*2, mateScore*2
	for _, m := range moves {
		next := pos.Make(m)
		v := -st.negamax(&next, st.Depth-1, -beta, -alpha)
		if v > score {
			best, score = m, v
		}
		if v > alpha {
			alpha = v
		}
	}
	return best, score, true
}

func (st *Strategy) negamax(pos *chess.Position, depth, alpha, beta int) int {
	moves := st.ordered(pos)
	if len(moves) == 0 {
		if pos.InCheck() {
			return -mateScore - depth // deeper mates score worse for the mated side
		}
		return 0
	}
	if pos.InsufficientMaterial() || pos.HalfMove >= 100 {
		return 0
	}
	if depth <= 0 {
		return Evaluate(pos)
	}
	best := -mateScore * 2
	for _, m := range moves {
		next := pos.Make(m)
		v := -st.negamax(&next, depth-1, -beta, -alpha)
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

// ordered returns the legal moves, captures first, ties broken by a
// seeded shuffle.
func (st *Strategy) ordered(pos *chess.Position) []chess.Move {
	moves := pos.LegalMoves()
	st.mu.Lock()
	st.rng.Shuffle(len(moves), func(i, j int) { moves[i], moves[j] = moves[j], moves[i] })
	st.mu.Unlock()
	sort.SliceStable(moves, func(i, j int) bool {
		return captureGain(pos, moves[i]) > captureGain(pos, moves[j])
	})
	return moves
}

func captureGain(pos *chess.Position, m chess.Move) int {
	if m.Castle {
		return 0
	}
	if v := pieceValue[pos.Board[m.To].Type()]; v > 0 {
		return v
	}
	if pos.Board[m.From].Type() == chess.Pawn && m.To == pos.EnPassant {
		return pieceValue[chess.Pawn]
	}
	return 0
}

var pieceValue = map[chess.PieceType]int{
	chess.Pawn:   100,
	chess.Knight: 320,
	chess.Bishop: 330,
	chess.Rook:   500,
	chess.Queen:  900,
}

// Piece-square tables from white's perspective, rank 1 first.
var pst = map[chess.PieceType][64]int{
	chess.Pawn: {
		0, 0, 0, 0, 0, 0, 0, 0,
		5, 10, 10, -20, -20, 10, 10, 5,
		5, -5, -10, 0, 0, -10, -5, 5,
		0, 0, 0, 20, 20, 0, 0, 0,
		5, 5, 10, 25, 25, 10, 5, 5,
		10, 10, 20, 30, 30, 20, 10, 10,
		50, 50, 50, 50, 50, 50, 50, 50,
		0, 0, 0, 0, 0, 0, 0, 0,
	},
	chess.Knight: {
		-50, -40, -30, -30, -30, -30, -40, -50,
		-40, -20, 0, 5, 5, 0, -20, -40,
		-30, 5, 10, 15, 15, 10, 5, -30,
		-30, 0, 15, 20, 20, 15, 0, -30,
		-30, 5, 15, 20, 20, 15, 5, -30,
		-30, 0, 10, 15, 15, 10, 0, -30,
		-40, -20, 0, 0, 0, 0, -20, -40,
		-50, -40, -30, -30, -30, -30, -40, -50,
	},
	chess.Bishop: {
		-20, -10, -10, -10, -10, -10, -10, -20,
		-10, 5, 0, 0, 0, 0, 5, -10,
		-10, 10, 10, 10, 10, 10, 10, -10,
		-10, 0, 10, 10, 10, 10, 0, -10,
		-10, 5, 5, 10, 10, 5, 5, -10,
		-10, 0, 5, 10, 10, 5, 0, -10,
		-10, 0, 0, 0, 0, 0, 0, -10,
		-20, -10, -10, -10, -10, -10, -10, -20,
	},
	chess.Rook: {
		0, 0, 0, 5, 5, 0, 0, 0,
		-5, 0, 0, 0, 0, 0, 0, -5,
		-5, 0, 0, 0, 0, 0, 0, -5,
		-5, 0, 0, 0, 0, 0, 0, -5,
		-5, 0, 0, 0, 0, 0, 0, -5,
		-5, 0, 0, 0, 0, 0, 0, -5,
		5, 10, 10, 10, 10, 10, 10, 5,
		0, 0, 0, 0, 0, 0, 0, 0,
	},
	chess.Queen: {
		-20, -10, -10, -5, -5, -10, -10, -20,
		-10, 0, 5, 0, 0, 0, 0, -10,
		-10, 5, 5, 5, 5, 5, 0, -10,
		0, 0, 5, 5, 5, 5, 0, -5,
		-5, 0, 5, 5, 5, 5, 0, -5,
		-10, 0, 5, 5, 5, 5, 0, -10,
		-10, 0, 0, 0, 0, 0, 0, -10,
		-20, -10, -10, -5, -5, -10, -10, -20,
	},
	chess.King: {
		20, 30, 10, 0, 0, 10, 30, 20,
		20, 20, 0, 0, 0, 0, 20, 20,
		-10, -20, -20, -20, -20, -20, -20, -10,
		-20, -30, -30, -40, -40, -30, -30, -20,
		-30, -40, -40, -50, -50, -40, -40, -30,
		-30, -40, -40, -50, -50, -40, -40, -30,
		-30, -40, -40, -50, -50, -40, -40, -30,
		-30, -40, -40, -50, -50, -40, -40, -30,
	},
}

// Evaluate scores the position in centipawns for the side to move.
func Evaluate(pos *chess.Position) int {
	score := 0
	for sq := chess.Square(0); sq < 64; sq++ {
		pc := pos.Board[sq]
		if pc.IsEmpty() {
			continue
		}
		t := pc.Type()
		v := pieceValue[t]
		if pc.Color() == chess.White {
			score += v + pst[t][sq]
		} else {
			score -= v + pst[t][mirror(sq)]
		}
	}
	if pos.Turn == chess.Black {
		return -score
	}
	return score
}

func mirror(sq chess.Square) chess.Square {
	return chess.Sq(sq.File(), 7-sq.Rank())
}
