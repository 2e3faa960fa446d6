// Package connect4 implements the 7x6 four-in-a-row rule engine. The board is
// stored column-major free, as a flat 42-cell row-major list with row 0 on top,
// matching the persisted document layout.
package connect4

import (
	"encoding/json"

	"github.com/hailam/boardroom/internal/game"
)

// Board geometry.
const (
	Rows  = 6
	Cols  = 7
	Cells = Rows * Cols
)

// Piece colors used as seat tags.
const (
	Red  = "Red"
	Blue = "Blue"
)

// State is the persisted connect-4 document.
type State struct {
	Board [Cells]string `json:"board"` // "Red", "Blue" or ""
	Turn  string        `json:"current_turn"`
	Moves []int         `json:"moves,omitempty"` // column history
}

// Move drops a piece into a column 0..6.
type Move struct {
	Column int `json:"column"`
}

// At returns the piece at (row, col), "" when empty or out of range.
func (s *State) At(row, col int) string {
	if row < 0 || row >= Rows || col < 0 || col >= Cols {
		return ""
	}
	return s.Board[row*Cols+col]
}

// ColumnOpen reports whether the column has room for another piece.
func (s *State) ColumnOpen(col int) bool {
	return col >= 0 && col < Cols && s.Board[col] == ""
}

// Decided reports whether the game has already been won or drawn.
func (s *State) Decided() bool {
	return s.Wins(Red) || s.Wins(Blue) || s.Full()
}

// LegalMoves lists the non-full columns.
func (s *State) LegalMoves() []Move {
	if s.Decided() {
		return nil
	}
	var out []Move
	for c := 0; c < Cols; c++ {
		if s.ColumnOpen(c) {
			out = append(out, Move{Column: c})
		}
	}
	return out
}

// Drop places piece into col at the lowest empty cell and returns the landing
// row, or -1 if the column is full.
func (s *State) Drop(col int, piece string) int {
	for r := Rows - 1; r >= 0; r-- {
		if s.Board[r*Cols+col] == "" {
			s.Board[r*Cols+col] = piece
			return r
		}
	}
	return -1
}

// Wins reports whether piece has four in a row anywhere.
func (s *State) Wins(piece string) bool {
	dirs := [4][2]int{{0, 1}, {1, 0}, {1, 1}, {-1, 1}}
	for r := 0; r < Rows; r++ {
		for c := 0; c < Cols; c++ {
			if s.At(r, c) != piece {
				continue
			}
			for _, d := range dirs {
				run := 1
				for k := 1; k < 4; k++ {
					if s.At(r+d[0]*k, c+d[1]*k) == piece {
						run++
					} else {
						break
					}
				}
				if run >= 4 {
					return true
				}
			}
		}
	}
	return false
}

// Full reports whether the top row is completely occupied.
func (s *State) Full() bool {
	for c := 0; c < Cols; c++ {
		if s.Board[c] == "" {
			return false
		}
	}
	return true
}

// Apply drops the mover's piece and advances the turn.
func (s *State) Apply(mv Move) (game.Status, error) {
	if s.Decided() {
		return "", game.Illegal("game already decided")
	}
	if mv.Column < 0 || mv.Column >= Cols {
		return "", game.Illegal("column %d out of range", mv.Column)
	}
	if !s.ColumnOpen(mv.Column) {
		return "", game.Illegal("column %d is full", mv.Column)
	}
	piece := s.Turn
	s.Drop(mv.Column, piece)
	s.Moves = append(s.Moves, mv.Column)
	if s.Wins(piece) {
		return game.WonBy(piece), nil
	}
	if s.Full() {
		return game.Draw, nil
	}
	if s.Turn == Red {
		s.Turn = Blue
	} else {
		s.Turn = Red
	}
	return game.InProgress, nil
}

// Engine adapts the typed state to the game.Engine contract.
type Engine struct{}

func (Engine) Kind() game.Kind { return game.Connect4 }

func (Engine) Initial(cfg game.Config) (game.State, string, error) {
	s := State{Turn: Red}
	raw, err := json.Marshal(&s)
	return raw, Red, err
}

func (Engine) LegalMoves(raw game.State) ([]game.Move, error) {
	var s State
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	moves := s.LegalMoves()
	out := make([]game.Move, 0, len(moves))
	for _, mv := range moves {
		b, err := json.Marshal(mv)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

func (Engine) Apply(raw game.State, rawMove game.Move) (game.State, string, game.Status, error) {
	var s State
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, "", "", err
	}
	var mv Move
	if err := json.Unmarshal(rawMove, &mv); err != nil {
		return nil, "", "", game.Illegal("malformed move: %v", err)
	}
	status, err := s.Apply(mv)
	if err != nil {
		return nil, "", "", err
	}
	out, err := json.Marshal(&s)
	if err != nil {
		return nil, "", "", err
	}
	return out, s.Turn, status, nil
}
