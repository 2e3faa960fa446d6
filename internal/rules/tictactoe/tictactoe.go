// Package tictactoe implements the 3x3 three-in-a-row rule engine.
package tictactoe

import (
	"encoding/json"

	"github.com/hailam/boardroom/internal/game"
)

// Marks used as seat tags.
const (
	X = "X"
	O = "O"
)

// State is the persisted tic-tac-toe document.
type State struct {
	Board [9]string `json:"board"` // "X", "O" or ""
	Turn  string    `json:"current_turn"`
}

// Move places the mover's mark at a cell index 0..8.
type Move struct {
	Position int `json:"position"`
}

var lines = [8][3]int{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8}, // rows
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8}, // columns
	{0, 4, 8}, {2, 4, 6}, // diagonals
}

// Winner returns the winning mark, or "" if nobody has three in a row.
func (s *State) Winner() string {
	for _, ln := range lines {
		m := s.Board[ln[0]]
		if m != "" && m == s.Board[ln[1]] && m == s.Board[ln[2]] {
			return m
		}
	}
	return ""
}

// Full reports whether every cell is occupied.
func (s *State) Full() bool {
	for _, c := range s.Board {
		if c == "" {
			return false
		}
	}
	return true
}

// LegalMoves lists the empty cells.
func (s *State) LegalMoves() []Move {
	if s.Winner() != "" {
		return nil
	}
	var out []Move
	for i, c := range s.Board {
		if c == "" {
			out = append(out, Move{Position: i})
		}
	}
	return out
}

// Apply places the current mark and advances the turn.
func (s *State) Apply(mv Move) (game.Status, error) {
	if s.Winner() != "" || s.Full() {
		return "", game.Illegal("game already decided")
	}
	if mv.Position < 0 || mv.Position > 8 {
		return "", game.Illegal("position %d out of range", mv.Position)
	}
	if s.Board[mv.Position] != "" {
		return "", game.Illegal("cell %d occupied", mv.Position)
	}
	s.Board[mv.Position] = s.Turn
	if w := s.Winner(); w != "" {
		return game.WonBy(w), nil
	}
	if s.Full() {
		return game.Draw, nil
	}
	if s.Turn == X {
		s.Turn = O
	} else {
		s.Turn = X
	}
	return game.InProgress, nil
}

// Engine adapts the typed state to the game.Engine contract.
type Engine struct{}

func (Engine) Kind() game.Kind { return game.TicTacToe }

func (Engine) Initial(cfg game.Config) (game.State, string, error) {
	s := State{Turn: X}
	raw, err := json.Marshal(&s)
	return raw, X, err
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
