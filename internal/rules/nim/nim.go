// Package nim implements misère Nim: remove any positive amount from one
// pile; whoever takes the last object loses.
package nim

import (
	"encoding/json"

	"github.com/hailam/boardroom/internal/game"
)

// Seat tags.
const (
	P1 = "1"
	P2 = "2"
)

// DefaultPiles is the classic 1-3-5-7 arrangement.
var DefaultPiles = []int{1, 3, 5, 7}

// State is the persisted Nim document.
type State struct {
	Board []int  `json:"board"`
	Turn  string `json:"current_turn"`
}

// Move removes Count objects from pile PileIndex.
type Move struct {
	PileIndex int `json:"pile_index"`
	Count     int `json:"count"`
}

// Empty reports whether every pile is exhausted.
func (s *State) Empty() bool {
	for _, c := range s.Board {
		if c > 0 {
			return false
		}
	}
	return true
}

// LegalMoves lists every positive removal from a single pile.
func (s *State) LegalMoves() []Move {
	var out []Move
	for i, c := range s.Board {
		for take := 1; take <= c; take++ {
			out = append(out, Move{PileIndex: i, Count: take})
		}
	}
	return out
}

// Apply removes objects and advances the turn. Under misère play the mover
// who empties the board loses.
func (s *State) Apply(mv Move) (game.Status, error) {
	if s.Empty() {
		return "", game.Illegal("game already decided")
	}
	if mv.PileIndex < 0 || mv.PileIndex >= len(s.Board) {
		return "", game.Illegal("pile %d out of range", mv.PileIndex)
	}
	if mv.Count < 1 || mv.Count > s.Board[mv.PileIndex] {
		return "", game.Illegal("cannot take %d from pile of %d", mv.Count, s.Board[mv.PileIndex])
	}
	s.Board[mv.PileIndex] -= mv.Count
	mover := s.Turn
	opponent := P2
	if mover == P2 {
		opponent = P1
	}
	if s.Empty() {
		// Mover took the last object: opponent wins.
		return game.WonBy(opponent), nil
	}
	s.Turn = opponent
	return game.InProgress, nil
}

// Engine adapts the typed state to the game.Engine contract.
type Engine struct{}

func (Engine) Kind() game.Kind { return game.Nim }

func (Engine) Initial(cfg game.Config) (game.State, string, error) {
	piles := cfg.Piles
	if len(piles) == 0 {
		piles = append([]int(nil), DefaultPiles...)
	}
	for _, c := range piles {
		if c < 0 {
			return nil, "", game.ErrBadRequest
		}
	}
	s := State{Board: append([]int(nil), piles...), Turn: P1}
	raw, err := json.Marshal(&s)
	return raw, P1, err
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
