// Package wythoff implements Wythoff's game under normal play: remove any
// positive amount from one pile, or the same positive amount from both;
// whoever takes the last object wins.
package wythoff

import (
	"encoding/json"

	"github.com/hailam/boardroom/internal/game"
)

// Seat tags.
const (
	P1 = "1"
	P2 = "2"
)

// DefaultPiles is the starting position used when none is configured.
var DefaultPiles = []int{7, 10}

// Move types.
const (
	Standard = "standard" // remove Count from one pile
	Diagonal = "diagonal" // remove Count from both piles
)

// State is the persisted Wythoff document.
type State struct {
	Board [2]int `json:"board"`
	Turn  string `json:"current_turn"`
}

// Move removes objects from one or both piles.
type Move struct {
	Type      string `json:"type"`
	PileIndex int    `json:"pile_index,omitempty"`
	Count     int    `json:"count"`
}

// Empty reports whether both piles are exhausted.
func (s *State) Empty() bool {
	return s.Board[0] == 0 && s.Board[1] == 0
}

// LegalMoves lists every pile reduction and every equal diagonal reduction.
func (s *State) LegalMoves() []Move {
	var out []Move
	for i := 0; i < 2; i++ {
		for take := 1; take <= s.Board[i]; take++ {
			out = append(out, Move{Type: Standard, PileIndex: i, Count: take})
		}
	}
	diag := s.Board[0]
	if s.Board[1] < diag {
		diag = s.Board[1]
	}
	for take := 1; take <= diag; take++ {
		out = append(out, Move{Type: Diagonal, Count: take})
	}
	return out
}

// Apply removes objects and advances the turn. Taking the last object wins.
func (s *State) Apply(mv Move) (game.Status, error) {
	if s.Empty() {
		return "", game.Illegal("game already decided")
	}
	switch mv.Type {
	case Standard:
		if mv.PileIndex < 0 || mv.PileIndex > 1 {
			return "", game.Illegal("pile %d out of range", mv.PileIndex)
		}
		if mv.Count < 1 || mv.Count > s.Board[mv.PileIndex] {
			return "", game.Illegal("cannot take %d from pile of %d", mv.Count, s.Board[mv.PileIndex])
		}
		s.Board[mv.PileIndex] -= mv.Count
	case Diagonal:
		if mv.Count < 1 || mv.Count > s.Board[0] || mv.Count > s.Board[1] {
			return "", game.Illegal("cannot take %d from both piles", mv.Count)
		}
		s.Board[0] -= mv.Count
		s.Board[1] -= mv.Count
	default:
		return "", game.Illegal("unknown move type %q", mv.Type)
	}
	mover := s.Turn
	opponent := P2
	if mover == P2 {
		opponent = P1
	}
	if s.Empty() {
		return game.WonBy(mover), nil
	}
	s.Turn = opponent
	return game.InProgress, nil
}

// Engine adapts the typed state to the game.Engine contract.
type Engine struct{}

func (Engine) Kind() game.Kind { return game.Wythoff }

func (Engine) Initial(cfg game.Config) (game.State, string, error) {
	piles := cfg.Piles
	if len(piles) == 0 {
		piles = DefaultPiles
	}
	if len(piles) != 2 || piles[0] < 0 || piles[1] < 0 {
		return nil, "", game.ErrBadRequest
	}
	s := State{Board: [2]int{piles[0], piles[1]}, Turn: P1}
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
