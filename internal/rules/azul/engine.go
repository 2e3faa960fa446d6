package azul

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"strconv"

	"github.com/hailam/boardroom/internal/game"
)

// SeatTag names the seat at index i: "p1", "p2", ...
func SeatTag(i int) string {
	return "p" + strconv.Itoa(i+1)
}

// SeatIndex inverts SeatTag.
func SeatIndex(tag string) (int, error) {
	if len(tag) < 2 || tag[0] != 'p' {
		return 0, fmt.Errorf("bad azul seat %q", tag)
	}
	n, err := strconv.Atoi(tag[1:])
	if err != nil || n < 1 {
		return 0, fmt.Errorf("bad azul seat %q", tag)
	}
	return n - 1, nil
}

// Engine adapts the state machine to the game.Engine contract. The game
// is fixed at two seats on the platform.
type Engine struct{}

func (Engine) Kind() game.Kind { return game.Azul }

func (Engine) Initial(cfg game.Config) (game.State, string, error) {
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Int63()
	}
	s := NewState(2, cfg.Factories, seed)
	raw, err := json.Marshal(s)
	return raw, SeatTag(s.Turn), err
}

func (Engine) LegalMoves(raw game.State) ([]game.Move, error) {
	s, err := Decode(raw)
	if err != nil {
		return nil, err
	}
	moves := s.LegalMoves()
	out := make([]game.Move, 0, len(moves))
	for _, m := range moves {
		b, err := json.Marshal(m)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

func (Engine) Apply(raw game.State, rawMove game.Move) (game.State, string, game.Status, error) {
	s, err := Decode(raw)
	if err != nil {
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
	out, err := json.Marshal(s)
	if err != nil {
		return nil, "", "", err
	}
	return out, SeatTag(s.Turn), status, nil
}

// Decode unmarshals a persisted state, normalizing pattern lines that a
// hand-written document may have left short.
func Decode(raw game.State) (*State, error) {
	var s State
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	for i := range s.Players {
		b := &s.Players[i]
		if len(b.Lines) != Colors {
			return nil, fmt.Errorf("%w: azul state has %d pattern lines", game.ErrInternal, len(b.Lines))
		}
		for r := range b.Lines {
			for len(b.Lines[r]) < r+1 {
				b.Lines[r] = append(b.Lines[r], Empty)
			}
		}
	}
	return &s, nil
}
