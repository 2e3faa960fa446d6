package chess

import (
	"encoding/json"
	"fmt"
	"math/rand"

	"github.com/hailam/boardroom/internal/game"
)

// Seat tags.
const (
	WhiteSeat = "white"
	BlackSeat = "black"
)

// Variants.
const (
	VariantStandard = "standard"
	VariantChess960 = "chess960"
)

// StateConfig is the chess game's embedded configuration: the variant, the
// stored initial position and the UCI history that replays to the current
// board. Undo works by truncating Moves and replaying.
type StateConfig struct {
	Variant  string   `json:"variant,omitempty"`
	Chess960 bool     `json:"chess960,omitempty"`
	StartFEN string   `json:"start_fen"`
	Moves    []string `json:"moves"`
}

// State is the persisted chess document. BoardFEN is always consistent with
// replaying Config.Moves from Config.StartFEN.
type State struct {
	BoardFEN string      `json:"board_fen"`
	Turn     string      `json:"current_turn"`
	IsCheck  bool        `json:"is_check"`
	Config   StateConfig `json:"config"`
}

// MoveRequest is the persisted chess move descriptor.
type MoveRequest struct {
	UCI string `json:"move_uci"`
}

// Replay applies a UCI history to a starting position.
func Replay(startFEN string, moves []string, chess960 bool) (*Position, error) {
	pos, err := ParseFEN(startFEN)
	if err != nil {
		return nil, err
	}
	pos.Chess960 = chess960
	for i, uci := range moves {
		m, err := pos.ParseUCI(uci)
		if err != nil {
			return nil, fmt.Errorf("replay move %d (%s): %w", i+1, uci, err)
		}
		next := pos.Make(m)
		pos = &next
	}
	return pos, nil
}

// StatusOf derives the game status for a position, automatically claiming
// the fifty-move and threefold-repetition draws the way the original
// server does. history is the UCI list that produced pos.
func StatusOf(pos *Position, cfg StateConfig) (game.Status, error) {
	if len(pos.LegalMoves()) == 0 {
		if pos.InCheck() {
			return game.Checkmate, nil
		}
		return game.Stalemate, nil
	}
	if pos.InsufficientMaterial() {
		return game.Draw, nil
	}
	if pos.HalfMove >= 100 {
		return game.Draw, nil
	}
	reps, err := repetitions(pos, cfg)
	if err != nil {
		return "", err
	}
	if reps >= 3 {
		return game.Draw, nil
	}
	return game.InProgress, nil
}

// repetitions counts how often the current position key occurred over the
// whole game, current position included.
func repetitions(pos *Position, cfg StateConfig) (int, error) {
	key := pos.Key()
	cur, err := ParseFEN(cfg.StartFEN)
	if err != nil {
		return 0, err
	}
	cur.Chess960 = cfg.Chess960
	count := 0
	if cur.Key() == key {
		count++
	}
	for _, uci := range cfg.Moves {
		m, err := cur.ParseUCI(uci)
		if err != nil {
			return 0, err
		}
		next := cur.Make(m)
		cur = &next
		if cur.Key() == key {
			count++
		}
	}
	return count, nil
}

// Engine adapts the position to the game.Engine contract.
type Engine struct{}

func (Engine) Kind() game.Kind { return game.Chess }

func (Engine) Initial(cfg game.Config) (game.State, string, error) {
	sc := StateConfig{Variant: cfg.Variant, StartFEN: StartFEN, Moves: []string{}}
	if cfg.Variant == "" {
		sc.Variant = VariantStandard
	}
	if sc.Variant == VariantChess960 {
		rng := rand.New(rand.NewSource(cfg.Seed))
		if cfg.Seed == 0 {
			rng = rand.New(rand.NewSource(rand.Int63()))
		}
		pos := Chess960Start(rng.Intn(960))
		sc.Chess960 = true
		sc.StartFEN = pos.FEN()
	} else if sc.Variant != VariantStandard {
		return nil, "", fmt.Errorf("%w: unknown chess variant %q", game.ErrBadRequest, cfg.Variant)
	}
	s := State{BoardFEN: sc.StartFEN, Turn: WhiteSeat, Config: sc}
	raw, err := json.Marshal(&s)
	return raw, WhiteSeat, err
}

func (Engine) LegalMoves(raw game.State) ([]game.Move, error) {
	var s State
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	pos, err := ParseFEN(s.BoardFEN)
	if err != nil {
		return nil, err
	}
	pos.Chess960 = s.Config.Chess960
	moves := pos.LegalMoves()
	out := make([]game.Move, 0, len(moves))
	for _, m := range moves {
		b, err := json.Marshal(MoveRequest{UCI: m.UCI(s.Config.Chess960)})
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
	var req MoveRequest
	if err := json.Unmarshal(rawMove, &req); err != nil {
		return nil, "", "", game.Illegal("malformed move: %v", err)
	}

	pos, err := ParseFEN(s.BoardFEN)
	if err != nil {
		return nil, "", "", fmt.Errorf("%w: %v", game.ErrInternal, err)
	}
	pos.Chess960 = s.Config.Chess960

	cur, err := StatusOf(pos, s.Config)
	if err != nil {
		return nil, "", "", fmt.Errorf("%w: %v", game.ErrInternal, err)
	}
	if cur.Terminal() {
		return nil, "", "", game.Illegal("game already decided")
	}

	m, err := pos.ParseUCI(req.UCI)
	if err != nil {
		return nil, "", "", game.Illegal("%v", err)
	}
	next := pos.Make(m)

	s.Config.Moves = append(s.Config.Moves, req.UCI)
	s.BoardFEN = next.FEN()
	s.Turn = next.Turn.String()
	s.IsCheck = next.InCheck()

	status, err := StatusOf(&next, s.Config)
	if err != nil {
		return nil, "", "", fmt.Errorf("%w: %v", game.ErrInternal, err)
	}

	out, err := json.Marshal(&s)
	if err != nil {
		return nil, "", "", err
	}
	return out, s.Turn, status, nil
}

// Undo truncates the move history by plies and rebuilds the document by
// replaying from the stored initial position.
func Undo(raw game.State, plies int) (game.State, string, error) {
	var s State
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, "", err
	}
	if len(s.Config.Moves) == 0 {
		return nil, "", fmt.Errorf("%w: no moves to undo", game.ErrBadRequest)
	}
	if plies > len(s.Config.Moves) {
		plies = len(s.Config.Moves)
	}
	s.Config.Moves = s.Config.Moves[:len(s.Config.Moves)-plies]

	pos, err := Replay(s.Config.StartFEN, s.Config.Moves, s.Config.Chess960)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", game.ErrInternal, err)
	}
	s.BoardFEN = pos.FEN()
	s.Turn = pos.Turn.String()
	s.IsCheck = pos.InCheck()

	out, err := json.Marshal(&s)
	if err != nil {
		return nil, "", err
	}
	return out, s.Turn, nil
}
