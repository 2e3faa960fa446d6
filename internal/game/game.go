// Package game holds the vocabulary shared by every game kind: rows, players,
// statuses, the rule-engine contract and the error taxonomy.
package game

import (
	"encoding/json"
	"time"
)

// Kind identifies a supported game.
type Kind string

const (
	TicTacToe Kind = "tictactoe"
	Connect4  Kind = "connect4"
	Chess     Kind = "chess"
	Azul      Kind = "azul"
	Nim       Kind = "nim"
	Wythoff   Kind = "wythoff"
	Santorini Kind = "santorini"
)

// Kinds lists every supported game kind.
var Kinds = []Kind{TicTacToe, Connect4, Chess, Azul, Nim, Wythoff, Santorini}

// Valid reports whether k names a supported game.
func (k Kind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// SeatTags lists each kind's seat tags, first mover first.
var SeatTags = map[Kind][]string{
	TicTacToe: {"X", "O"},
	Connect4:  {"Red", "Blue"},
	Chess:     {"white", "black"},
	Azul:      {"p1", "p2"},
	Nim:       {"1", "2"},
	Wythoff:   {"1", "2"},
	Santorini: {"p1", "p2"},
}

// Status is the lifecycle tag of a game row. Terminal statuses are
// "draw", "stalemate", "checkmate" and "<seat>_won".
type Status string

const (
	InProgress Status = "in_progress"
	Draw       Status = "draw"
	Stalemate  Status = "stalemate"
	Checkmate  Status = "checkmate"
)

// WonBy returns the terminal status for a win by the given seat tag.
func WonBy(seat string) Status {
	return Status(seat + "_won")
}

// Terminal reports whether the status forbids further moves.
func (s Status) Terminal() bool {
	return s != InProgress
}

// PlayerKind distinguishes human accounts from AI roster entries.
type PlayerKind string

const (
	Human PlayerKind = "human"
	AI    PlayerKind = "ai"
)

// Player is a participant identity. AI players are keyed into the strategy
// registry by Name; humans authenticate with a bearer credential.
type Player struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Kind         PlayerKind `json:"kind"`
	PasswordHash string     `json:"password_hash,omitempty"`
	GameKind     Kind       `json:"game_kind,omitempty"`
}

// Config carries the per-game creation options. Fields not meaningful for a
// kind are simply absent from the stored document.
type Config struct {
	Variant      string   `json:"variant,omitempty"`       // chess: "standard" | "chess960"
	OpponentType string   `json:"opponent_type,omitempty"` // "human" | "ai"
	Moves        []string `json:"moves,omitempty"`         // chess: UCI history for replay/undo
	StartFEN     string   `json:"start_fen,omitempty"`     // chess: initial position (960)
	Factories    int      `json:"factories,omitempty"`     // azul: display count
	Piles        []int    `json:"piles,omitempty"`         // nim / wythoff
	Seed         int64    `json:"seed,omitempty"`          // deterministic setup for tests
}

// State is a game-kind-specific JSON document. The stored document is the
// authoritative truth; engines round-trip their in-memory structures through
// it exactly.
type State = json.RawMessage

// Move is a game-kind-specific move descriptor in JSON form.
type Move = json.RawMessage

// Row is one game instance as persisted by the store. The orchestrator is the
// only mutator, and it serializes all mutations per row.
type Row struct {
	ID        string            `json:"id"`
	Kind      Kind              `json:"kind"`
	State     State             `json:"state"`
	Turn      string            `json:"turn"` // seat tag of the mover
	Status    Status            `json:"status"`
	Config    Config            `json:"config"`
	Seats     map[string]string `json:"seats"` // seat tag -> player id
	CreatedAt time.Time         `json:"created_at"`
}

// Engine is the rule engine for one game kind. Implementations are pure and
// must not block on I/O; Apply works by value and rejects any move outside
// the set LegalMoves returns.
type Engine interface {
	Kind() Kind

	// Initial builds the deterministic starting state for a configuration
	// and returns it with the seat tag that moves first.
	Initial(cfg Config) (State, string, error)

	// LegalMoves enumerates every legal move for the state's current mover.
	// An empty slice is meaningful per game (Santorini: mover loses).
	LegalMoves(s State) ([]Move, error)

	// Apply validates mv against s, returning the successor state, the seat
	// on move afterwards, and the resulting status. Illegal moves fail with
	// an IllegalMoveError; terminal states reject everything.
	Apply(s State, mv Move) (State, string, Status, error)
}
