// Package santorini implements the Santorini rule engine: a placement phase
// (two workers per player), then move-and-build turns on a 5x5 grid of
// buildings. Reaching level 3 wins; running out of moves loses.
package santorini

import (
	"encoding/json"

	"github.com/hailam/boardroom/internal/game"
)

// Seat tags.
const (
	P1 = "p1"
	P2 = "p2"
)

// Board geometry and limits.
const (
	Size           = 5
	DomeLevel      = 4
	WorkersPerSeat = 2
	WinLevel       = 3
)

// Move types.
const (
	PlaceWorker = "place_worker"
	MoveBuild   = "move_build"
)

// Cell is one board square: a building level 0..4 (4 is a dome) and an
// optional worker.
type Cell struct {
	Level  int    `json:"level"`
	Worker string `json:"worker,omitempty"` // "p1", "p2" or ""
}

// State is the persisted Santorini document.
type State struct {
	Board [Size][Size]Cell `json:"board"`
	Turn  string           `json:"current_turn"`
}

// Coord is a board coordinate as [row, col].
type Coord [2]int

// Move is either a worker placement (MoveTo only) or a move-and-build.
// BuildAt is absent exactly when the move steps onto level 3 and wins.
type Move struct {
	MoveType    string `json:"move_type"`
	WorkerStart *Coord `json:"worker_start,omitempty"`
	MoveTo      Coord  `json:"move_to"`
	BuildAt     *Coord `json:"build_at,omitempty"`
}

func inBounds(r, c int) bool {
	return r >= 0 && r < Size && c >= 0 && c < Size
}

// workers returns the coordinates of the seat's workers.
func (s *State) workers(seat string) []Coord {
	var out []Coord
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			if s.Board[r][c].Worker == seat {
				out = append(out, Coord{r, c})
			}
		}
	}
	return out
}

// InPlacement reports whether the seat still has workers to place.
func (s *State) InPlacement(seat string) bool {
	return len(s.workers(seat)) < WorkersPerSeat
}

// LegalMoves enumerates the seat-to-move's options. Empty means the mover
// has no move and loses.
func (s *State) LegalMoves() []Move {
	seat := s.Turn
	if s.InPlacement(seat) {
		var out []Move
		for r := 0; r < Size; r++ {
			for c := 0; c < Size; c++ {
				if s.Board[r][c].Worker == "" {
					out = append(out, Move{MoveType: PlaceWorker, MoveTo: Coord{r, c}})
				}
			}
		}
		return out
	}

	var out []Move
	for _, w := range s.workers(seat) {
		from := s.Board[w[0]][w[1]]
		for dr := -1; dr <= 1; dr++ {
			for dc := -1; dc <= 1; dc++ {
				if dr == 0 && dc == 0 {
					continue
				}
				nr, nc := w[0]+dr, w[1]+dc
				if !inBounds(nr, nc) {
					continue
				}
				dst := s.Board[nr][nc]
				if dst.Worker != "" || dst.Level == DomeLevel {
					continue
				}
				if dst.Level > from.Level+1 {
					continue
				}
				start := w
				if dst.Level == WinLevel {
					// Winning step, no build.
					out = append(out, Move{MoveType: MoveBuild, WorkerStart: &start, MoveTo: Coord{nr, nc}})
					continue
				}
				for bdr := -1; bdr <= 1; bdr++ {
					for bdc := -1; bdc <= 1; bdc++ {
						if bdr == 0 && bdc == 0 {
							continue
						}
						br, bc := nr+bdr, nc+bdc
						if !inBounds(br, bc) {
							continue
						}
						b := s.Board[br][bc]
						occupied := b.Worker != ""
						if br == w[0] && bc == w[1] {
							occupied = false // the mover just vacated this cell
						}
						if occupied || b.Level == DomeLevel {
							continue
						}
						build := Coord{br, bc}
						out = append(out, Move{MoveType: MoveBuild, WorkerStart: &start, MoveTo: Coord{nr, nc}, BuildAt: &build})
					}
				}
			}
		}
	}
	return out
}

func sameMove(a, b Move) bool {
	if a.MoveType != b.MoveType || a.MoveTo != b.MoveTo {
		return false
	}
	if (a.WorkerStart == nil) != (b.WorkerStart == nil) || (a.BuildAt == nil) != (b.BuildAt == nil) {
		return false
	}
	if a.WorkerStart != nil && *a.WorkerStart != *b.WorkerStart {
		return false
	}
	if a.BuildAt != nil && *a.BuildAt != *b.BuildAt {
		return false
	}
	return true
}

// Apply validates mv against the enumerated legal set, mutates the board and
// advances the turn. A seat left without moves loses immediately.
func (s *State) Apply(mv Move) (game.Status, error) {
	legal := false
	for _, cand := range s.LegalMoves() {
		if sameMove(cand, mv) {
			legal = true
			break
		}
	}
	if !legal {
		return "", game.Illegal("move not in legal set")
	}

	seat := s.Turn
	opponent := P2
	if seat == P2 {
		opponent = P1
	}

	switch mv.MoveType {
	case PlaceWorker:
		s.Board[mv.MoveTo[0]][mv.MoveTo[1]].Worker = seat
	case MoveBuild:
		w := *mv.WorkerStart
		s.Board[w[0]][w[1]].Worker = ""
		s.Board[mv.MoveTo[0]][mv.MoveTo[1]].Worker = seat
		if s.Board[mv.MoveTo[0]][mv.MoveTo[1]].Level == WinLevel {
			return game.WonBy(seat), nil
		}
		b := *mv.BuildAt
		s.Board[b[0]][b[1]].Level++
	}

	s.Turn = opponent
	// Placement turns always continue; afterwards a moveless seat loses.
	if !s.InPlacement(opponent) && !s.InPlacement(seat) && len(s.LegalMoves()) == 0 {
		return game.WonBy(seat), nil
	}
	return game.InProgress, nil
}

// Engine adapts the typed state to the game.Engine contract.
type Engine struct{}

func (Engine) Kind() game.Kind { return game.Santorini }

func (Engine) Initial(cfg game.Config) (game.State, string, error) {
	s := State{Turn: P1}
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
