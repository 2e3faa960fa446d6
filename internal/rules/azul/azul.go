// Package azul implements the Azul rule engine: the two-phase round machine
// (offer, then wall-tiling), tile conservation across bag, discard,
// factories, center and player boards, contiguity scoring, floor penalties
// and end-of-game bonuses. It also hosts the observation codec used by the
// neural predictor.
package azul

import (
	"math/rand"
)

// Tile colors.
const (
	Blue = iota
	Yellow
	Orange
	Black
	Red

	Colors = 5
)

// Board dimensions and markers.
const (
	FloorSlots    = 7
	TilesPerColor = 20
	TotalTiles    = Colors * TilesPerColor
	FactorySize   = 4

	Empty  = -1 // empty slot on lines, wall or floor
	Marker = 5  // first-player marker on the floor line
)

// Phases of a round.
const (
	PhaseOffer      = "offer"
	PhaseWallTiling = "wall_tiling"
	PhasePrep       = "preparation"
	PhaseFinal      = "final"
)

// floorPenalties holds the per-slot penalty at each floor position; their
// running sums give the cumulative -1,-2,-4,-6,-8,-11,-14 schedule.
var floorPenalties = [FloorSlots]int{-1, -1, -2, -2, -2, -3, -3}

// WallColumn is the forced wall column for a color in a row.
func WallColumn(row, color int) int {
	return (color + row) % Colors
}

// PlayerBoard is one player's side of the table.
type PlayerBoard struct {
	Score int            `json:"score"`
	Wall  [5][5]int      `json:"wall"`          // color or Empty
	Lines [5][]int       `json:"pattern_lines"` // row r has capacity r+1
	Floor [FloorSlots]int `json:"floor_line"`   // color, Marker or Empty
}

// NewPlayerBoard returns an empty player board.
func NewPlayerBoard() PlayerBoard {
	var b PlayerBoard
	for r := range b.Wall {
		for c := range b.Wall[r] {
			b.Wall[r][c] = Empty
		}
	}
	for r := range b.Lines {
		b.Lines[r] = make([]int, r+1)
		for i := range b.Lines[r] {
			b.Lines[r][i] = Empty
		}
	}
	for i := range b.Floor {
		b.Floor[i] = Empty
	}
	return b
}

// State is the persisted Azul document.
type State struct {
	Players       []PlayerBoard `json:"players"`
	Bag           [Colors]int   `json:"bag"`
	Discard       [Colors]int   `json:"discard"`
	Factories     [][Colors]int `json:"factories"`
	Center        [Colors]int   `json:"center"`
	TokenInCenter bool          `json:"first_player_marker_in_center"`
	NextStarter   int           `json:"next_starter"` // marker taker, -1 until claimed
	Round         int           `json:"round"`
	Turn          int           `json:"current_player"` // seat index of the mover
	RoundStarter  int           `json:"round_starter"`
	Phase         string        `json:"phase"`
	Terminated    bool          `json:"terminated"`
	Seed          int64         `json:"seed"`
	Draws         int64         `json:"draws"` // refill counter, advances the RNG stream
	Log           []Move        `json:"log"`
}

// FactoryCount returns the display count for a player count: 5, 7 or 9.
func FactoryCount(players int) int {
	switch {
	case players <= 2:
		return 5
	case players == 3:
		return 7
	default:
		return 9
	}
}

// NewState deals the starting position: full bag, filled factories, marker
// in the center, player 0 to move.
func NewState(players int, factories int, seed int64) *State {
	if players < 2 {
		players = 2
	}
	if factories <= 0 {
		factories = FactoryCount(players)
	}
	s := &State{
		Players:     make([]PlayerBoard, players),
		Factories:   make([][Colors]int, factories),
		NextStarter: -1,
		Round:       1,
		Phase:       PhaseOffer,
		Seed:        seed,
		Log:         []Move{},
	}
	for i := range s.Players {
		s.Players[i] = NewPlayerBoard()
	}
	for c := 0; c < Colors; c++ {
		s.Bag[c] = TilesPerColor
	}
	s.refillFactories()
	s.TokenInCenter = true
	return s
}

// rng returns the seeded random stream positioned after all prior draws.
// Refills advance Draws so that clones and round-trips replay identically.
func (s *State) rng() *rand.Rand {
	r := rand.New(rand.NewSource(s.Seed))
	for i := int64(0); i < s.Draws; i++ {
		r.Int63()
	}
	return r
}

// Clone deep-copies the state field-wise. Search relies on this being much
// cheaper than a JSON round-trip.
func (s *State) Clone() *State {
	out := *s
	out.Players = make([]PlayerBoard, len(s.Players))
	for i, p := range s.Players {
		cp := p
		for r, line := range p.Lines {
			cp.Lines[r] = append([]int(nil), line...)
		}
		out.Players[i] = cp
	}
	out.Factories = append([][Colors]int(nil), s.Factories...)
	out.Log = append([]Move(nil), s.Log...)
	return &out
}

// TileCount sums every tile in play: bag, discard, factories, center,
// pattern lines, walls and floors (the marker is not a tile). It is
// TotalTiles at every reachable state.
func (s *State) TileCount() int {
	n := 0
	for c := 0; c < Colors; c++ {
		n += s.Bag[c] + s.Discard[c] + s.Center[c]
		for _, f := range s.Factories {
			n += f[c]
		}
	}
	for _, p := range s.Players {
		for _, line := range p.Lines {
			for _, v := range line {
				if v != Empty {
					n++
				}
			}
		}
		for _, row := range p.Wall {
			for _, v := range row {
				if v != Empty {
					n++
				}
			}
		}
		for _, v := range p.Floor {
			if v != Empty && v != Marker {
				n++
			}
		}
	}
	return n
}

// Scores returns the players' scores in seat order.
func (s *State) Scores() []int {
	out := make([]int, len(s.Players))
	for i, p := range s.Players {
		out[i] = p.Score
	}
	return out
}

// Winners returns the seat indexes holding the top score.
func (s *State) Winners() []int {
	best := s.Players[0].Score
	for _, p := range s.Players[1:] {
		if p.Score > best {
			best = p.Score
		}
	}
	var out []int
	for i, p := range s.Players {
		if p.Score == best {
			out = append(out, i)
		}
	}
	return out
}
