package azul

import (
	"github.com/hailam/boardroom/internal/game"
)

// Move takes every tile of one color from a source and places the batch on
// one destination. Source len(Factories) is the center; Dest 5 is the floor
// line, 0..4 the pattern rows.
type Move struct {
	Source int `json:"source"`
	Color  int `json:"color"`
	Dest   int `json:"dest"`
}

// FloorDest is the destination code for the floor line.
const FloorDest = 5

// CenterSource returns the source index that addresses the center.
func (s *State) CenterSource() int { return len(s.Factories) }

func (s *State) sourceCount(src, color int) int {
	if src == s.CenterSource() {
		return s.Center[color]
	}
	return s.Factories[src][color]
}

// canPlace reports whether the mover may direct color to a pattern row:
// the row must not be full, must not hold a different color, and the wall
// cell the row feeds must still be open.
func (b *PlayerBoard) canPlace(row, color int) bool {
	line := b.Lines[row]
	if line[len(line)-1] != Empty {
		return false
	}
	if line[0] != Empty && line[0] != color {
		return false
	}
	return b.Wall[row][WallColumn(row, color)] == Empty
}

// Legal reports whether mv is playable for the current mover.
func (s *State) Legal(mv Move) bool {
	if s.Terminated || s.Phase != PhaseOffer {
		return false
	}
	if mv.Source < 0 || mv.Source > s.CenterSource() {
		return false
	}
	if mv.Color < 0 || mv.Color >= Colors {
		return false
	}
	if mv.Dest < 0 || mv.Dest > FloorDest {
		return false
	}
	if s.sourceCount(mv.Source, mv.Color) == 0 {
		return false
	}
	if mv.Dest == FloorDest {
		return true
	}
	return s.Players[s.Turn].canPlace(mv.Dest, mv.Color)
}

// LegalMoves enumerates every playable move for the current mover. Dumping
// to the floor is always allowed, so the list is empty only at terminal
// states.
func (s *State) LegalMoves() []Move {
	if s.Terminated {
		return nil
	}
	var out []Move
	for src := 0; src <= s.CenterSource(); src++ {
		for color := 0; color < Colors; color++ {
			if s.sourceCount(src, color) == 0 {
				continue
			}
			for dest := 0; dest <= FloorDest; dest++ {
				if dest == FloorDest || s.Players[s.Turn].canPlace(dest, color) {
					out = append(out, Move{Source: src, Color: color, Dest: dest})
				}
			}
		}
	}
	return out
}

// placeFloor drops one color tile onto the floor line, spilling to the
// discard once the line is full.
func (s *State) placeFloor(b *PlayerBoard, color int) {
	for i := range b.Floor {
		if b.Floor[i] == Empty {
			b.Floor[i] = color
			return
		}
	}
	s.Discard[color]++
}

// placeMarker puts the first-player marker on the floor. On a full floor
// the marker displaces the tile in the last slot, which goes to the
// discard; the marker itself is never discarded.
func (s *State) placeMarker(b *PlayerBoard) {
	for i := range b.Floor {
		if b.Floor[i] == Empty {
			b.Floor[i] = Marker
			return
		}
	}
	last := b.Floor[FloorSlots-1]
	if last != Marker {
		s.Discard[last]++
	}
	b.Floor[FloorSlots-1] = Marker
}

// Apply plays mv for the current mover, mutating s. When the move empties
// the displays it runs the wall-tiling phase and either deals the next
// round or finishes the game. The returned status is InProgress until the
// game ends.
func (s *State) Apply(mv Move) (game.Status, error) {
	if s.Terminated {
		return "", game.Illegal("game already decided")
	}
	if !s.Legal(mv) {
		return "", game.Illegal("move source %d color %d dest %d is not playable", mv.Source, mv.Color, mv.Dest)
	}

	mover := &s.Players[s.Turn]
	take := s.sourceCount(mv.Source, mv.Color)

	if mv.Source == s.CenterSource() {
		s.Center[mv.Color] = 0
		if s.TokenInCenter {
			s.TokenInCenter = false
			s.NextStarter = s.Turn
			s.placeMarker(mover)
		}
	} else {
		f := &s.Factories[mv.Source]
		f[mv.Color] = 0
		for c := 0; c < Colors; c++ {
			s.Center[c] += f[c]
			f[c] = 0
		}
	}

	if mv.Dest == FloorDest {
		for i := 0; i < take; i++ {
			s.placeFloor(mover, mv.Color)
		}
	} else {
		line := mover.Lines[mv.Dest]
		placed := 0
		for i := range line {
			if placed == take {
				break
			}
			if line[i] == Empty {
				line[i] = mv.Color
				placed++
			}
		}
		for i := placed; i < take; i++ {
			s.placeFloor(mover, mv.Color)
		}
	}

	s.Log = append(s.Log, mv)

	if s.displaysEmpty() {
		return s.endRound(), nil
	}
	s.Turn = (s.Turn + 1) % len(s.Players)
	return game.InProgress, nil
}

func (s *State) displaysEmpty() bool {
	for c := 0; c < Colors; c++ {
		if s.Center[c] > 0 {
			return false
		}
		for _, f := range s.Factories {
			if f[c] > 0 {
				return false
			}
		}
	}
	return true
}
