package azul

import "github.com/hailam/boardroom/internal/game"

// endRound runs the wall-tiling phase for every player, then either
// finishes the game (some wall row is complete) or deals the next round.
func (s *State) endRound() game.Status {
	s.Phase = PhaseWallTiling
	for i := range s.Players {
		s.tileWall(&s.Players[i])
	}

	if s.anyRowComplete() {
		for i := range s.Players {
			s.Players[i].Score += s.Players[i].endBonus()
		}
		s.Terminated = true
		s.Phase = PhaseFinal
		return s.finalStatus()
	}

	s.Round++
	s.Phase = PhaseOffer
	s.TokenInCenter = true
	if s.NextStarter >= 0 {
		s.Turn = s.NextStarter
	}
	s.RoundStarter = s.Turn
	s.NextStarter = -1
	s.refillFactories()
	return game.InProgress
}

// tileWall moves each complete pattern line's tile onto the wall, scores
// it, discards the surplus, applies the floor penalty and clears the floor.
func (s *State) tileWall(b *PlayerBoard) {
	for row := range b.Lines {
		line := b.Lines[row]
		if line[len(line)-1] == Empty {
			continue
		}
		color := line[0]
		col := WallColumn(row, color)
		b.Wall[row][col] = color
		b.Score += b.tileScore(row, col)
		s.Discard[color] += len(line) - 1
		for i := range line {
			line[i] = Empty
		}
	}

	for i, v := range b.Floor {
		if v == Empty {
			continue
		}
		b.Score += floorPenalties[i]
		if v != Marker {
			s.Discard[v]++
		}
		b.Floor[i] = Empty
	}
	if b.Score < 0 {
		b.Score = 0
	}
}

// tileScore is the contiguity score for a freshly placed wall tile: the
// sum of its horizontal and vertical run lengths when it extends both, the
// longer run when it extends only one, and 1 when isolated.
func (b *PlayerBoard) tileScore(row, col int) int {
	h := 1
	for c := col - 1; c >= 0 && b.Wall[row][c] != Empty; c-- {
		h++
	}
	for c := col + 1; c < Colors && b.Wall[row][c] != Empty; c++ {
		h++
	}
	v := 1
	for r := row - 1; r >= 0 && b.Wall[r][col] != Empty; r-- {
		v++
	}
	for r := row + 1; r < Colors && b.Wall[r][col] != Empty; r++ {
		v++
	}
	if h > 1 && v > 1 {
		return h + v
	}
	if v > h {
		return v
	}
	return h
}

func (s *State) anyRowComplete() bool {
	for i := range s.Players {
		if s.Players[i].completeRows() > 0 {
			return true
		}
	}
	return false
}

func (b *PlayerBoard) completeRows() int {
	n := 0
	for _, row := range b.Wall {
		full := true
		for _, v := range row {
			if v == Empty {
				full = false
				break
			}
		}
		if full {
			n++
		}
	}
	return n
}

func (b *PlayerBoard) completeCols() int {
	n := 0
	for c := 0; c < Colors; c++ {
		full := true
		for r := 0; r < Colors; r++ {
			if b.Wall[r][c] == Empty {
				full = false
				break
			}
		}
		if full {
			n++
		}
	}
	return n
}

func (b *PlayerBoard) completeColors() int {
	var counts [Colors]int
	for _, row := range b.Wall {
		for _, v := range row {
			if v != Empty {
				counts[v]++
			}
		}
	}
	n := 0
	for _, c := range counts {
		if c == Colors {
			n++
		}
	}
	return n
}

// endBonus is the end-of-game bonus: +2 per complete row, +7 per complete
// column, +10 per color with all five tiles placed.
func (b *PlayerBoard) endBonus() int {
	return 2*b.completeRows() + 7*b.completeCols() + 10*b.completeColors()
}

func (s *State) finalStatus() game.Status {
	winners := s.Winners()
	if len(winners) != 1 {
		return game.Draw
	}
	return game.WonBy(SeatTag(winners[0]))
}

// refillFactories deals four tiles to each display from the bag, folding
// the discard back into the bag when the bag runs dry. If both run dry the
// remaining displays stay short for the round.
func (s *State) refillFactories() {
	rng := s.rng()
	for i := range s.Factories {
		for k := 0; k < FactorySize; k++ {
			total := 0
			for c := 0; c < Colors; c++ {
				total += s.Bag[c]
			}
			if total == 0 {
				for c := 0; c < Colors; c++ {
					s.Bag[c] = s.Discard[c]
					s.Discard[c] = 0
					total += s.Bag[c]
				}
				if total == 0 {
					return
				}
			}
			pick := int(rng.Int63() % int64(total))
			s.Draws++
			for c := 0; c < Colors; c++ {
				if pick < s.Bag[c] {
					s.Bag[c]--
					s.Factories[i][c]++
					break
				}
				pick -= s.Bag[c]
			}
		}
	}
}
