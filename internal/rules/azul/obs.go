package azul

// Observation codec. The state is flattened from the current mover's
// perspective into a fixed-layout vector: one-hot spatial planes for every
// player's pattern lines and wall, raw factory and center counts, then a
// global block. The layout is mirrored by the trained predictor weights, so
// order matters.

const (
	// DestCodes is the number of destination codes (rows 0..4 plus floor).
	DestCodes = 6
	// RoundOneHot is the width of the round one-hot in the global block.
	RoundOneHot = 8
)

// ActionSpace is the flat action-vector length for a display count.
func ActionSpace(factories int) int {
	return (factories + 1) * Colors * DestCodes
}

// ActionIndex maps a move to its flat index.
func ActionIndex(m Move) int {
	return m.Source*Colors*DestCodes + m.Color*DestCodes + m.Dest
}

// ActionAt inverts ActionIndex.
func ActionAt(idx int) Move {
	return Move{
		Source: idx / (Colors * DestCodes),
		Color:  (idx / DestCodes) % Colors,
		Dest:   idx % DestCodes,
	}
}

// ObsLen is the observation-vector length for a table shape.
func ObsLen(players, factories int) int {
	spatial := players * 2 * Colors * 25
	facts := (factories + 1) * Colors
	global := Colors + Colors + 1 + RoundOneHot +
		players*FloorSlots + players + players*3 + Colors
	return spatial + facts + global
}

// Observe encodes the state from the current mover's perspective.
func (s *State) Observe() []float32 {
	obs := make([]float32, 0, ObsLen(len(s.Players), len(s.Factories)))

	// Spatial one-hot planes, mover first then opponents in seat order.
	for off := 0; off < len(s.Players); off++ {
		b := &s.Players[(s.Turn+off)%len(s.Players)]
		for color := 0; color < Colors; color++ {
			for r := 0; r < Colors; r++ {
				for c := 0; c < Colors; c++ {
					if c < len(b.Lines[r]) && b.Lines[r][c] == color {
						obs = append(obs, 1)
					} else {
						obs = append(obs, 0)
					}
				}
			}
		}
		for color := 0; color < Colors; color++ {
			for r := 0; r < Colors; r++ {
				for c := 0; c < Colors; c++ {
					if b.Wall[r][c] == color {
						obs = append(obs, 1)
					} else {
						obs = append(obs, 0)
					}
				}
			}
		}
	}

	// Factory and center counts.
	for _, f := range s.Factories {
		for c := 0; c < Colors; c++ {
			obs = append(obs, float32(f[c]))
		}
	}
	for c := 0; c < Colors; c++ {
		obs = append(obs, float32(s.Center[c]))
	}

	// Global block.
	for c := 0; c < Colors; c++ {
		obs = append(obs, float32(s.Bag[c]))
	}
	for c := 0; c < Colors; c++ {
		obs = append(obs, float32(s.Discard[c]))
	}
	if s.TokenInCenter {
		obs = append(obs, 1)
	} else {
		obs = append(obs, 0)
	}
	round := s.Round - 1
	if round >= RoundOneHot {
		round = RoundOneHot - 1
	}
	for i := 0; i < RoundOneHot; i++ {
		if i == round {
			obs = append(obs, 1)
		} else {
			obs = append(obs, 0)
		}
	}
	for off := 0; off < len(s.Players); off++ {
		b := &s.Players[(s.Turn+off)%len(s.Players)]
		for _, v := range b.Floor {
			obs = append(obs, float32(v))
		}
	}
	for off := 0; off < len(s.Players); off++ {
		obs = append(obs, float32(s.Players[(s.Turn+off)%len(s.Players)].Score))
	}
	for off := 0; off < len(s.Players); off++ {
		b := &s.Players[(s.Turn+off)%len(s.Players)]
		obs = append(obs, float32(b.completeRows()), float32(b.completeCols()), float32(b.completeColors()))
	}
	for c := 0; c < Colors; c++ {
		n := s.Bag[c] + s.Discard[c] + s.Center[c]
		for _, f := range s.Factories {
			n += f[c]
		}
		obs = append(obs, float32(n))
	}

	return obs
}

// Mask returns the dense 0/1 legality vector over the flat action space.
func (s *State) Mask() []float32 {
	mask := make([]float32, ActionSpace(len(s.Factories)))
	for _, m := range s.LegalMoves() {
		mask[ActionIndex(m)] = 1
	}
	return mask
}
