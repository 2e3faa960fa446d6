package chess

// Chess960Start builds the starting position for arrangement n in 0..959
// using Scharnagl numbering. Castling rights point at the arrangement's
// rook squares.
func Chess960Start(n int) *Position {
	n %= 960
	if n < 0 {
		n += 960
	}

	var files [8]PieceType

	// Light-squared bishop on b, d, f or h; dark-squared on a, c, e or g.
	n, b1 := n/4, n%4
	files[b1*2+1] = Bishop
	n, b2 := n/4, n%4
	files[b2*2] = Bishop

	// Queen on the q-th free file.
	n, q := n/6, n%6
	placeNth(&files, q, Queen)

	// Knights by combination index over the remaining five files.
	knightPairs := [10][2]int{
		{0, 1}, {0, 2}, {0, 3}, {0, 4},
		{1, 2}, {1, 3}, {1, 4},
		{2, 3}, {2, 4},
		{3, 4},
	}
	pair := knightPairs[n]
	placeNth(&files, pair[1], Knight) // place higher index first so the
	placeNth(&files, pair[0], Knight) // lower one still counts free files

	// Remaining three files get rook, king, rook left to right.
	placeNth(&files, 0, Rook)
	placeNth(&files, 0, King)
	placeNth(&files, 0, Rook)

	p := &Position{
		Turn:      White,
		EnPassant: NoSquare,
		FullMove:  1,
		Chess960:  true,
	}
	var rooks []int
	for f, t := range files {
		p.Board[Sq(f, 0)] = Of(t, White)
		p.Board[Sq(f, 7)] = Of(t, Black)
		p.Board[Sq(f, 1)] = Of(Pawn, White)
		p.Board[Sq(f, 6)] = Of(Pawn, Black)
		if t == Rook {
			rooks = append(rooks, f)
		}
	}
	p.Castle = Castling{
		WhiteKingside:  Sq(rooks[1], 0),
		WhiteQueenside: Sq(rooks[0], 0),
		BlackKingside:  Sq(rooks[1], 7),
		BlackQueenside: Sq(rooks[0], 7),
	}
	return p
}

// placeNth puts t on the n-th (0-based) still-empty file.
func placeNth(files *[8]PieceType, n int, t PieceType) {
	for f := 0; f < 8; f++ {
		if files[f] != NoPieceType {
			continue
		}
		if n == 0 {
			files[f] = t
			return
		}
		n--
	}
}
