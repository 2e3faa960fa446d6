package chess

import (
	"fmt"
	"strings"
)

// Move is a chess move. Castling is stored canonically as the king's square
// to the castling rook's square, which works for both classical and
// Chess960 positions.
type Move struct {
	From   Square
	To     Square
	Promo  PieceType
	Castle bool
}

// UCI renders the move in UCI notation. Classical castling is rendered as
// the king's two-square hop; Chess960 castling as king-takes-rook.
func (m Move) UCI(chess960 bool) string {
	if m.Castle && !chess960 {
		rank := m.From.Rank()
		if m.To.File() > m.From.File() {
			return m.From.String() + Sq(6, rank).String()
		}
		return m.From.String() + Sq(2, rank).String()
	}
	s := m.From.String() + m.To.String()
	if m.Promo != NoPieceType {
		s += string(pieceLetters[m.Promo])
	}
	return s
}

var knightDeltas = [8][2]int{{1, 2}, {2, 1}, {2, -1}, {1, -2}, {-1, -2}, {-2, -1}, {-2, 1}, {-1, 2}}
var kingDeltas = [8][2]int{{1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1}, {0, -1}, {1, -1}}
var bishopDirs = [4][2]int{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
var rookDirs = [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}

// Attacked reports whether sq is attacked by any piece of color by.
func (p *Position) Attacked(sq Square, by Color) bool {
	f, r := sq.File(), sq.Rank()

	pawnDir := 1
	if by == White {
		pawnDir = -1 // white pawns attack from the rank below
	}
	for _, df := range []int{-1, 1} {
		af, ar := f+df, r+pawnDir
		if af >= 0 && af < 8 && ar >= 0 && ar < 8 && p.Board[Sq(af, ar)] == Of(Pawn, by) {
			return true
		}
	}

	for _, d := range knightDeltas {
		af, ar := f+d[0], r+d[1]
		if af >= 0 && af < 8 && ar >= 0 && ar < 8 && p.Board[Sq(af, ar)] == Of(Knight, by) {
			return true
		}
	}

	for _, d := range kingDeltas {
		af, ar := f+d[0], r+d[1]
		if af >= 0 && af < 8 && ar >= 0 && ar < 8 && p.Board[Sq(af, ar)] == Of(King, by) {
			return true
		}
	}

	slide := func(dirs [4][2]int, slider PieceType) bool {
		for _, d := range dirs {
			af, ar := f+d[0], r+d[1]
			for af >= 0 && af < 8 && ar >= 0 && ar < 8 {
				pc := p.Board[Sq(af, ar)]
				if !pc.IsEmpty() {
					if pc.Color() == by && (pc.Type() == slider || pc.Type() == Queen) {
						return true
					}
					break
				}
				af += d[0]
				ar += d[1]
			}
		}
		return false
	}
	return slide(bishopDirs, Bishop) || slide(rookDirs, Rook)
}

// LegalMoves generates every legal move for the side to move.
func (p *Position) LegalMoves() []Move {
	var out []Move
	for _, m := range p.pseudoMoves() {
		next := p.Make(m)
		if k := next.KingSquare(p.Turn); k == NoSquare || !next.Attacked(k, p.Turn.Other()) {
			out = append(out, m)
		}
	}
	return out
}

func (p *Position) pseudoMoves() []Move {
	var out []Move
	us := p.Turn
	for sq := Square(0); sq < 64; sq++ {
		pc := p.Board[sq]
		if pc.IsEmpty() || pc.Color() != us {
			continue
		}
		f, r := sq.File(), sq.Rank()
		switch pc.Type() {
		case Pawn:
			out = append(out, p.pawnMoves(sq)...)
		case Knight:
			for _, d := range knightDeltas {
				out = p.stepMove(out, sq, f+d[0], r+d[1])
			}
		case King:
			for _, d := range kingDeltas {
				out = p.stepMove(out, sq, f+d[0], r+d[1])
			}
			out = append(out, p.castleMoves(sq)...)
		case Bishop:
			out = p.slideMoves(out, sq, bishopDirs)
		case Rook:
			out = p.slideMoves(out, sq, rookDirs)
		case Queen:
			out = p.slideMoves(out, sq, bishopDirs)
			out = p.slideMoves(out, sq, rookDirs)
		}
	}
	return out
}

func (p *Position) stepMove(out []Move, from Square, f, r int) []Move {
	if f < 0 || f > 7 || r < 0 || r > 7 {
		return out
	}
	to := Sq(f, r)
	if !p.Board[to].IsEmpty() && p.Board[to].Color() == p.Turn {
		return out
	}
	return append(out, Move{From: from, To: to})
}

func (p *Position) slideMoves(out []Move, from Square, dirs [4][2]int) []Move {
	f, r := from.File(), from.Rank()
	for _, d := range dirs {
		af, ar := f+d[0], r+d[1]
		for af >= 0 && af < 8 && ar >= 0 && ar < 8 {
			to := Sq(af, ar)
			pc := p.Board[to]
			if pc.IsEmpty() {
				out = append(out, Move{From: from, To: to})
			} else {
				if pc.Color() != p.Turn {
					out = append(out, Move{From: from, To: to})
				}
				break
			}
			af += d[0]
			ar += d[1]
		}
	}
	return out
}

func (p *Position) pawnMoves(from Square) []Move {
	var out []Move
	us := p.Turn
	f, r := from.File(), from.Rank()
	dir, start, promo := 1, 1, 6
	if us == Black {
		dir, start, promo = -1, 6, 1
	}

	push := func(to Square) {
		if from.Rank() == promo {
			for _, t := range []PieceType{Queen, Rook, Bishop, Knight} {
				out = append(out, Move{From: from, To: to, Promo: t})
			}
		} else {
			out = append(out, Move{From: from, To: to})
		}
	}

	one := Sq(f, r+dir)
	if p.Board[one].IsEmpty() {
		push(one)
		if r == start {
			two := Sq(f, r+2*dir)
			if p.Board[two].IsEmpty() {
				out = append(out, Move{From: from, To: two})
			}
		}
	}
	for _, df := range []int{-1, 1} {
		af := f + df
		if af < 0 || af > 7 {
			continue
		}
		to := Sq(af, r+dir)
		target := p.Board[to]
		if !target.IsEmpty() && target.Color() != us {
			push(to)
		} else if to == p.EnPassant && target.IsEmpty() {
			out = append(out, Move{From: from, To: to})
		}
	}
	return out
}

func (p *Position) castleMoves(king Square) []Move {
	var out []Move
	us := p.Turn
	if p.Attacked(king, us.Other()) {
		return nil
	}
	var rights [2]Square
	if us == White {
		rights = [2]Square{p.Castle.WhiteKingside, p.Castle.WhiteQueenside}
	} else {
		rights = [2]Square{p.Castle.BlackKingside, p.Castle.BlackQueenside}
	}
	for i, rook := range rights {
		if rook == NoSquare || p.Board[rook] != Of(Rook, us) {
			continue
		}
		rank := king.Rank()
		kingTarget := Sq(6, rank) // kingside
		rookTarget := Sq(5, rank)
		if i == 1 {
			kingTarget = Sq(2, rank) // queenside
			rookTarget = Sq(3, rank)
		}
		if !p.castlePathClear(king, kingTarget, rook, rookTarget) {
			continue
		}
		out = append(out, Move{From: king, To: rook, Castle: true})
	}
	return out
}

// castlePathClear checks that the king's and rook's travel squares are
// empty (ignoring the two castling pieces themselves) and that the king
// never crosses an attacked square.
func (p *Position) castlePathClear(king, kingTarget, rook, rookTarget Square) bool {
	clearExcept := func(from, to Square) bool {
		lo, hi := from, to
		if lo > hi {
			lo, hi = hi, lo
		}
		for sq := lo; sq <= hi; sq++ {
			if sq == king || sq == rook {
				continue
			}
			if !p.Board[sq].IsEmpty() {
				return false
			}
		}
		return true
	}
	if !clearExcept(king, kingTarget) || !clearExcept(rook, rookTarget) {
		return false
	}
	step := Square(1)
	if kingTarget < king {
		step = -1
	}
	for sq := king; ; sq += step {
		if p.Attacked(sq, p.Turn.Other()) {
			return false
		}
		if sq == kingTarget {
			break
		}
	}
	return true
}

// Make applies a move by value and returns the successor position. The move
// is assumed pseudo-legal; callers filter for king safety.
func (p *Position) Make(m Move) Position {
	next := *p
	us := p.Turn
	next.EnPassant = NoSquare
	next.HalfMove++

	if m.Castle {
		rank := m.From.Rank()
		kingTarget, rookTarget := Sq(6, rank), Sq(5, rank)
		if m.To.File() < m.From.File() {
			kingTarget, rookTarget = Sq(2, rank), Sq(3, rank)
		}
		next.Board[m.From] = 0
		next.Board[m.To] = 0
		next.Board[kingTarget] = Of(King, us)
		next.Board[rookTarget] = Of(Rook, us)
		next.clearCastling(us)
	} else {
		moving := next.Board[m.From]
		captured := next.Board[m.To]
		if moving.Type() == Pawn || !captured.IsEmpty() {
			next.HalfMove = 0
		}

		// En passant capture removes the bypassed pawn.
		if moving.Type() == Pawn && m.To == p.EnPassant && captured.IsEmpty() {
			capSq := Sq(m.To.File(), m.From.Rank())
			next.Board[capSq] = 0
		}

		next.Board[m.From] = 0
		if m.Promo != NoPieceType {
			next.Board[m.To] = Of(m.Promo, us)
		} else {
			next.Board[m.To] = moving
		}

		// Double pawn push opens en passant.
		if moving.Type() == Pawn && abs(int(m.To)-int(m.From)) == 16 {
			next.EnPassant = Sq(m.From.File(), (m.From.Rank()+m.To.Rank())/2)
		}

		if moving.Type() == King {
			next.clearCastling(us)
		}
		// A rook leaving or being captured on its start square loses the right.
		next.dropCastlingRook(m.From)
		next.dropCastlingRook(m.To)
	}

	next.Turn = us.Other()
	if us == Black {
		next.FullMove++
	}
	return next
}

func (p *Position) clearCastling(c Color) {
	if c == White {
		p.Castle.WhiteKingside = NoSquare
		p.Castle.WhiteQueenside = NoSquare
	} else {
		p.Castle.BlackKingside = NoSquare
		p.Castle.BlackQueenside = NoSquare
	}
}

func (p *Position) dropCastlingRook(sq Square) {
	switch sq {
	case p.Castle.WhiteKingside:
		p.Castle.WhiteKingside = NoSquare
	case p.Castle.WhiteQueenside:
		p.Castle.WhiteQueenside = NoSquare
	case p.Castle.BlackKingside:
		p.Castle.BlackKingside = NoSquare
	case p.Castle.BlackQueenside:
		p.Castle.BlackQueenside = NoSquare
	}
}

// ParseUCI resolves a UCI string against the current position's legal
// moves. Castling is accepted both as the king's two-square hop and as
// king-takes-rook.
func (p *Position) ParseUCI(uci string) (Move, error) {
	uci = strings.TrimSpace(uci)
	if len(uci) < 4 || len(uci) > 5 {
		return Move{}, fmt.Errorf("bad uci move %q", uci)
	}
	from, ok1 := ParseSquare(uci[:2])
	to, ok2 := ParseSquare(uci[2:4])
	if !ok1 || !ok2 {
		return Move{}, fmt.Errorf("bad uci move %q", uci)
	}
	promo := NoPieceType
	if len(uci) == 5 {
		var found bool
		for t, l := range pieceLetters {
			if l == uci[4] {
				promo, found = t, true
				break
			}
		}
		if !found {
			return Move{}, fmt.Errorf("bad promotion letter %q", uci[4])
		}
	}

	for _, m := range p.LegalMoves() {
		if m.Castle {
			if m.From == from && (m.To == to || (!p.Chess960 && m.UCI(false) == uci[:4])) {
				return m, nil
			}
			continue
		}
		if m.From == from && m.To == to && m.Promo == promo {
			return m, nil
		}
	}
	return Move{}, fmt.Errorf("move %q is not legal", uci)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
