package chess

import (
	"fmt"
	"strconv"
	"strings"
)

// StartFEN is the standard initial position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// FEN renders the position in the standard 6-field notation. Castling
// rights use KQkq when the rooks sit on the classical corner squares and
// rook file letters otherwise (Shredder style, for Chess960 positions).
func (p *Position) FEN() string {
	var sb strings.Builder

	for rank := 7; rank >= 0; rank-- {
		empty := 0
		for file := 0; file < 8; file++ {
			pc := p.Board[Sq(file, rank)]
			if pc.IsEmpty() {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteByte(byte('0' + empty))
				empty = 0
			}
			sb.WriteByte(pc.Letter())
		}
		if empty > 0 {
			sb.WriteByte(byte('0' + empty))
		}
		if rank > 0 {
			sb.WriteByte('/')
		}
	}

	sb.WriteByte(' ')
	if p.Turn == White {
		sb.WriteByte('w')
	} else {
		sb.WriteByte('b')
	}

	sb.WriteByte(' ')
	sb.WriteString(p.castlingFEN())

	sb.WriteByte(' ')
	sb.WriteString(p.EnPassant.String())

	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(p.HalfMove))
	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(p.FullMove))

	return sb.String()
}

func (p *Position) castlingFEN() string {
	classical := (p.Castle.WhiteKingside == NoSquare || p.Castle.WhiteKingside == Sq(7, 0)) &&
		(p.Castle.WhiteQueenside == NoSquare || p.Castle.WhiteQueenside == Sq(0, 0)) &&
		(p.Castle.BlackKingside == NoSquare || p.Castle.BlackKingside == Sq(7, 7)) &&
		(p.Castle.BlackQueenside == NoSquare || p.Castle.BlackQueenside == Sq(0, 7))

	var sb strings.Builder
	write := func(sq Square, classic byte, white bool) {
		if sq == NoSquare {
			return
		}
		var b byte
		if classical {
			b = classic
		} else {
			b = byte('a' + sq.File())
		}
		if white {
			b = b - 'a' + 'A'
		}
		sb.WriteByte(b)
	}
	write(p.Castle.WhiteKingside, 'k', true)
	write(p.Castle.WhiteQueenside, 'q', true)
	write(p.Castle.BlackKingside, 'k', false)
	write(p.Castle.BlackQueenside, 'q', false)
	if sb.Len() == 0 {
		return "-"
	}
	return sb.String()
}

// ParseFEN parses the 6-field notation. Both KQkq and rook-file castling
// letters are accepted.
func ParseFEN(fen string) (*Position, error) {
	fields := strings.Fields(fen)
	if len(fields) != 6 {
		return nil, fmt.Errorf("fen: expected 6 fields, got %d", len(fields))
	}

	p := &Position{EnPassant: NoSquare}
	p.Castle = Castling{NoSquare, NoSquare, NoSquare, NoSquare}

	ranks := strings.Split(fields[0], "/")
	if len(ranks) != 8 {
		return nil, fmt.Errorf("fen: expected 8 ranks")
	}
	for i, rankStr := range ranks {
		rank := 7 - i
		file := 0
		for j := 0; j < len(rankStr); j++ {
			ch := rankStr[j]
			if ch >= '1' && ch <= '8' {
				file += int(ch - '0')
				continue
			}
			if file > 7 {
				return nil, fmt.Errorf("fen: rank %d overflows", rank+1)
			}
			pc, ok := pieceFromLetter(ch)
			if !ok {
				return nil, fmt.Errorf("fen: bad piece letter %q", ch)
			}
			p.Board[Sq(file, rank)] = pc
			file++
		}
		if file != 8 {
			return nil, fmt.Errorf("fen: rank %d has %d files", rank+1, file)
		}
	}

	switch fields[1] {
	case "w":
		p.Turn = White
	case "b":
		p.Turn = Black
	default:
		return nil, fmt.Errorf("fen: bad side to move %q", fields[1])
	}

	if fields[2] != "-" {
		for j := 0; j < len(fields[2]); j++ {
			if err := p.addCastlingRight(fields[2][j]); err != nil {
				return nil, err
			}
		}
	}

	if fields[3] != "-" {
		sq, ok := ParseSquare(fields[3])
		if !ok {
			return nil, fmt.Errorf("fen: bad en passant square %q", fields[3])
		}
		p.EnPassant = sq
	}

	var err error
	if p.HalfMove, err = strconv.Atoi(fields[4]); err != nil {
		return nil, fmt.Errorf("fen: bad halfmove clock %q", fields[4])
	}
	if p.FullMove, err = strconv.Atoi(fields[5]); err != nil {
		return nil, fmt.Errorf("fen: bad fullmove number %q", fields[5])
	}

	return p, nil
}

func pieceFromLetter(ch byte) (Piece, bool) {
	color := Black
	if ch >= 'A' && ch <= 'Z' {
		color = White
		ch = ch - 'A' + 'a'
	}
	for t, l := range pieceLetters {
		if l == ch {
			return Of(t, color), true
		}
	}
	return 0, false
}

func (p *Position) addCastlingRight(ch byte) error {
	white := ch >= 'A' && ch <= 'Z'
	lower := ch
	if white {
		lower = ch - 'A' + 'a'
	}
	rank := 0
	color := White
	if !white {
		rank = 7
		color = Black
	}
	king := p.KingSquare(color)
	if king == NoSquare {
		return fmt.Errorf("fen: castling right %q without a king", ch)
	}

	findRook := func(from, to, step int) Square {
		for f := from; f != to+step; f += step {
			if p.Board[Sq(f, rank)] == Of(Rook, color) {
				return Sq(f, rank)
			}
		}
		return NoSquare
	}

	var rook Square
	switch {
	case lower == 'k':
		rook = findRook(7, king.File()+1, -1)
	case lower == 'q':
		rook = findRook(0, king.File()-1, 1)
	case lower >= 'a' && lower <= 'h':
		rook = Sq(int(lower-'a'), rank)
	default:
		return fmt.Errorf("fen: bad castling letter %q", ch)
	}
	if rook == NoSquare || p.Board[rook] != Of(Rook, color) {
		return fmt.Errorf("fen: castling right %q has no rook", ch)
	}

	if rook.File() > king.File() {
		if white {
			p.Castle.WhiteKingside = rook
		} else {
			p.Castle.BlackKingside = rook
		}
	} else {
		if white {
			p.Castle.WhiteQueenside = rook
		} else {
			p.Castle.BlackQueenside = rook
		}
	}
	return nil
}
