// Package chess implements a mailbox chess rule engine: full legal move
// generation, UCI move application, check/checkmate/stalemate detection,
// draw claims (insufficient material, fifty-move, threefold) and Chess960
// start positions with derived castling rights.
package chess

// Color of a side.
type Color int8

const (
	White Color = iota
	Black
)

// Other returns the opposing color.
func (c Color) Other() Color { return 1 - c }

func (c Color) String() string {
	if c == White {
		return "white"
	}
	return "black"
}

// PieceType without color.
type PieceType int8

const (
	NoPieceType PieceType = iota
	Pawn
	Knight
	Bishop
	Rook
	Queen
	King
)

// Piece is a colored piece: positive for White, negative for Black, 0 empty.
type Piece int8

// Of builds a piece from type and color.
func Of(t PieceType, c Color) Piece {
	if c == White {
		return Piece(t)
	}
	return Piece(-t)
}

// Type returns the piece type, NoPieceType when empty.
func (p Piece) Type() PieceType {
	if p < 0 {
		return PieceType(-p)
	}
	return PieceType(p)
}

// Color returns the piece color. Only meaningful for non-empty pieces.
func (p Piece) Color() Color {
	if p < 0 {
		return Black
	}
	return White
}

// IsEmpty reports whether the square holds no piece.
func (p Piece) IsEmpty() bool { return p == 0 }

var pieceLetters = map[PieceType]byte{
	Pawn: 'p', Knight: 'n', Bishop: 'b', Rook: 'r', Queen: 'q', King: 'k',
}

// Letter returns the FEN letter for the piece, upper-case for White.
func (p Piece) Letter() byte {
	l := pieceLetters[p.Type()]
	if p.Color() == White {
		return l - 'a' + 'A'
	}
	return l
}

// Square indexes the board 0..63, a1=0, h1=7, a8=56.
type Square int8

// NoSquare marks an absent square (en passant, castling rights).
const NoSquare Square = -1

// Sq builds a square from file and rank, both 0..7.
func Sq(file, rank int) Square { return Square(rank*8 + file) }

// File returns the square's file 0..7.
func (s Square) File() int { return int(s) & 7 }

// Rank returns the square's rank 0..7.
func (s Square) Rank() int { return int(s) >> 3 }

func (s Square) String() string {
	if s == NoSquare {
		return "-"
	}
	return string([]byte{byte('a' + s.File()), byte('1' + s.Rank())})
}

// ParseSquare parses algebraic notation like "e4".
func ParseSquare(s string) (Square, bool) {
	if len(s) != 2 || s[0] < 'a' || s[0] > 'h' || s[1] < '1' || s[1] > '8' {
		return NoSquare, false
	}
	return Sq(int(s[0]-'a'), int(s[1]-'1')), true
}

// Castling rights are tracked as the starting squares of the rooks still
// entitled to castle; NoSquare means the right is gone. This representation
// carries over to Chess960 unchanged.
type Castling struct {
	WhiteKingside  Square `json:"wk"`
	WhiteQueenside Square `json:"wq"`
	BlackKingside  Square `json:"bk"`
	BlackQueenside Square `json:"bq"`
}

// Position is a full chess position.
type Position struct {
	Board     [64]Piece
	Turn      Color
	Castle    Castling
	EnPassant Square
	HalfMove  int // plies since last pawn move or capture
	FullMove  int
	Chess960  bool
}

// KingSquare locates the king of the given color.
func (p *Position) KingSquare(c Color) Square {
	for sq := Square(0); sq < 64; sq++ {
		if p.Board[sq] == Of(King, c) {
			return sq
		}
	}
	return NoSquare
}

// InCheck reports whether the side to move's king is attacked.
func (p *Position) InCheck() bool {
	k := p.KingSquare(p.Turn)
	return k != NoSquare && p.Attacked(k, p.Turn.Other())
}

// InsufficientMaterial reports the dead positions K-K, KB-K, KN-K and
// KB-KB with same-colored bishops.
func (p *Position) InsufficientMaterial() bool {
	var knights, bishops int
	bishopShade := -1
	for sq := Square(0); sq < 64; sq++ {
		switch p.Board[sq].Type() {
		case NoPieceType, King:
		case Knight:
			knights++
		case Bishop:
			bishops++
			shade := (sq.File() + sq.Rank()) & 1
			if bishopShade == -1 {
				bishopShade = shade
			} else if bishopShade != shade {
				return false
			}
		default:
			return false
		}
	}
	if knights+bishops <= 1 {
		return true
	}
	return knights == 0 // all bishops on one shade
}

// Key is a repetition key: piece placement, side to move, castling rights
// and en passant square.
func (p *Position) Key() string {
	fen := p.FEN()
	// Strip the move counters (last two fields).
	end := len(fen)
	for fields := 0; fields < 2; fields++ {
		for end > 0 && fen[end-1] != ' ' {
			end--
		}
		end--
	}
	return fen[:end]
}
