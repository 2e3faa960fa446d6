package game

import (
	"errors"
	"fmt"
)

// Error taxonomy shared across the orchestrator and the HTTP surface.
var (
	ErrNotFound     = errors.New("game not found")
	ErrGameOver     = errors.New("game is finished")
	ErrNotYourTurn  = errors.New("not your turn")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrBadRequest   = errors.New("bad request")
	ErrInternal     = errors.New("internal error")
)

// IllegalMoveError is returned by rule engines when a move is rejected.
// Reason is a short machine-readable tag (source-empty, wall-conflict,
// line-color-mismatch, column-full, into-check, ...).
type IllegalMoveError struct {
	Reason string
}

func (e *IllegalMoveError) Error() string {
	return fmt.Sprintf("illegal move: %s", e.Reason)
}

// Illegal builds an IllegalMoveError with a formatted reason.
func Illegal(format string, args ...any) error {
	return &IllegalMoveError{Reason: fmt.Sprintf(format, args...)}
}

// IsIllegal reports whether err is (or wraps) an IllegalMoveError.
func IsIllegal(err error) bool {
	var ime *IllegalMoveError
	return errors.As(err, &ime)
}
