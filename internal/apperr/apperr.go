// Package apperr defines the stable error codes surfaced to clients in
// *-error messages (spec §7). Errors are returned values, never used for
// control flow across goroutine boundaries.
package apperr

import "fmt"

// Code is a stable, client-visible error classification.
type Code string

const (
	InvalidInput Code = "InvalidInput"
	NotFound     Code = "NotFound"
	Forbidden    Code = "Forbidden"
	Conflict     Code = "Conflict"
	IllegalMove  Code = "IllegalMove"
	Expired      Code = "Expired"
	InvalidCode  Code = "InvalidCode"
	Unavailable  Code = "Unavailable"
	Internal     Code = "Internal"
)

// Error is a typed, code-carrying error.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// New builds an *Error with the given code and message.
func New(code Code, msg string) *Error {
	return &Error{Code: code, Message: msg}
}

// Newf builds an *Error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// CodeOf extracts the Code from err, defaulting to Internal for untyped
// errors.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	if ae, ok := err.(*Error); ok {
		return ae.Code
	}
	return Internal
}

var (
	ErrFull           = New(Conflict, "room is full")
	ErrExpired        = New(Expired, "room has expired")
	ErrInProgress     = New(Conflict, "match already in progress")
	ErrInvalidCode    = New(InvalidCode, "access code does not match")
	ErrAlreadyIn      = New(Conflict, "seat already in this room")
	ErrNoColor        = New(Conflict, "no color left in the palette")
	ErrHostBusy       = New(Conflict, "host already owns a live room")
	ErrNotFound       = New(NotFound, "room not found")
	ErrWrongTurn      = New(Forbidden, "not this seat's turn")
	ErrNotInRoom      = New(Forbidden, "seat is not a member of this room")
	ErrNotPlaying     = New(Unavailable, "match is not in progress")
	ErrNoVoteActive   = New(Unavailable, "no replay vote is active")
	ErrNotVoter       = New(Forbidden, "seat is not part of the voter set")
	ErrIllegalMove    = New(IllegalMove, "slot is occupied or inventory exhausted")
	ErrSeatEliminated = New(IllegalMove, "seat is eliminated")
	ErrCellOutOfRange = New(InvalidInput, "cell index must be between 0 and 8")
)
