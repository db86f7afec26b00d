package game

import "errors"

// Rule violations are reported to the acting player only; the session is left
// untouched when any of these is returned.
var (
	ErrNotPlayersTurn     = errors.New("not this player's turn")
	ErrIllegalPlay        = errors.New("card does not match the top of the discard pile")
	ErrInvalidIndex       = errors.New("card index out of range")
	ErrInvalidDeclaration = errors.New("UNO can only be declared with exactly two cards")
	ErrMissingColorChoice = errors.New("wild card requires a color choice")
)

// Resource exhaustion is fatal to the session, which transitions to
// StateAborted so every player can be notified.
var (
	ErrDeckExhausted = errors.New("no cards left to draw")
	ErrEmptyDiscard  = errors.New("discard pile is empty")
)

// Store errors surface to the lobby layer, never directly to players.
var (
	ErrSessionExists   = errors.New("room already has an active session")
	ErrSessionNotFound = errors.New("no active session for room")
)
