package game

import (
	"errors"
	"fmt"
)

// Code identifies the reason a command was rejected. Validation errors are
// always recoverable: the command is refused, state is unchanged and the code
// is returned for user-facing feedback. The engine never panics on player
// input.
type Code string

const (
	CodeMatchNotFound       Code = "MATCH_NOT_FOUND"
	CodeMatchExists         Code = "MATCH_EXISTS"
	CodeMatchOver           Code = "MATCH_OVER"
	CodeNotPlayersTurn      Code = "NOT_PLAYERS_TURN"
	CodeWrongPhase          Code = "WRONG_PHASE"
	CodeCardNotFound        Code = "CARD_NOT_FOUND"
	CodeAbilityNotFound     Code = "ABILITY_NOT_FOUND"
	CodeCardNotInHand       Code = "CARD_NOT_IN_HAND"
	CodeWrongCategory       Code = "WRONG_CATEGORY"
	CodeInvalidSlot         Code = "INVALID_SLOT"
	CodeSlotOccupied        Code = "SLOT_OCCUPIED"
	CodeInsufficientCredits Code = "INSUFFICIENT_CREDITS"
	CodeHandFull            Code = "HAND_FULL"
	CodeDeckEmpty           Code = "DECK_EMPTY"
	CodeAlreadyAttacked     Code = "ALREADY_ATTACKED"
	CodeInvalidTarget       Code = "INVALID_TARGET"
	CodeNotFaceUp           Code = "NOT_FACE_UP"
	CodeOnCooldown          Code = "ON_COOLDOWN"
	CodeUsesExhausted       Code = "USES_EXHAUSTED"
	CodeConditionFailed     Code = "CONDITION_FAILED"
	CodeNoValidTarget       Code = "NO_VALID_TARGET"
)

// ValidationError reports an illegal command given the current match state.
type ValidationError struct {
	Code   Code
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Reason == "" {
		return string(e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Reason)
}

func validationErr(code Code, format string, args ...any) error {
	return &ValidationError{Code: code, Reason: fmt.Sprintf(format, args...)}
}

// ErrCode extracts the validation code from an error chain, or "" if the
// error is not a validation error.
func ErrCode(err error) Code {
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return vErr.Code
	}
	return ""
}

// IsCode reports whether err is a validation error with the given code.
func IsCode(err error, code Code) bool {
	return ErrCode(err) == code
}
