package engine

import (
	"errors"
	"fmt"
)

// ValidationError indicates malformed input: an empty stat name, an
// unrecognized source type, or a grant that would push XP below zero.
// Never retried.
type ValidationError struct {
	Msg string
}

func (e ValidationError) Error() string { return e.Msg }

// NotFoundError indicates the referenced stat does not exist or is not owned
// by the acting user. The two cases are deliberately indistinguishable.
type NotFoundError struct {
	StatID int64
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("stat %d not found", e.StatID)
}

func IsValidation(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}

func IsNotFound(err error) bool {
	var nfe NotFoundError
	return errors.As(err, &nfe)
}

// errConflict signals that another writer moved the stat's XP between our
// read and our conditional write. Retried internally by AwardXP, never
// surfaced as-is.
var errConflict = errors.New("stat modified concurrently")
