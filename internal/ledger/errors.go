package ledger

import (
	"errors"
	"fmt"
)

// Error kinds surfaced to the chat layer. Store errors never leave the ledger
// unwrapped; they are reported as ErrStoreUnavailable.
var (
	ErrValidation         = errors.New("invalid input")
	ErrSessionAlreadyOpen = errors.New("a deep work session is already running")
	ErrNoOpenSession      = errors.New("no deep work session is running")
	ErrStoreUnavailable   = errors.New("storage unavailable")
)

// IsConflict reports whether err is a start/stop state conflict.
func IsConflict(err error) bool {
	return errors.Is(err, ErrSessionAlreadyOpen) || errors.Is(err, ErrNoOpenSession)
}

func storeErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrStoreUnavailable, op, err)
}
