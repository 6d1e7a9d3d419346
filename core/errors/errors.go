// Package errors defines the failure taxonomy shared by every native module.
// Module sentinels wrap one of these so callers can branch on the class with
// errors.Is regardless of which module produced the failure.
package errors

import stderrors "errors"

var (
	ErrNotFound            = stderrors.New("not found")
	ErrUnauthorized        = stderrors.New("unauthorized")
	ErrAlreadyClaimed      = stderrors.New("already claimed")
	ErrScavengerIncomplete = stderrors.New("scavenger hunt incomplete")
	ErrInsufficientBalance = stderrors.New("insufficient balance")
	ErrOutOfStock          = stderrors.New("out of stock")
	// ErrArithmeticOverflow signals ledger corruption and must never surface
	// under correct operation.
	ErrArithmeticOverflow = stderrors.New("arithmetic overflow")
	ErrAlreadyExists      = stderrors.New("already exists")
	ErrInvalidArgument    = stderrors.New("invalid argument")
	ErrModulePaused       = stderrors.New("module paused")
)

// Class returns the taxonomy sentinel err belongs to, or nil when err does not
// wrap any of them.
func Class(err error) error {
	if err == nil {
		return nil
	}
	for _, class := range classes {
		if stderrors.Is(err, class) {
			return class
		}
	}
	return nil
}

var classes = []error{
	ErrNotFound,
	ErrUnauthorized,
	ErrAlreadyClaimed,
	ErrScavengerIncomplete,
	ErrInsufficientBalance,
	ErrOutOfStock,
	ErrArithmeticOverflow,
	ErrAlreadyExists,
	ErrInvalidArgument,
	ErrModulePaused,
}
