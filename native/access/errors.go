package access

import (
	"fmt"

	coreerrors "dropchain/core/errors"
)

var (
	ErrAccountNotFound = fmt.Errorf("access: account %w", coreerrors.ErrNotFound)
	ErrAccountExists   = fmt.Errorf("access: account %w", coreerrors.ErrAlreadyExists)
	ErrKeyNotFound     = fmt.Errorf("access: public key %w", coreerrors.ErrNotFound)
	ErrKeyBound        = fmt.Errorf("access: public key %w", coreerrors.ErrAlreadyExists)
	ErrUnauthorized    = fmt.Errorf("access: %w", coreerrors.ErrUnauthorized)
	ErrInvalidAccount  = fmt.Errorf("access: %w: account id", coreerrors.ErrInvalidArgument)
	ErrInvalidStatus   = fmt.Errorf("access: %w: account status", coreerrors.ErrInvalidArgument)
	ErrTicketNotFound  = fmt.Errorf("access: ticket type %w", coreerrors.ErrNotFound)
	ErrTicketExists    = fmt.Errorf("access: ticket type %w", coreerrors.ErrAlreadyExists)
	ErrInvalidTicket   = fmt.Errorf("access: %w: ticket type", coreerrors.ErrInvalidArgument)
)
