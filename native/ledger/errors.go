package ledger

import (
	"fmt"

	coreerrors "dropchain/core/errors"
)

var (
	ErrInvalidAmount       = fmt.Errorf("ledger: %w: amount must be a non-negative integer", coreerrors.ErrInvalidArgument)
	ErrInsufficientBalance = fmt.Errorf("ledger: %w", coreerrors.ErrInsufficientBalance)
	ErrOverflow            = fmt.Errorf("ledger: %w", coreerrors.ErrArithmeticOverflow)
	ErrDropNotFound        = fmt.Errorf("ledger: drop %w", coreerrors.ErrNotFound)
	ErrInvalidMetadata     = fmt.Errorf("ledger: %w: token metadata", coreerrors.ErrInvalidArgument)
)
