package drops

import (
	"fmt"

	coreerrors "dropchain/core/errors"
)

var (
	ErrDropNotFound        = fmt.Errorf("drops: drop %w", coreerrors.ErrNotFound)
	ErrDropExists          = fmt.Errorf("drops: drop %w", coreerrors.ErrAlreadyExists)
	ErrInvalidDrop         = fmt.Errorf("drops: %w: drop definition", coreerrors.ErrInvalidArgument)
	ErrNotGated            = fmt.Errorf("drops: %w: drop has no scavenger hunt", coreerrors.ErrInvalidArgument)
	ErrScavengerNotFound   = fmt.Errorf("drops: scavenger id %w", coreerrors.ErrNotFound)
	ErrAlreadyClaimed      = fmt.Errorf("drops: %w", coreerrors.ErrAlreadyClaimed)
	ErrMintInProgress      = fmt.Errorf("drops: mint in progress: %w", coreerrors.ErrAlreadyClaimed)
	ErrScavengerIncomplete = fmt.Errorf("drops: %w", coreerrors.ErrScavengerIncomplete)
	ErrMintNotFound        = fmt.Errorf("drops: mint request %w", coreerrors.ErrNotFound)
)
