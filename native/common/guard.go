package common

import (
	"fmt"

	coreerrors "dropchain/core/errors"
)

// Module names recognised by the pause switches.
const (
	ModuleDrops  = "drops"
	ModuleVendor = "vendor"
)

var ErrModulePaused = fmt.Errorf("common: %w", coreerrors.ErrModulePaused)

type PauseView interface {
	IsPaused(module string) bool
}

// Guard rejects mutations on a paused module. A nil view never pauses.
func Guard(p PauseView, module string) error {
	if p == nil || module == "" {
		return nil
	}
	if p.IsPaused(module) {
		return fmt.Errorf("%w: %s", ErrModulePaused, module)
	}
	return nil
}

// StaticPauses is a PauseView backed by a fixed set of module names.
type StaticPauses map[string]bool

func (s StaticPauses) IsPaused(module string) bool {
	return s[module]
}
