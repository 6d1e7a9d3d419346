package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestClassUnwrapsModuleSentinels(t *testing.T) {
	moduleErr := fmt.Errorf("drops: %w", ErrAlreadyClaimed)
	wrapped := fmt.Errorf("claim D1: %w", moduleErr)
	if got := Class(wrapped); got != ErrAlreadyClaimed {
		t.Fatalf("expected already claimed class, got %v", got)
	}
	if got := Class(stderrors.New("boom")); got != nil {
		t.Fatalf("expected no class, got %v", got)
	}
	if got := Class(nil); got != nil {
		t.Fatalf("expected nil class for nil error, got %v", got)
	}
}
