package cleaner

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownOperation      = errors.New("unknown cleaning operation")
	ErrInvalidAggressiveness = errors.New("invalid aggressiveness")
)

type Aggressiveness string

const (
	Conservative Aggressiveness = "conservative"
	Moderate     Aggressiveness = "moderate"
	Aggressive   Aggressiveness = "aggressive"
)

// ParseAggressiveness resolves a level name. An empty name means Moderate.
func ParseAggressiveness(name string) (Aggressiveness, error) {
	switch a := Aggressiveness(strings.ToLower(strings.TrimSpace(name))); a {
	case "":
		return Moderate, nil
	case Conservative, Moderate, Aggressive:
		return a, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidAggressiveness, name)
	}
}

type Operation string

const (
	OpTextCleaning  Operation = "text_cleaning"
	OpDeduplication Operation = "deduplication"
	OpValidation    Operation = "validation"
	OpEnhancement   Operation = "enhancement"
)

// AllOperations is the default run order.
var AllOperations = []Operation{OpTextCleaning, OpDeduplication, OpValidation, OpEnhancement}

// ParseOperations resolves operation names in the given order. An empty list
// means every operation in default order.
func ParseOperations(names []string) ([]Operation, error) {
	if len(names) == 0 {
		out := make([]Operation, len(AllOperations))
		copy(out, AllOperations)
		return out, nil
	}

	out := make([]Operation, 0, len(names))
	for _, name := range names {
		switch op := Operation(strings.ToLower(strings.TrimSpace(name))); op {
		case OpTextCleaning, OpDeduplication, OpValidation, OpEnhancement:
			out = append(out, op)
		default:
			return nil, fmt.Errorf("%w: %q", ErrUnknownOperation, name)
		}
	}
	return out, nil
}

type Options struct {
	// Operations are applied in order; empty means AllOperations.
	Operations     []string
	Aggressiveness string
	// OnStage, when set, receives each stage report as soon as the stage ends.
	OnStage func(StageReport)
}
