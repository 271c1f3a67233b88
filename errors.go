package atomgo

import (
	"errors"
	"fmt"

	"github.com/hupe1980/atomgo/codec"
	"github.com/hupe1980/atomgo/pattern"
	"github.com/hupe1980/atomgo/unify"
)

var (
	// ErrMalformedKey is returned when decoding bytes that Encode never
	// produced. The underlying *codec.MalformedKeyError carries the offset
	// and reason; access it via errors.As.
	ErrMalformedKey = errors.New("malformed key")

	// ErrPatternSyntax is returned for invalid pattern source. The
	// underlying *pattern.SyntaxError carries position and reason.
	ErrPatternSyntax = errors.New("invalid pattern")

	// ErrMatchBudgetExceeded is returned when a match exhausts its
	// exploration budget. It is distinct from an empty result: callers can
	// retry with a larger budget via WithMatchBudget.
	ErrMatchBudgetExceeded = errors.New("match budget exceeded")

	// ErrUnknownPredicate is returned when a pattern names a predicate that
	// was not registered via WithPredicate.
	ErrUnknownPredicate = errors.New("unknown predicate")
)

// translateError maps subsystem errors onto the public error contract while
// keeping the original error reachable through errors.Unwrap.
func translateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, codec.ErrMalformedKey):
		return fmt.Errorf("%w: %w", ErrMalformedKey, err)
	case errors.Is(err, pattern.ErrSyntax):
		return fmt.Errorf("%w: %w", ErrPatternSyntax, err)
	case errors.Is(err, unify.ErrBudgetExceeded):
		return fmt.Errorf("%w: %w", ErrMatchBudgetExceeded, err)
	case errors.Is(err, unify.ErrUnknownPredicate):
		return fmt.Errorf("%w: %w", ErrUnknownPredicate, err)
	default:
		return err
	}
}
