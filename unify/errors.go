package unify

import (
	"errors"
	"fmt"
)

var (
	// ErrBudgetExceeded is the sentinel every BudgetError wraps. It is
	// distinct from "no match": callers may retry with a larger budget.
	ErrBudgetExceeded = errors.New("match budget exceeded")

	// ErrUnknownPredicate is returned when a conditional pattern names a
	// predicate the engine has no registration for. This is a caller
	// contract violation and aborts the whole call.
	ErrUnknownPredicate = errors.New("unknown predicate")

	// ErrTypeConstraint signals a type-constraint violation. Inside a match
	// it fails only the current branch; predicates may return it to reject
	// a branch on type grounds.
	ErrTypeConstraint = errors.New("type constraint violation")

	// ErrScopeViolation signals that a predicate required a variable that is
	// not bound at its evaluation point (left-to-right scope). It fails only
	// the current branch.
	ErrScopeViolation = errors.New("scope violation")
)

// BudgetError reports exhaustion of the exploration budget.
type BudgetError struct {
	Steps int
}

func (e *BudgetError) Error() string {
	return fmt.Sprintf("match budget exceeded after %d steps", e.Steps)
}

func (e *BudgetError) Unwrap() error { return ErrBudgetExceeded }

// UnknownPredicateError names the missing predicate.
type UnknownPredicateError struct {
	Name string
}

func (e *UnknownPredicateError) Error() string {
	return fmt.Sprintf("unknown predicate %q", e.Name)
}

func (e *UnknownPredicateError) Unwrap() error { return ErrUnknownPredicate }
