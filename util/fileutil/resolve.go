package fileutil

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// NotFoundError is returned by ResolveFirst when none of the candidates exist.
type NotFoundError struct {
	// Attempted holds every candidate in the order it was tried.
	Attempted []string
	// Err joins the errors raised while checking candidates, if any.
	Err error
}

func (e *NotFoundError) Error() string {
	if len(e.Attempted) == 0 {
		return "model not found: no candidate paths were given"
	}
	msg := fmt.Sprintf("model not found, tried: %s", strings.Join(e.Attempted, ", "))
	if e.Err != nil {
		msg += fmt.Sprintf(" (%s)", e.Err)
	}
	return msg
}

func (e *NotFoundError) Unwrap() error {
	return e.Err
}

// ResolveFirst returns the first candidate that exists.
// A candidate whose existence check fails is skipped and the failure is kept on the returned NotFoundError.
func ResolveFirst(ctx context.Context, candidates []string) (string, error) {
	notFound := &NotFoundError{Attempted: make([]string, 0, len(candidates))}
	for _, candidate := range candidates {
		notFound.Attempted = append(notFound.Attempted, candidate)
		if candidate == "" {
			continue
		}
		exists, err := FileExists(ctx, candidate)
		if err != nil {
			notFound.Err = errors.Join(notFound.Err, fmt.Errorf("checking %s: %w", candidate, err))
			continue
		}
		if exists {
			return candidate, nil
		}
	}
	return "", notFound
}
