package checks

import (
	"errors"
	"runtime/debug"
	"strings"

	goerrors "github.com/go-errors/errors"
	"github.com/phuslu/log"
)

// Checks has its own package, to prevent dependency cycles

// Wrap attaches the caller's stack trace to err, unless err already carries one.
func Wrap(err error) error {
	if err == nil {
		return nil
	}
	var stacked *goerrors.Error
	if errors.As(err, &stacked) {
		return err
	}
	return goerrors.Wrap(err, 1)
}

// Recover converts a panic into a stack-carrying error joined onto *err.
// It must be called directly by defer.
func Recover(err *error) {
	if r := recover(); r != nil {
		*err = errors.Join(*err, goerrors.Wrap(r, 1))
	}
}

// Stack returns the stack trace recorded on err, or the current stack if there is none.
func Stack(err error) string {
	var stacked *goerrors.Error
	if errors.As(err, &stacked) {
		return string(stacked.Stack())
	}
	lines := strings.Split(string(debug.Stack()), "\n")
	if len(lines) > 5 {
		lines = lines[5:]
	}
	return strings.Join(lines, "\n")
}

// LogError logs err at error level together with its stack trace.
func LogError(err error, message string) {
	if err == nil {
		return
	}
	log.Error().Err(err).Str("stack", Stack(err)).Msg(message)
}
