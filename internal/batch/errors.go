package batch

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"syscall"

	"mediatidy/internal/namematch"
)

var (
	// ErrNoCandidates is the matcher's own sentinel, so a failed match
	// classifies without rewrapping.
	ErrNoCandidates  = namematch.ErrNoCandidates
	ErrAlreadyExists = errors.New("already exists")
	ErrNotFound      = errors.New("not found")
	ErrPermission    = errors.New("permission denied")
	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
	ErrTimeout       = errors.New("timeout")
	ErrTransient     = errors.New("transient failure")
)

// Wrap builds an error message that includes operation context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, operation, message string, err error) error {
	detail := buildDetail(operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Classify returns the sentinel marker that best describes err. Errors that
// already carry a marker keep it; filesystem errors map onto the matching
// marker; everything else is transient.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	for _, marker := range []error{
		ErrNoCandidates,
		ErrAlreadyExists,
		ErrNotFound,
		ErrPermission,
		ErrValidation,
		ErrConfiguration,
		ErrTimeout,
	} {
		if errors.Is(err, marker) {
			return marker
		}
	}
	switch {
	case errors.Is(err, fs.ErrExist), errors.Is(err, syscall.ENOTEMPTY):
		return ErrAlreadyExists
	case errors.Is(err, fs.ErrNotExist):
		return ErrNotFound
	case errors.Is(err, fs.ErrPermission):
		return ErrPermission
	}
	return ErrTransient
}

// Hint returns a short next-step suggestion for a classified error, used as
// the error_hint log field.
func Hint(err error) string {
	switch Classify(err) {
	case ErrNoCandidates:
		return "the directory has no files left to match; check the manifest and folder"
	case ErrAlreadyExists:
		return "remove or rename the existing target, then rerun"
	case ErrNotFound:
		return "the source disappeared; rerun to rebuild the plan"
	case ErrPermission:
		return "check ownership and permissions of the directory"
	case ErrValidation:
		return "fix the input name or manifest entry"
	case ErrConfiguration:
		return "check the configuration file"
	case ErrTimeout:
		return "increase the timeout or check the external program"
	default:
		return "check logs for details"
	}
}

func buildDetail(operation, message string) string {
	parts := make([]string, 0, 2)
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "operation failure"
	}
	return strings.Join(parts, ": ")
}
