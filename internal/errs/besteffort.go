package errs

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
)

// Tolerate decides whether a best-effort failure may be swallowed.
type Tolerate func(err error) bool

// TolerateUpstream accepts upstream failures, not-found and context cancellation.
// This is the documented subset for cleanup work that must never fail a request.
func TolerateUpstream(err error) bool {
	return IsKind(err, KindUpstreamFailure) ||
		IsKind(err, KindNotFound) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

// BestEffort runs op and swallows its error only when tolerate accepts it.
//
// Swallowed errors are logged at warn level with the operation name.
// Anything else is returned to the caller unchanged.
func BestEffort(logger *zerolog.Logger, operation string, op func() error, tolerate Tolerate) error {
	err := op()
	if err == nil {
		return nil
	}

	if tolerate != nil && tolerate(err) {
		logger.Warn().
			Err(err).
			Str("best_effort", operation).
			Msg("best-effort operation failed, continuing")
		return nil
	}

	return err
}
