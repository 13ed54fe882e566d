package log

import (
	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// extractStacktrace returns the first safe detail recorded by cockroachdb/errors,
// which holds the stack captured by errors.WithStack.
func extractStacktrace(err error) string {
	safeDetails := errors.GetSafeDetails(err).SafeDetails
	if len(safeDetails) > 0 {
		return safeDetails[0]
	}
	return ""
}

// marshalerOf finds the first error in the chain that knows how to log itself.
func marshalerOf(err error) (zerolog.LogObjectMarshaler, bool) {
	var m zerolog.LogObjectMarshaler
	if errors.As(err, &m) {
		return m, true
	}
	return nil, false
}
