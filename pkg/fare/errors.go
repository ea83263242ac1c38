package fare

import "errors"

var (
	// ErrLengthMismatch indicates the value and label slices differ in length.
	ErrLengthMismatch = errors.New("fare: input sequences must have equal length")

	// ErrInvalidGroup indicates a group label outside {0, 1}.
	ErrInvalidGroup = errors.New("fare: group labels must be 0 or 1")

	// ErrInvalidWindow indicates a non-positive audit window.
	ErrInvalidWindow = errors.New("fare: window must be positive")

	// ErrInvalidStep indicates a non-positive audit step.
	ErrInvalidStep = errors.New("fare: step must be positive")

	// ErrWindowTooLarge indicates an audit window longer than the ranking.
	ErrWindowTooLarge = errors.New("fare: window exceeds ranking length")

	// ErrUnknownMetric indicates an unrecognised metric.
	ErrUnknownMetric = errors.New("fare: unknown metric")

	// ErrSequenceLengthMismatch indicates diagnostics inputs of different lengths.
	ErrSequenceLengthMismatch = errors.New("fare: error sequences must have equal length")

	// ErrSequenceTooShort indicates fewer than two windows, for which no slope exists.
	ErrSequenceTooShort = errors.New("fare: error sequences need at least two points")
)

// IsInputError reports whether err is a caller precondition violation
// rather than an internal failure.
func IsInputError(err error) bool {
	for _, target := range []error{
		ErrLengthMismatch, ErrInvalidGroup, ErrInvalidWindow, ErrInvalidStep,
		ErrWindowTooLarge, ErrUnknownMetric, ErrSequenceLengthMismatch, ErrSequenceTooShort,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
