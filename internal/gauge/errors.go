package gauge

import "github.com/pkg/errors"

var (
	// ErrInsufficientBalance is returned when a withdrawal exceeds the raw balance.
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrKickNotAllowed is returned when the target still has voting power.
	ErrKickNotAllowed = errors.New("kick not allowed")
	// ErrKickNotNeeded is returned when the recorded working balance is not above its fair value.
	ErrKickNotNeeded = errors.New("kick not needed")
	// ErrArithmeticOverflow is returned when a balance or total leaves the 256-bit range.
	ErrArithmeticOverflow = errors.New("arithmetic overflow")
	// ErrInvalidAmount is returned for a delta that cannot be represented.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrCorruptState is returned by Restore when totals disagree with positions.
	ErrCorruptState = errors.New("corrupt gauge state")
)

// KickRejection returns a short label for an expected kick failure, or ""
// when err is not one.
func KickRejection(err error) string {
	switch {
	case errors.Is(err, ErrKickNotAllowed):
		return "not_allowed"
	case errors.Is(err, ErrKickNotNeeded):
		return "not_needed"
	default:
		return ""
	}
}
