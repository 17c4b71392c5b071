package uncertainty

import (
	"errors"

	"github.com/GriffinCanCode/Metrology/internal/quantity"
)

var (
	// ErrInvalidArgument reports malformed input: a missing quantity, a
	// confidence level outside (0,1] or an empty source name.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrIllegalState reports an operation whose preconditions on accumulated
	// state are not met yet, such as the mean of an empty series. The object
	// stays usable.
	ErrIllegalState = errors.New("illegal state")

	// ErrIncompatibleKind is re-exported so callers need not import quantity.
	ErrIncompatibleKind = quantity.ErrIncompatibleKind
)
