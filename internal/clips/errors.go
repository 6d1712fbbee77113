package clips

import (
	"errors"
	"fmt"
)

// ErrUser marks recoverable mistakes that are shown to the user.
var ErrUser = errors.New("user error")

// ErrInvalidIndex is returned for any index outside [0, length).
var ErrInvalidIndex = errors.New("invalid index")

var (
	ErrNothingSelected     = fmt.Errorf("%w: please make some recordings", ErrUser)
	ErrReRecordNoSelection = fmt.Errorf("%w: select a recording to re-record", ErrUser)
)

// InvariantError reports corrupted list state. It is raised with panic and
// must never be recovered and ignored.
type InvariantError struct {
	Clips  int
	Labels int
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("recording list corrupted: %d clips, %d labels", e.Clips, e.Labels)
}

func indexError(i, n int) error {
	return fmt.Errorf("%w: %d (have %d recordings)", ErrInvalidIndex, i, n)
}
