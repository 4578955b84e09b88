package advisor

import (
	"errors"
	"fmt"
)

// ErrValidation marks input the caller must fix; the HTTP layer maps it to 400.
var ErrValidation = errors.New("validation error")

var ErrUnknownCrop = fmt.Errorf("%w: no catalog data for crop", ErrValidation)
