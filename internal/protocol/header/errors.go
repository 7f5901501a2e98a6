package header

import "errors"

// Internal parse-failure causes, wrapped into a *message.Error with the
// field-specific Kind by the caller.
var (
	errNotDigits  = errors.New("field is not all ASCII digits")
	errOutOfRange = errors.New("field value out of range")
)
