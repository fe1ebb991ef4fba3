package groovy

import "errors"

// ErrUnsupported is returned by model operations that exist on the API but
// are not implemented, such as renaming a type definition.
var ErrUnsupported = errors.New("not implemented yet")
