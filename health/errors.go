package health

import "errors"

// ErrCheckTimeout marks a probe that did not answer before the aggregate
// deadline.
var ErrCheckTimeout = errors.New("health: check timeout")
