package profile

import "errors"

// ErrUnknownProfile indicates a requested profile is neither "default" nor
// defined in the global config.
var ErrUnknownProfile = errors.New("no such profile")
