// internal/application/query/mall/errors.go
package mall

import "errors"

// ErrInvalidArgument is returned for caller mistakes (empty ids) only;
// remote failures are never reported through it.
var ErrInvalidArgument = errors.New("catalog: invalid argument")
