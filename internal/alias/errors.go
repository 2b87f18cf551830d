package alias

import "github.com/zeebo/errs"

// Error kinds returned by the index. Check them with Has, e.g. ErrNotFound.Has(err).
var (
	ErrNotFound        = errs.Class("not found")
	ErrDuplicatePath   = errs.Class("duplicate path")
	ErrInvalidResource = errs.Class("invalid resource")
	ErrInvalidArgument = errs.Class("invalid argument")
	ErrResolution      = errs.Class("resolution")
	ErrUnsupported     = errs.Class("unsupported operation")
)
