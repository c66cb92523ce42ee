package gpu

import "github.com/cockroachdb/errors"

// Failure kinds of the bootstrap sequence. Returned errors are marked with one
// of these, test them with errors.Is.
var (
	ErrExtensionQueryFailed          = errors.New("driver capability query failed")
	ErrInstanceCreationFailed        = errors.New("instance creation failed")
	ErrNoSuitableDevice              = errors.New("no suitable device")
	ErrDeviceCreationFailed          = errors.New("logical device creation failed")
	ErrDiagnosticsRegistrationFailed = errors.New("diagnostics registration failed")
)

func mark(err error, kind error, format string, args ...interface{}) error {
	if err == nil {
		err = errors.Newf(format, args...)
	} else {
		err = errors.Wrapf(err, format, args...)
	}
	return errors.Mark(err, kind)
}
