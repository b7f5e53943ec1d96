package drivers

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// ErrNotConnected is returned when Query or an accessor is invoked
// before a successful Connect.
var ErrNotConnected = errors.New("driver is not connected, call Connect() and retry")

// ErrNotSupported is returned by accessors that a driver does not implement.
var ErrNotSupported = errors.New("operation is not supported by this driver")

// UserInputError means no connection parameters were supplied at all.
// The message enumerates required and all recognized parameters.
type UserInputError struct {
	Driver     string
	Required   []string
	Recognized map[string]string
}

func (x *UserInputError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "no connection details provided for %s driver\n", x.Driver)
	fmt.Fprintf(&buf, "required parameters: %s\n", strings.Join(x.Required, ", "))
	buf.WriteString("all parameters:")

	names := make([]string, 0, len(x.Recognized))
	for name := range x.Recognized {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(&buf, "\n  %s: %s", name, x.Recognized[name])
	}
	return buf.String()
}

// MissingArgumentError names required parameters absent after merging
// supplied values over the defaults.
type MissingArgumentError struct {
	Missing []string
}

func (x *MissingArgumentError) Error() string {
	return fmt.Sprintf("required arguments missing: %s", strings.Join(x.Missing, ", "))
}

// ConnectionError wraps a transport or authentication failure from the
// underlying session factory.
type ConnectionError struct {
	Driver string
	Cause  error
}

func (x *ConnectionError) Error() string {
	return fmt.Sprintf("failed to connect to %s: %v", x.Driver, x.Cause)
}

func (x *ConnectionError) Unwrap() error { return x.Cause }
