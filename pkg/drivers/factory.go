package drivers

import (
	"sort"
	"strings"

	"github.com/pkg/errors"
)

var registry = map[string]func() Driver{}

// Register adds a driver constructor under name. Driver packages call
// it from init(), so importing a driver package makes it available.
func Register(name string, factory func() Driver) {
	registry[strings.ToLower(name)] = factory
}

// New creates an unconnected driver by name.
func New(name string) (Driver, error) {
	factory, ok := registry[strings.ToLower(name)]
	if !ok {
		return nil, errors.Errorf("unsupported driver %q, available: %s",
			name, strings.Join(Available(), ", "))
	}
	return factory(), nil
}

// Available returns registered driver names in sorted order.
func Available() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
