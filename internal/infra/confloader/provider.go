package confloader

import (
	"errors"

	"github.com/knadh/koanf/maps"
)

// ErrReadBytesNotSupported is returned when ReadBytes is called on a map provider.
var ErrReadBytesNotSupported = errors.New("confloader: map provider has no byte form")

// mapProvider loads dotted keys ("gateway.timeout") as nested configuration.
type mapProvider map[string]any

// ReadBytes implements koanf.Provider.
func (m mapProvider) ReadBytes() ([]byte, error) {
	return nil, ErrReadBytesNotSupported
}

// Read implements koanf.Provider.
func (m mapProvider) Read() (map[string]any, error) {
	flat := make(map[string]any, len(m))
	for k, v := range m {
		flat[k] = v
	}
	return maps.Unflatten(flat, "."), nil
}
