package confloader

import (
	"errors"
	"strings"
)

// ErrReadBytesNotSupported is returned when ReadBytes is called on a map provider.
var ErrReadBytesNotSupported = errors.New("confloader: map provider does not support ReadBytes")

// mapProvider is a koanf provider over an in-memory map with dotted keys.
type mapProvider map[string]any

func (m mapProvider) ReadBytes() ([]byte, error) {
	return nil, ErrReadBytesNotSupported
}

// Read unflattens dotted keys so they merge with nested file values.
func (m mapProvider) Read() (map[string]any, error) {
	out := make(map[string]any)
	for k, v := range m {
		setPath(out, k, v)
	}
	return out, nil
}

func setPath(dst map[string]any, key string, v any) {
	for {
		i := strings.IndexByte(key, '.')
		if i < 0 {
			dst[key] = v
			return
		}
		child, ok := dst[key[:i]].(map[string]any)
		if !ok {
			child = make(map[string]any)
			dst[key[:i]] = child
		}
		dst, key = child, key[i+1:]
	}
}
