package sensor

import "github.com/pkg/errors"

var (
	// ErrNotInitialized is returned by Read before a successful Init.
	ErrNotInitialized = errors.New("sensor not initialized")

	// ErrUnexpectedDevice is returned by Init when the chip id does not match.
	ErrUnexpectedDevice = errors.New("unexpected device id")
)
