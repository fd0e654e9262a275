package gridlock

import "errors"

var (
	// ErrInvalidParameters is returned when a parameter set violates p prime
	// and n^2 < p < 2n^2, or carries an unusable noise distribution.
	ErrInvalidParameters = errors.New("invalid parameters")

	// ErrInvalidKeyLength is returned when a key does not have the shape
	// required by the parameters.
	ErrInvalidKeyLength = errors.New("invalid key length")

	// ErrInvalidCiphertext is returned when a ciphertext sample does not
	// have the shape required by the parameters.
	ErrInvalidCiphertext = errors.New("invalid ciphertext")
)
