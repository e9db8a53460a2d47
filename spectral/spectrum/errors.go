package spectrum

import "errors"

// Errors returned by spectrum construction and transforms.
var (
	ErrTooShort            = errors.New("spectrum: wavelength grid needs at least 2 points")
	ErrLengthMismatch      = errors.New("spectrum: sequence length must match the wavelength grid")
	ErrNotIncreasing       = errors.New("spectrum: wavelength grid must be strictly increasing")
	ErrUnknownMethod       = errors.New("spectrum: unknown resampling method")
	ErrUnknownMode         = errors.New("spectrum: unknown extinction mode")
	ErrInvalidOversampling = errors.New("spectrum: oversampling must be >= 1")
	ErrInvalidVelSampling  = errors.New("spectrum: velocity sampling must be > 0")
	ErrInvalidWidth        = errors.New("spectrum: pixel width must be >= 0")
	ErrNoNormPoints        = errors.New("spectrum: not enough unmasked points for normalization")
	ErrAlreadyNormalized   = errors.New("spectrum: normalization already present")
)
