package codec

import "errors"

var (
	// ErrCodecNotFound is returned by Get for an unregistered name or transfer syntax UID
	ErrCodecNotFound = errors.New("codec not found")

	// ErrInvalidParameter is returned when EncodeParams.Options is not baseline.Options
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrInvalidQuality is returned by BaseOptions.Validate
	ErrInvalidQuality = errors.New("invalid quality (must be 1-100)")

	// ErrUnsupportedFormat is returned for bit depths other than 8
	ErrUnsupportedFormat = errors.New("unsupported format")
)
