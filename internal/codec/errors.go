package codec

import "errors"

var (
	errInvalidWidth         = errors.New("codec: width must be in [1, 8]")
	errValueTooWideForWidth = errors.New("codec: value does not fit in the requested width")
	errShortBuffer          = errors.New("codec: buffer length does not match width")
	errLengthOverflow       = errors.New("codec: blob length does not fit in the length-prefix width")
)
