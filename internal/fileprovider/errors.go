package fileprovider

import "errors"

var (
	errUnsupportedCombination = errors.New("fileprovider: open-option combination is not supported")
	errShutDown               = errors.New("fileprovider: provider is shut down")
)
