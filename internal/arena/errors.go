package arena

import "errors"

var (
	errAppendAfterDrain  = errors.New("arena: append called after drain")
	errDrainAlreadyTaken = errors.New("arena: drain already taken")
	errWrongBlobLength   = errors.New("arena: fixed-length blob does not match the declared width")
)
