package sizer

import "errors"

var (
	errInvalidNu     = errors.New("sizer: nu must be >= 4")
	errNegativeT     = errors.New("sizer: t must be >= 0")
	errNegativeC     = errors.New("sizer: c must be >= 0")
	errTGreaterThanC = errors.New("sizer: t must not exceed c when both are positive")
	errInvalidAlpha  = errors.New("sizer: alpha must be 2, 1, or a negative power of two below 1")
	errInfeasible    = errors.New("sizer: (alpha, t, c, nu) fail the feasibility bound")
	errNonFinite     = errors.New("sizer: computed a non-finite value (NaN or overflow)")
)
