package config

import "errors"

var errDrainRatioOutOfRange = errors.New("config: drain_ratio must be in [0, 1]")
