// Package config loads the YAML-configured tunables for the Sizer,
// arenas, file-channel provider and staging buffer, in the teacher's
// pattern: human-readable size strings with kb/mb/gb suffixes, pointer
// fields for "nil means default", and a Validate step that fills defaults
// and converts strings to the raw numeric values the core consumes.
package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nishisan-dev/coltable/internal/coreerr"
)

// Config is the top-level document loaded from YAML.
type Config struct {
	Sizer        SizerConfig        `yaml:"sizer"`
	StageBuffer  StageBufferConfig  `yaml:"stage_buffer"`
	FileProvider FileProviderConfig `yaml:"file_provider"`
}

// SizerConfig configures the semi-expert Sizer construction mode. A nil
// pointer field is filled with the default construction mode's value for
// that parameter (spec.md §4.1).
type SizerConfig struct {
	// T is the estimated lower bound chunk size, in bytes. nil → default.
	T *float64 `yaml:"t"`
	// C is the estimated capacity, in bytes, or a human-readable size
	// string such as "64mb" parsed into CRaw. nil → default (half of
	// available memory).
	C *string `yaml:"c"`
	// Nu is the assumed per-chunk overhead. nil → default (17 or 28,
	// depending on arena kind).
	Nu *int `yaml:"nu"`

	CRaw *float64 `yaml:"-"`
}

// StageBufferConfig mirrors the teacher's ChunkBufferConfig: Size
// disables the buffer when empty or "0"; DrainRatio nil defaults to 0.5.
type StageBufferConfig struct {
	Size       string   `yaml:"size"` // e.g. "64mb"; empty or "0" disables
	DrainRatio *float64 `yaml:"drain_ratio"`
	// WriteRateLimit, if set, paces outrow file writes (e.g. "10mb" per
	// second). Empty disables throttling.
	WriteRateLimit string `yaml:"write_rate_limit"`

	SizeRaw           int64   `yaml:"-"`
	DrainRatioRaw     float64 `yaml:"-"`
	WriteRateLimitRaw int64   `yaml:"-"`
}

// FileProviderConfig configures the file-channel provider's open-options
// and closing strategy.
type FileProviderConfig struct {
	Read     bool `yaml:"read"`
	Write    bool `yaml:"write"`
	Append   bool `yaml:"append"`
	Truncate bool `yaml:"truncate"`
	Create   bool `yaml:"create"`
	Sync     bool `yaml:"sync"`

	// DelayMs picks the closing strategy: <0 keep-open, 0 close
	// immediately, >0 lazy-close with that TTL (clamped up to 10ms).
	DelayMs int `yaml:"delay_ms"`

	// OpenRateLimit, if positive, caps underlying open syscalls per second
	// (e.g. 50 opens/sec). Zero (unset) disables limiting.
	OpenRateLimit float64 `yaml:"open_rate_limit"`
	OpenRateBurst int     `yaml:"open_rate_burst"`
}

// Validate fills defaults and resolves human-readable size strings into
// their raw numeric fields. It must be called once after unmarshalling.
func (c *Config) Validate() error {
	if err := c.Sizer.validate(); err != nil {
		return err
	}
	if err := c.StageBuffer.validate(); err != nil {
		return err
	}
	return nil
}

func (s *SizerConfig) validate() error {
	if s.C == nil {
		return nil
	}
	raw, err := ParseByteSize(*s.C)
	if err != nil {
		return coreerr.New(coreerr.BadArgument, "SizerConfig.Validate", err)
	}
	v := float64(raw)
	s.CRaw = &v
	return nil
}

func (s *StageBufferConfig) validate() error {
	raw, err := ParseByteSize(s.Size)
	if err != nil {
		return coreerr.New(coreerr.BadArgument, "StageBufferConfig.Validate", err)
	}
	s.SizeRaw = raw

	if s.DrainRatio == nil {
		s.DrainRatioRaw = 0.5
	} else {
		if *s.DrainRatio < 0 || *s.DrainRatio > 1 {
			return coreerr.New(coreerr.BadArgument, "StageBufferConfig.Validate", errDrainRatioOutOfRange)
		}
		s.DrainRatioRaw = *s.DrainRatio
	}

	if strings.TrimSpace(s.WriteRateLimit) == "" {
		s.WriteRateLimitRaw = 0
		return nil
	}
	limit, err := ParseByteSize(s.WriteRateLimit)
	if err != nil {
		return coreerr.New(coreerr.BadArgument, "StageBufferConfig.Validate", err)
	}
	s.WriteRateLimitRaw = limit
	return nil
}

// ParseByteSize converts a human-readable size string like "256mb" or
// "1gb" to bytes. An empty or "0" string returns 0, nil (disabled).
func ParseByteSize(s string) (int64, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" || s == "0" {
		return 0, nil
	}

	type suffix struct {
		s string
		m int64
	}
	// Longest suffix first so "mb" is not matched as "b".
	suffixes := []suffix{
		{"gb", 1024 * 1024 * 1024},
		{"mb", 1024 * 1024},
		{"kb", 1024},
		{"b", 1},
	}
	for _, sfx := range suffixes {
		if strings.HasSuffix(s, sfx.s) {
			numStr := strings.TrimSuffix(s, sfx.s)
			num, err := strconv.ParseInt(numStr, 10, 64)
			if err != nil {
				return 0, fmt.Errorf("invalid size %q: %w", s, err)
			}
			return num * sfx.m, nil
		}
	}
	num, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("unknown size format %q", s)
	}
	return num, nil
}
