package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseByteSize(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"", 0},
		{"0", 0},
		{"1024", 1024},
		{"1kb", 1024},
		{"64mb", 64 * 1024 * 1024},
		{"1gb", 1024 * 1024 * 1024},
		{"10b", 10},
	}
	for _, c := range cases {
		got, err := ParseByteSize(c.in)
		if err != nil {
			t.Fatalf("ParseByteSize(%q): %v", c.in, err)
		}
		if got != c.want {
			t.Errorf("ParseByteSize(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestParseByteSize_RejectsGarbage(t *testing.T) {
	if _, err := ParseByteSize("not-a-size"); err == nil {
		t.Error("expected an error for an unparseable size string")
	}
}

func TestStageBufferConfig_DefaultsDrainRatio(t *testing.T) {
	cfg := StageBufferConfig{Size: "64mb"}
	if err := cfg.validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if cfg.DrainRatioRaw != 0.5 {
		t.Errorf("DrainRatioRaw = %v, want default 0.5", cfg.DrainRatioRaw)
	}
	if cfg.SizeRaw != 64*1024*1024 {
		t.Errorf("SizeRaw = %d, want %d", cfg.SizeRaw, 64*1024*1024)
	}
}

func TestStageBufferConfig_RejectsOutOfRangeDrainRatio(t *testing.T) {
	bad := 1.5
	cfg := StageBufferConfig{Size: "64mb", DrainRatio: &bad}
	if err := cfg.validate(); err == nil {
		t.Error("expected an error for drain_ratio > 1")
	}
}

func TestStageBufferConfig_EmptySizeDisablesBuffer(t *testing.T) {
	cfg := StageBufferConfig{}
	if err := cfg.validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if cfg.SizeRaw != 0 {
		t.Errorf("SizeRaw = %d, want 0 for empty size", cfg.SizeRaw)
	}
}

func TestSizerConfig_ResolvesHumanReadableCapacity(t *testing.T) {
	c := "128mb"
	cfg := SizerConfig{C: &c}
	if err := cfg.validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if cfg.CRaw == nil || *cfg.CRaw != float64(128*1024*1024) {
		t.Errorf("CRaw = %v, want %v", cfg.CRaw, float64(128*1024*1024))
	}
}

func TestLoad_FullDocument(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "coltable.yaml")
	doc := `
sizer:
  t: 4
  c: "64mb"
  nu: 17
stage_buffer:
  size: "128mb"
  drain_ratio: 0.25
  write_rate_limit: "10mb"
file_provider:
  read: true
  write: true
  delay_ms: 50
  open_rate_limit: 100
  open_rate_burst: 10
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Sizer.T == nil || *cfg.Sizer.T != 4 {
		t.Errorf("Sizer.T = %v, want 4", cfg.Sizer.T)
	}
	if cfg.Sizer.CRaw == nil || *cfg.Sizer.CRaw != float64(64*1024*1024) {
		t.Errorf("Sizer.CRaw = %v, want %v", cfg.Sizer.CRaw, float64(64*1024*1024))
	}
	if cfg.StageBuffer.SizeRaw != 128*1024*1024 {
		t.Errorf("StageBuffer.SizeRaw = %d, want %d", cfg.StageBuffer.SizeRaw, 128*1024*1024)
	}
	if cfg.StageBuffer.DrainRatioRaw != 0.25 {
		t.Errorf("StageBuffer.DrainRatioRaw = %v, want 0.25", cfg.StageBuffer.DrainRatioRaw)
	}
	if cfg.StageBuffer.WriteRateLimitRaw != 10*1024*1024 {
		t.Errorf("StageBuffer.WriteRateLimitRaw = %d, want %d", cfg.StageBuffer.WriteRateLimitRaw, 10*1024*1024)
	}
	if !cfg.FileProvider.Read || !cfg.FileProvider.Write {
		t.Error("FileProvider.Read/Write not parsed")
	}
	if cfg.FileProvider.DelayMs != 50 {
		t.Errorf("FileProvider.DelayMs = %d, want 50", cfg.FileProvider.DelayMs)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected an error loading a missing file")
	}
}
