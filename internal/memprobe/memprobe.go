// Package memprobe supplies the Sizer's default capacity estimate ("half of
// currently available free memory", spec §4.1) from the host's actual memory
// stats, adapted from the teacher's system monitor (internal/agent/monitor.go
// in the source repo), which already polls github.com/shirou/gopsutil/v3/mem
// for VirtualMemory stats.
package memprobe

import "github.com/shirou/gopsutil/v3/mem"

// Probe reports the amount of memory, in bytes, currently available for new
// allocations. Implementations must be cheap enough to call once per Sizer
// construction.
type Probe interface {
	AvailableBytes() (uint64, error)
}

// System is a Probe backed by the host's real memory statistics.
type System struct{}

// AvailableBytes returns the kernel's notion of available memory (free plus
// reclaimable caches), matching what github.com/shirou/gopsutil/v3/mem
// reports as VirtualMemoryStat.Available.
func (System) AvailableBytes() (uint64, error) {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return 0, err
	}
	return vm.Available, nil
}

// Fixed is a Probe that always reports a constant value; used by tests and
// by callers that want a deterministic Sizer default without touching the
// host.
type Fixed uint64

// AvailableBytes implements Probe.
func (f Fixed) AvailableBytes() (uint64, error) { return uint64(f), nil }
