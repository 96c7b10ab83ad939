package tracker

import (
	"errors"
	"runtime"
)

// ErrProbeUnsupported is returned by a SystemProbe for measurements the
// platform cannot take. The tracker degrades the field to zero instead of
// failing the inference.
var ErrProbeUnsupported = errors.New("measurement not supported on this platform")

// SystemProbe captures process resource usage at inference completion.
// All measurements are best-effort; implementations return
// ErrProbeUnsupported (or any other error) for unavailable measurements
// and the tracker records zero for that field.
type SystemProbe interface {
	// MemoryMb returns the process heap usage in megabytes.
	MemoryMb() (float64, error)

	// CPUPercent returns the process CPU utilization percentage.
	CPUPercent() (float64, error)

	// GPUPercent returns the GPU utilization percentage.
	GPUPercent() (float64, error)
}

// RuntimeProbe is the default SystemProbe backed by the Go runtime.
// Memory comes from runtime.ReadMemStats; CPU and GPU utilization have no
// portable runtime source and report ErrProbeUnsupported.
type RuntimeProbe struct{}

// MemoryMb returns the current heap allocation in megabytes.
func (RuntimeProbe) MemoryMb() (float64, error) {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return float64(ms.HeapAlloc) / (1024 * 1024), nil
}

// CPUPercent is not supported by the runtime probe.
func (RuntimeProbe) CPUPercent() (float64, error) {
	return 0, ErrProbeUnsupported
}

// GPUPercent is not supported by the runtime probe.
func (RuntimeProbe) GPUPercent() (float64, error) {
	return 0, ErrProbeUnsupported
}
