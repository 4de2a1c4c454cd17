// Package cpu reads per-core frequency and thermal data from the kernel's
// sysfs interfaces and aggregates the readings taken around timed samples
// into warnings about measurement conditions (cold start, throttling,
// frequency variance). Everything here is best effort: on platforms without
// the sysfs nodes the monitor degrades to returning nothing rather than
// failing a run.
package cpu

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Snapshot captures CPU state immediately around one timed sample. Either
// field may be nil when the underlying interface is unavailable.
type Snapshot struct {
	Timestamp       time.Time `json:"-"`
	FrequencyKHz    *uint64   `json:"frequency_khz"`
	TemperatureMilC *int32    `json:"temperature_millic"`
}

// FrequencyMHz returns the frequency in MHz, or false when unknown.
func (s Snapshot) FrequencyMHz() (float64, bool) {
	if s.FrequencyKHz == nil {
		return 0, false
	}
	return float64(*s.FrequencyKHz) / 1000, true
}

// TemperatureCelsius returns the temperature in °C, or false when unknown.
func (s Snapshot) TemperatureCelsius() (float64, bool) {
	if s.TemperatureMilC == nil {
		return 0, false
	}
	return float64(*s.TemperatureMilC) / 1000, true
}

// Monitor reads CPU state for one core. Implementations must re-probe the
// OS on every call — values change between samples, so caching would defeat
// the purpose.
type Monitor interface {
	ReadFrequency() (uint64, bool)
	ReadFrequencyRange() (min, max uint64, ok bool)
	ReadGovernor() (string, bool)
	ReadTemperature() (int32, bool)
}

const (
	cpufreqPath     = "/sys/devices/system/cpu/cpu%d/cpufreq/%s"
	thermalZonePath = "/sys/class/thermal/thermal_zone%d/temp"

	// Thermal zone indices are probed over a small bounded range; real
	// systems expose a handful at most.
	maxThermalZoneProbe = 20
)

// sysfsMonitor reads the Linux cpufreq and thermal sysfs trees.
type sysfsMonitor struct {
	core        int
	thermalZone int // -1 when no zone was discovered
}

// noopMonitor serves platforms without the sysfs interfaces.
type noopMonitor struct{}

func (noopMonitor) ReadFrequency() (uint64, bool)              { return 0, false }
func (noopMonitor) ReadFrequencyRange() (uint64, uint64, bool) { return 0, 0, false }
func (noopMonitor) ReadGovernor() (string, bool)               { return "", false }
func (noopMonitor) ReadTemperature() (int32, bool)             { return 0, false }

// NewMonitor returns a Monitor for the given core. When the cpufreq tree is
// absent entirely (non-Linux, sandbox) a no-op monitor is returned so callers
// stay platform-agnostic.
func NewMonitor(core int) Monitor {
	if _, err := os.Stat("/sys/devices/system/cpu"); err != nil {
		return noopMonitor{}
	}
	zone := -1
	if zones := DiscoverThermalZones(); len(zones) > 0 {
		zone = zones[0]
	}
	return &sysfsMonitor{core: core, thermalZone: zone}
}

func readSysfsUint(path string) (uint64, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, false
	}
	v, err := strconv.ParseUint(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func (m *sysfsMonitor) ReadFrequency() (uint64, bool) {
	return readSysfsUint(fmt.Sprintf(cpufreqPath, m.core, "scaling_cur_freq"))
}

func (m *sysfsMonitor) ReadFrequencyRange() (uint64, uint64, bool) {
	min, ok := readSysfsUint(fmt.Sprintf(cpufreqPath, m.core, "cpuinfo_min_freq"))
	if !ok {
		return 0, 0, false
	}
	max, ok := readSysfsUint(fmt.Sprintf(cpufreqPath, m.core, "cpuinfo_max_freq"))
	if !ok {
		return 0, 0, false
	}
	return min, max, true
}

func (m *sysfsMonitor) ReadGovernor() (string, bool) {
	data, err := os.ReadFile(fmt.Sprintf(cpufreqPath, m.core, "scaling_governor"))
	if err != nil {
		return "", false
	}
	return strings.TrimSpace(string(data)), true
}

func (m *sysfsMonitor) ReadTemperature() (int32, bool) {
	if m.thermalZone < 0 {
		return 0, false
	}
	v, ok := readSysfsUint(fmt.Sprintf(thermalZonePath, m.thermalZone))
	if !ok {
		return 0, false
	}
	return int32(v), true
}

// DiscoverThermalZones probes thermal_zone0..thermal_zone19 and returns the
// indices that exist.
func DiscoverThermalZones() []int {
	var zones []int
	for i := 0; i < maxThermalZoneProbe; i++ {
		if _, err := os.Stat(fmt.Sprintf(thermalZonePath, i)); err == nil {
			zones = append(zones, i)
		}
	}
	return zones
}

// TakeSnapshot combines two frequency readings bracketing a timed sample
// with a post-sample temperature. The higher frequency is kept: clocks rise
// under load, so the max better represents the speed the sample ran at.
func TakeSnapshot(m Monitor, freqBefore, freqAfter *uint64) Snapshot {
	snap := Snapshot{Timestamp: time.Now()}

	switch {
	case freqBefore != nil && freqAfter != nil:
		f := *freqBefore
		if *freqAfter > f {
			f = *freqAfter
		}
		snap.FrequencyKHz = &f
	case freqBefore != nil:
		snap.FrequencyKHz = freqBefore
	case freqAfter != nil:
		snap.FrequencyKHz = freqAfter
	}

	if t, ok := m.ReadTemperature(); ok {
		snap.TemperatureMilC = &t
	}
	return snap
}

// ReadFrequencyPtr adapts ReadFrequency to the pointer form TakeSnapshot
// consumes.
func ReadFrequencyPtr(m Monitor) *uint64 {
	if f, ok := m.ReadFrequency(); ok {
		return &f
	}
	return nil
}

// VerifyEnvironment logs informational diagnostics about the measurement
// environment for the given core. It only ever warns; an unsuitable
// environment never fails the run.
func VerifyEnvironment(core int, logger *slog.Logger) {
	m := NewMonitor(core)

	if governor, ok := m.ReadGovernor(); ok {
		logger.Info("cpu governor", "core", core, "governor", governor)
		if governor != "performance" {
			logger.Warn("not using 'performance' governor; timings may be noisy",
				"core", core, "governor", governor,
				"hint", "sudo cpupower frequency-set -g performance")
		}
	} else {
		logger.Info("cpu frequency interfaces unavailable; monitoring disabled", "core", core)
	}

	if min, max, ok := m.ReadFrequencyRange(); ok {
		logger.Info("cpu frequency range", "core", core,
			"min_mhz", min/1000, "max_mhz", max/1000)
	}
	if freq, ok := m.ReadFrequency(); ok {
		logger.Info("cpu current frequency", "core", core, "mhz", freq/1000)
	}

	zones := DiscoverThermalZones()
	if len(zones) > 0 {
		logger.Info("thermal zones discovered", "count", len(zones))
		for _, zone := range zones[:min(3, len(zones))] {
			if v, ok := readSysfsUint(fmt.Sprintf(thermalZonePath, zone)); ok {
				logger.Info("thermal zone temperature", "zone", zone, "celsius", v/1000)
			}
		}
	}
}
