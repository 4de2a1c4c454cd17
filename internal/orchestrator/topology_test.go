package orchestrator

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCPUList(t *testing.T) {
	assert.Equal(t, []int{0, 1}, parseCPUList("0-1\n"))
	assert.Equal(t, []int{0, 4}, parseCPUList("0,4"))
	assert.Equal(t, []int{2}, parseCPUList("2"))
	assert.Equal(t, []int{0, 1, 2, 3, 8}, parseCPUList("0-3,8"))
	assert.Empty(t, parseCPUList(""))
	assert.Empty(t, parseCPUList("garbage"))
}

func TestDetectPhysicalCoresCollapsesSiblings(t *testing.T) {
	// 4 physical cores, 8 logical: cpuN pairs with cpuN+4.
	siblings := func(core int) (string, bool) {
		pairs := []string{"0,4", "1,5", "2,6", "3,7", "0,4", "1,5", "2,6", "3,7"}
		if core >= len(pairs) {
			return "", false
		}
		return pairs[core] + "\n", true
	}

	// Core 0 is excluded even though it is a physical core.
	assert.Equal(t, []int{1, 2, 3}, detectPhysicalCores(siblings))
}

func TestDetectPhysicalCoresNoHyperthreading(t *testing.T) {
	siblings := func(core int) (string, bool) {
		if core >= 4 {
			return "", false
		}
		return strconv.Itoa(core) + "\n", true
	}
	assert.Equal(t, []int{1, 2, 3}, detectPhysicalCores(siblings))
}

func TestDetectPhysicalCoresEmptyFallsBack(t *testing.T) {
	none := func(core int) (string, bool) { return "", false }
	assert.Empty(t, detectPhysicalCores(none))

	// Single-core machine: only cpu0 exists, nothing usable remains.
	only0 := func(core int) (string, bool) {
		if core == 0 {
			return "0\n", true
		}
		return "", false
	}
	assert.Empty(t, detectPhysicalCores(only0))
}

func TestPhysicalCoresNeverEmpty(t *testing.T) {
	cores := PhysicalCores()
	assert.NotEmpty(t, cores)
	assert.NotContains(t, cores, 0)
}
