package orchestrator

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
)

const siblingsPath = "/sys/devices/system/cpu/cpu%d/topology/thread_siblings_list"

// PhysicalCores returns the usable core indices for pinned benchmark
// processes: one core per physical core (hyperthread siblings collapse to
// their lowest index), excluding core 0, which is left to the OS. When
// detection fails or leaves nothing usable the fallback is [1].
func PhysicalCores() []int {
	cores := detectPhysicalCores(readSiblings)
	if len(cores) == 0 {
		return []int{1}
	}
	return cores
}

func readSiblings(core int) (string, bool) {
	data, err := os.ReadFile(fmt.Sprintf(siblingsPath, core))
	if err != nil {
		return "", false
	}
	return string(data), true
}

// detectPhysicalCores walks cpu0 upward until the sysfs entries stop,
// keeping the first-listed sibling of each physical core.
func detectPhysicalCores(siblings func(core int) (string, bool)) []int {
	seen := make(map[int]bool)
	var cores []int

	for core := 0; ; core++ {
		raw, ok := siblings(core)
		if !ok {
			break
		}
		ids := parseCPUList(raw)
		if len(ids) == 0 {
			continue
		}
		primary := ids[0]
		if seen[primary] {
			continue
		}
		seen[primary] = true
		if primary == 0 {
			continue
		}
		cores = append(cores, primary)
	}

	sort.Ints(cores)
	return cores
}

// parseCPUList decodes the kernel's CPU list format: comma-separated
// entries that are either single indices or inclusive ranges, e.g.
// "0-1", "0,4", "2".
func parseCPUList(s string) []int {
	var ids []int
	for _, part := range strings.Split(strings.TrimSpace(s), ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if lo, hi, found := strings.Cut(part, "-"); found {
			start, err1 := strconv.Atoi(lo)
			end, err2 := strconv.Atoi(hi)
			if err1 != nil || err2 != nil || end < start {
				continue
			}
			for i := start; i <= end; i++ {
				ids = append(ids, i)
			}
			continue
		}
		id, err := strconv.Atoi(part)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}
