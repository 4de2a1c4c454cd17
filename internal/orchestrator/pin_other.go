//go:build !linux

package orchestrator

import "fmt"

func pinToCore(core int) error {
	return fmt.Errorf("core pinning unsupported on this platform")
}
