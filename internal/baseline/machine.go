package baseline

import (
	"crypto/sha256"
	"encoding/hex"
	"net"
	"os"
	"strings"
)

// MachineID derives a stable identifier for this host so baselines recorded
// on different machines never get compared. The ID is the first 16 hex
// characters of the SHA-256 of the primary interface's MAC address. Hosts
// without a usable MAC fall back to hashing the hostname, which is stable
// enough for containers.
func MachineID() string {
	if mac, ok := primaryMAC(); ok {
		return hashID(mac)
	}
	host, err := os.Hostname()
	if err != nil {
		host = "unknown"
	}
	return hashID(strings.ToLower(host))
}

func primaryMAC() (string, bool) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return "", false
	}
	for _, iface := range ifaces {
		if iface.Flags&net.FlagLoopback != 0 || len(iface.HardwareAddr) == 0 {
			continue
		}
		return macString(iface.HardwareAddr), true
	}
	return "", false
}

// macString renders a hardware address as lowercase dash-separated hex,
// e.g. "aa-bb-cc-dd-ee-ff". The exact form matters: it feeds the hash that
// names baseline directories, so it must never change.
func macString(addr net.HardwareAddr) string {
	parts := make([]string, len(addr))
	for i, b := range addr {
		parts[i] = hex.EncodeToString([]byte{b})
	}
	return strings.Join(parts, "-")
}

func hashID(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])[:16]
}
