package posture

import (
	"context"
	"fmt"
	"net"
	"sort"
	"strings"

	"github.com/meshzero/posture-agent/pkg/posture/wire"
)

// defaultMACProvider enumerates physical network interfaces, spec.md §4.2.
// net.Interfaces abstracts the platform-specific enumeration the source
// does by hand (getifaddrs/GetAdaptersAddresses), so this one
// implementation covers every GOOS.
func defaultMACProvider(_ context.Context, queryID string) ([]byte, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return wire.NewMACResponse(queryID, nil).Marshal()
	}

	seen := map[string]struct{}{}
	var addrs []string
	for _, iface := range ifaces {
		if iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		if len(iface.HardwareAddr) == 0 {
			continue
		}
		if _, dup := seen[iface.Name]; dup {
			continue
		}
		seen[iface.Name] = struct{}{}
		addrs = append(addrs, formatHardwareAddr(iface.HardwareAddr))
	}
	sort.Strings(addrs)

	return wire.NewMACResponse(queryID, addrs).Marshal()
}

func formatHardwareAddr(hw net.HardwareAddr) string {
	parts := make([]string, len(hw))
	for i, b := range hw {
		parts[i] = fmt.Sprintf("%02x", b)
	}
	return strings.Join(parts, ":")
}
