//go:build linux

package posture

import (
	"context"

	"golang.org/x/sys/unix"

	"github.com/meshzero/posture-agent/pkg/posture/wire"
)

// defaultOSProvider reads sysname/release/version from uname, spec.md §4.2.
func defaultOSProvider(_ context.Context, queryID string) ([]byte, error) {
	var uts unix.Utsname
	if err := unix.Uname(&uts); err != nil {
		return wire.NewOSResponse(queryID, "", "", "").Marshal()
	}
	return wire.NewOSResponse(queryID, cstr(uts.Sysname[:]), cstr(uts.Release[:]), cstr(uts.Version[:])).Marshal()
}

// defaultDomainProvider: Linux carries no Windows-domain concept.
func defaultDomainProvider(_ context.Context, queryID string) ([]byte, error) {
	return wire.NewDomainResponse(queryID, "").Marshal()
}
