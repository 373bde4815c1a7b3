//go:build darwin

package posture

import (
	"context"

	"golang.org/x/sys/unix"

	"github.com/meshzero/posture-agent/pkg/posture/wire"
)

func defaultOSProvider(_ context.Context, queryID string) ([]byte, error) {
	var uts unix.Utsname
	if err := unix.Uname(&uts); err != nil {
		return wire.NewOSResponse(queryID, "", "", "").Marshal()
	}
	return wire.NewOSResponse(queryID, cstr(uts.Sysname[:]), cstr(uts.Release[:]), cstr(uts.Version[:])).Marshal()
}

func defaultDomainProvider(_ context.Context, queryID string) ([]byte, error) {
	return wire.NewDomainResponse(queryID, "").Marshal()
}
