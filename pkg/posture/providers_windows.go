//go:build windows

package posture

import (
	"context"
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/meshzero/posture-agent/pkg/posture/wire"
)

// defaultOSProvider maps the kernel-reported version structure the way
// the source's win32_os_info does, spec.md §4.2. build is always
// "ununsed" on Windows per spec.md §9 — preserved verbatim even though
// RtlGetVersion does give us a real build number, because the controller
// contract is keyed off the literal.
func defaultOSProvider(_ context.Context, queryID string) ([]byte, error) {
	v, err := windows.RtlGetVersion()
	if err != nil {
		return wire.NewOSResponse(queryID, "<unknown windows type>", "", "ununsed").Marshal()
	}

	var osType string
	switch v.ProductType {
	case 1:
		osType = "windows"
	case 2, 3:
		osType = "windowsserver"
	default:
		osType = "<unknown windows type>"
	}

	version := fmt.Sprintf("%d.%d.%d", v.MajorVersion, v.MinorVersion, v.BuildNumber)
	return wire.NewOSResponse(queryID, osType, version, "ununsed").Marshal()
}

// defaultDomainProvider renders NetGetJoinInformation, spec.md §4.2.
func defaultDomainProvider(_ context.Context, queryID string) ([]byte, error) {
	var namePtr *uint16
	var bufType uint32
	if err := windows.NetGetJoinInformation(nil, &namePtr, &bufType); err != nil {
		return wire.NewDomainResponse(queryID, "").Marshal()
	}
	defer windows.NetApiBufferFree((*byte)(unsafe.Pointer(namePtr)))

	return wire.NewDomainResponse(queryID, windows.UTF16PtrToString(namePtr)).Marshal()
}
