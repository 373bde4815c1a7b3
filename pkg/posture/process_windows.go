//go:build windows

package posture

import (
	"encoding/hex"
	"strings"
	"unsafe"

	"github.com/sirupsen/logrus"
	"golang.org/x/sys/windows"
)

// isRunning snapshots the process table and compares each accessible
// process' full image path against path, case-insensitively and bounded
// by the image path's length, mirroring the source's strnicmp(path, fullPath,
// fullPathSize) semantics, spec.md §4.3. PIDs whose handle cannot be
// opened (access denied, protected processes) are skipped, not treated
// as a mismatch.
func isRunning(path string) bool {
	snap, err := windows.CreateToolhelp32Snapshot(windows.TH32CS_SNAPPROCESS, 0)
	if err != nil {
		return false
	}
	defer windows.CloseHandle(snap)

	var entry windows.ProcessEntry32
	entry.Size = uint32(unsafe.Sizeof(entry))

	if err := windows.Process32First(snap, &entry); err != nil {
		return false
	}

	want := strings.ToLower(path)
	for {
		if full, ok := queryImagePath(entry.ProcessID); ok {
			if len(want) >= len(full) && want[:len(full)] == strings.ToLower(full) {
				return true
			}
		}

		if err := windows.Process32Next(snap, &entry); err != nil {
			break
		}
	}
	return false
}

func queryImagePath(pid uint32) (string, bool) {
	h, err := windows.OpenProcess(windows.PROCESS_QUERY_LIMITED_INFORMATION, false, pid)
	if err != nil {
		return "", false
	}
	defer windows.CloseHandle(h)

	buf := make([]uint16, windows.MAX_PATH)
	size := uint32(len(buf))
	if err := windows.QueryFullProcessImageName(h, 0, &buf[0], &size); err != nil {
		return "", false
	}
	return windows.UTF16ToString(buf[:size]), true
}

// getSigners extracts SHA-1 thumbprints of every certificate embedded in
// path's PKCS#7 signature block, spec.md §4.3. The source's equivalent
// loop breaks without advancing its enumeration cursor when
// CertGetCertificateContextProperty fails on one certificate, which can
// spin forever on a store containing an unreadable entry; this version
// always advances the cursor before continuing (the REDESIGN FLAG in
// spec.md §9).
func getSigners(path string) []string {
	var certStore windows.Handle
	var cryptMsg windows.Handle

	pathPtr, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return nil
	}

	ok := windows.CryptQueryObject(
		windows.CERT_QUERY_OBJECT_FILE,
		unsafe.Pointer(pathPtr),
		windows.CERT_QUERY_CONTENT_FLAG_PKCS7_SIGNED_EMBED,
		windows.CERT_QUERY_FORMAT_FLAG_BINARY,
		0, nil, nil, nil, &certStore, &cryptMsg, nil,
	)
	if ok != nil {
		return nil
	}
	defer windows.CertCloseStore(certStore, 0)

	var signers []string
	var cert *windows.CertContext
	for {
		cert, err = windows.CertEnumCertificatesInStore(certStore, cert)
		if err != nil || cert == nil {
			break
		}

		thumbprint, propErr := certThumbprint(cert)
		if propErr != nil {
			logrus.WithError(propErr).WithField("path", path).Debug("skipping unreadable signer certificate")
			continue
		}
		signers = append(signers, thumbprint)
	}

	return signers
}

func certThumbprint(cert *windows.CertContext) (string, error) {
	var size uint32
	if err := windows.CertGetCertificateContextProperty(cert, windows.CERT_SHA1_HASH_PROP_ID, nil, &size); err != nil {
		return "", err
	}
	buf := make([]byte, size)
	if err := windows.CertGetCertificateContextProperty(cert, windows.CERT_SHA1_HASH_PROP_ID, unsafe.Pointer(&buf[0]), &size); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
