//go:build darwin

package posture

import (
	"bufio"
	"os/exec"
	"strings"
)

// isRunning enumerates PIDs via ps(1) and compares each process' resolved
// command path to path, case-insensitively and length-bounded to len(path)
// to mirror the source's strncasecmp semantics, spec.md §4.3.
func isRunning(path string) bool {
	cmd := exec.Command("ps", "-axww", "-o", "comm=")
	out, err := cmd.StdoutPipe()
	if err != nil {
		return false
	}
	if err := cmd.Start(); err != nil {
		return false
	}
	defer cmd.Wait()

	want := strings.ToLower(path)
	scanner := bufio.NewScanner(out)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if len(line) < len(want) {
			continue
		}
		if strings.ToLower(line[:len(want)]) == want {
			return true
		}
	}
	return false
}

// getSigners: Mach-O code signing uses a different mechanism than
// Windows' embedded PKCS#7 Authenticode blobs; not extracted here,
// spec.md §4.3.
func getSigners(string) []string { return nil }
