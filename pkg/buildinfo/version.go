// Package buildinfo holds build-time information injected by the linker so
// other packages can report a version without introducing import cycles.
package buildinfo

// Version is the agent's version, set by the go linker's -X flag at build time.
var Version = "v0.1.0"

// GitSHA is the commit the binary was built from, set by the go linker's -X flag.
var GitSHA string

// BuildDate is the UTC build timestamp, set by the go linker's -X flag.
var BuildDate string
