package version

import "fmt"

// VERSION and Commit are set at build time via:
//
//	go build -ldflags "-X ...version.VERSION=0.1.0 -X ...version.Commit=abc123"
var (
	VERSION = "dev"
	Commit  = "dev"
)

// String renders the build and wire versions for `costream version`.
func String(wire uint8) string {
	return fmt.Sprintf("costream %s (%s) wire v%d", VERSION, Commit, wire)
}
