package swagsync

import "fmt"

// version is stamped at release time via -ldflags "-X ...version=v1.2.3".
var version = "dev"

// Version returns the release version, or "dev" for source builds.
func Version() string {
	return version
}

// UserAgent identifies this build in outbound requests and server handshakes.
func UserAgent() string {
	return fmt.Sprintf("swagsync/%s", version)
}
