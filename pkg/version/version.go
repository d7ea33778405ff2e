// Package version carries the build version of hubtree.
package version

// Version is overridden at build time:
//
//	go build -ldflags "-X github.com/vanderheijden86/hubtree/pkg/version.Version=v1.2.3"
var Version = "v0.1.0"

// Commit is the source revision, set the same way as Version.
var Commit = ""

// String returns the version with the commit when known.
func String() string {
	if Commit == "" {
		return Version
	}
	return Version + " (" + Commit + ")"
}
