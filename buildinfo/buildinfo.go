// Package buildinfo holds the version stamped into ulidgen at link time.
package buildinfo

// Version is overridden with
// -ldflags "-X github.com/aatuh/ulid-toolkit/buildinfo.Version=v1.0.0".
var Version = "dev"

// GetVersion returns Version, or "dev" when the linker set it empty.
func GetVersion() string {
	if Version == "" {
		return "dev"
	}
	return Version
}
