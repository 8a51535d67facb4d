package version

// Version is the current release of evalusense. The release workflow bumps
// it before tagging.
const Version = "0.3.0"

// FullVersion returns the version with the v prefix used by release tags.
func FullVersion() string {
	return "v" + Version
}
