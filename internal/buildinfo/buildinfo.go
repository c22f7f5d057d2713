// Package buildinfo carries the version stamped in by the linker:
//
//	-ldflags "-X touchdrive/internal/buildinfo.Version=v0.3.0 -X touchdrive/internal/buildinfo.Commit=$(git rev-parse --short HEAD)"
package buildinfo

var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// Short returns a compact build identifier for the window title and the boot log.
func Short() string {
	if Version != "" && Version != "dev" {
		return Version
	}
	if Commit != "" && Commit != "unknown" {
		return Commit
	}
	return "dev"
}

// Long adds commit and build date to Short when they are known.
func Long() string {
	s := Short()
	if Commit != "" && Commit != "unknown" && s != Commit {
		s += " " + Commit
	}
	if Date != "" && Date != "unknown" {
		s += " (" + Date + ")"
	}
	return s
}
