package version

import "fmt"

// Set at build time with -ldflags "-X".
var (
	Version   = "dev"
	Commit    = "unknown"
	Branch    = "unknown"
	BuildDate = "unknown"
)

// Info is the build metadata of the running binary.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Branch    string `json:"branch"`
	BuildDate string `json:"buildDate"`
}

func GetInfo() Info {
	return Info{Version: Version, Commit: Commit, Branch: Branch, BuildDate: BuildDate}
}

func (i Info) String() string {
	return fmt.Sprintf("docnav %s (commit: %s, branch: %s, built: %s)", i.Version, i.Commit, i.Branch, i.BuildDate)
}
