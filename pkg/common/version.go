package common

// Set via -ldflags "-X github.com/Simonwafula/personal-finance-app/pkg/common.version=...".
var (
	version   = "dev"
	build     = "unknown"
	gitCommit = "unknown"
)

func GetVersion() string   { return version }
func GetBuild() string     { return build }
func GetGitCommit() string { return gitCommit }
