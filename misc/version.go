// Package misc keeps build time information.
package misc

// set by linker, see build task in Taskfile.yml
var (
	version = "dev"
	githash = "unknown"
)

const appName = "snapfeed"

func GetAppName() string {
	return appName
}

func GetVersion() string {
	return version
}

func GetGitHash() string {
	return githash
}
