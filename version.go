package scavenger

import "fmt"

// Release of the pipeline, recorded in the program line of output headers.
const (
	MajorVersion = 1
	MinorVersion = 0
	PatchVersion = 0
)

func Version() string {
	return formatVersion(MajorVersion, MinorVersion, PatchVersion)
}

func formatVersion(major, minor, patch int) string {
	return fmt.Sprintf("%d.%d.%d", major, minor, patch)
}
