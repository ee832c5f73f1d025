// Package utils provides small helpers shared by the kazitrust commands.
package utils

// Build metadata, overridden with -ldflags "-X" at release time.
var (
	Version   = "dev"
	Sha       = "HEAD"
	Buildtime = "dev"
)
