package thicket

import _ "embed"

// Version is the release of the library and the thicket CLI.
//
//go:embed VERSION
var Version string
