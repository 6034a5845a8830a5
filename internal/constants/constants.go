// Package constants defines application-wide constants and version information.
package constants

import "runtime"

// Version holds the application version information
const Version = "1.0-" + runtime.GOOS + "/" + runtime.GOARCH

// DateLayout is how calendar dates are given on the command line and in
// request parameters.
const DateLayout = "2006-01-02"
