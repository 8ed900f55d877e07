// Package conf contains the constants that are used across packages for configuring
// versions and the names the core scope is bootstrapped with.
package conf

import (
	"fmt"
	"time"
)

const (
	// TYPHONVERSION is the version of the typhon type core.
	TYPHONVERSION = "Typhon 0.1.0"
	// TYPHONVERSIONMAJORN is the major version.
	TYPHONVERSIONMAJORN = 0
	// TYPHONVERSIONMINORN is the minor version.
	TYPHONVERSIONMINORN = 1
	// TYPHONVERSIONPATCHN is the patch version.
	TYPHONVERSIONPATCHN = 0
	// CORENAME is the name of the root package every other package descends from.
	CORENAME = "core"
	// PATHSEP joins scope names in qualified paths.
	PATHSEP = "."
	// REPLPROMPT is the prompt shown by the query repl.
	REPLPROMPT = "typhon> "
)

// FullVersion returns the version and copyright.
func FullVersion() string {
	return fmt.Sprintf("%v Copyright (C) %v", TYPHONVERSION, time.Now().Year())
}

// Copyright is the copyright to be written out in the CLI.
func Copyright() string {
	return fmt.Sprintf("Copyright (C) %v", time.Now().Year())
}
