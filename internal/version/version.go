// Package version provides version information for WhiteDwarf.
package version

import (
	"fmt"
	"os"
)

const (
	// Name of the tool.
	Name string = "WhiteDwarf"
	// Version of the tool.
	Version string = "3.0.0"
	// Additional information.
	Additional string = "PGDASD branches extractor"
)

// String returns a plain text representation of the version information.
func String() string {
	return fmt.Sprintf("%s %s %s", Name, Version, Additional)
}

// Print the version.
func Print() {
	fmt.Println(String())
}

// PrintAndExit prints the program version and exits.
func PrintAndExit() {
	Print()
	os.Exit(0)
}
