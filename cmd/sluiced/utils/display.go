// Package utils contains utility functions for the sluice daemon.
package utils

import (
	"fmt"
)

// DisplayLogo prints the sluice ASCII logo with version information
func DisplayLogo(version string) {
	fmt.Println()
	fmt.Println(` ░░░░░░░░░░░░░░░░░░░░░░░░░
 ░█▀▀░█░░░█░█░▀█▀░█▀▀░█▀▀░
 ░▀▀█░█░░░█░█░░█░░█░░░█▀▀░
 ░▀▀▀░▀▀▀░▀▀▀░▀▀▀░▀▀▀░▀▀▀░
 ░░░░░░░░░░░░░░░░░░░░░░░░░`)
	fmt.Printf("\n sluice v%s - size-aware batching proxy\n", version)
	fmt.Println(" One string in, one label out, five at a time behind the scenes")
	fmt.Println()
}
