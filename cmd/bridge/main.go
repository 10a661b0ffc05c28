// Command bridge runs a guest wasm module against a host module through the
// ring-staged import bridge.
package main

import (
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
