// Command lazynode drives the lazy node runtime outside of an app.
package main

import (
	"fmt"
	"os"

	"github.com/go-drift/lazynode/cmd/lazynode/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
