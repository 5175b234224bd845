package cmd

import (
	"fmt"
	"io"
	"os"
	"runtime"

	"golang.org/x/mod/semver"
)

func init() {
	RegisterCommand(&Command{
		Name:  "version",
		Short: "Show version information",
		Long:  "Print the lazynode version, build time and Go runtime.",
		Usage: "lazynode version",
		Run: func(args []string) error {
			printVersion(os.Stdout)
			return nil
		},
	})
}

func printVersion(out io.Writer) {
	v := Version
	if semver.IsValid(v) {
		if pre := semver.Prerelease(v); pre != "" {
			v = fmt.Sprintf("%s (pre-release %s)", v, pre[1:])
		}
	}
	fmt.Fprintf(out, "lazynode version %s (built %s, %s)\n", v, BuildTime, runtime.Version())
}
