// Command scopekit validates and inspects service container manifests.
package main

import (
	"fmt"
	"os"

	"github.com/kbukum/scopekit/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "scopekit:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
