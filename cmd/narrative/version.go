package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// These are overridden at build time via -ldflags, the same way the wider
// pipeline tooling stamps its binaries; unset, they report "dev".
var (
	gitRelease    = "dev"
	gitCommit     = "unknown"
	gitCommitDate = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("narrative %s\n", gitRelease)
		fmt.Printf("  Go:     %s\n", runtime.Version())
		fmt.Printf("  Commit: %s\n", gitCommit)
		fmt.Printf("  Date:   %s\n", gitCommitDate)
	},
}
