package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags "-X main.version=...". It is
// left as a plain string, not a VCS-derived build info read, to match the
// original release process's simple manual version bump.
var version = "dev"

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the xtract version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("xtract " + version)
			return nil
		},
	}
}
