package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tbielander/xtract/internal/precheck"
)

func newConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the configured rewrite rules",
	}
	cmd.AddCommand(newConfigCheckCommand())
	return cmd
}

func newConfigCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Run the filter/split consistency pre-check and print any findings",
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := loadDeps()
			if err != nil {
				return err
			}

			report := precheck.Check(deps.cfg)
			if report.Empty() {
				fmt.Println("no inconsistencies found")
				return nil
			}

			if len(report.AllowBlockConflict) > 0 {
				fmt.Println("allow/block conflict:")
				for _, path := range report.AllowBlockConflict {
					fmt.Println("  -", path)
				}
				return nil
			}
			printFindings := func(title string, findings []precheck.Finding) {
				if len(findings) == 0 {
					return
				}
				fmt.Println(title + ":")
				for _, f := range findings {
					fmt.Printf("  %s: %v\n", f.Path, f.Values)
				}
			}
			printFindings("splitting without allowance", report.SplittingWithoutAllowance)
			printFindings("splitting despite blocking", report.SplittingDespiteBlocking)
			printFindings("allowance without splitting", report.AllowanceWithoutSplitting)
			return nil
		},
	}
}
