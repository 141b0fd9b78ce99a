package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/tbielander/xtract/pkg/lib"
)

var dryRun bool

var rootCmd = &cobra.Command{
	Use:   "xtract",
	Short: "Split and rewrite an XML feed into per-group output files",
	Long: `xtract reads one XML file from the configured intake directory, streams it
through a declarative split/filter/transform rule set, and writes one
output file per destination group — uploading and archiving each as it
completes.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
			return err
		}
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		return nil
	},
	RunE: runPipeline,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "log the input file that would be processed, without transforming, writing, uploading, or archiving anything")
	rootCmd.AddCommand(newConfigCommand())
	rootCmd.AddCommand(newVersionCommand())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		lib.Exit(err)
	}
}
