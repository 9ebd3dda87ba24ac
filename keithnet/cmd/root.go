// Package cmd provides the command-line interface of keithnet.
package cmd

import (
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

// fileSystem holds the genome files.
var fileSystem = afero.NewOsFs()

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "keithnet",
	Short: "Keithnet drives a robot with a hormone-modulated neural network.",
	Long: `Keithnet loads a trained genome, reads sonar ranges from the bus ` +
		`and publishes one speed per motor side at a fixed rate. It also ` +
		`provides tools to create and inspect genome files.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().String("env-file", ".env",
		"file of KEITHNET_* variables loaded before the environment is read")
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		atexit.Exit(1)
	}

	atexit.Exit(0)
}
