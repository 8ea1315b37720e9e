package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"canvasgrab/pkg/ui"
)

var (
	// Version information
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile string
	logLevel   string
	quiet      bool
	assumeYes  bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "canvasgrab",
	Short: "Mirror course files and pages from a Canvas LMS instance",
	Long: `canvasgrab downloads the content of your Canvas courses to disk.

It walks each course three ways: through its modules, through its file
folders, and through its wiki pages, and mirrors everything it finds into a
local directory tree. Files already on disk with matching sizes are skipped,
so re-running keeps a course folder up to date.

Your API token can be stored securely with 'canvasgrab auth login' so it
never has to appear on the command line.`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if quiet || logLevel == "error" {
			ui.SetQuietMode(true)
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default is .canvasgrab.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress all output except errors")
	rootCmd.PersistentFlags().BoolVarP(&assumeYes, "yes", "y", false, "skip the confirmation prompt")

	rootCmd.SetVersionTemplate(`canvasgrab {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// Make fetch the default command when the first argument is not a known
// subcommand, so 'canvasgrab canvas.school.edu' works without 'fetch'.
func init() {
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		if len(args) > 0 && !isKnownCommand(args[0]) {
			runFetch(fetchCmd, args)
			return nil
		}
		return cmd.Help()
	}
	rootCmd.Args = cobra.ArbitraryArgs
}

func isKnownCommand(arg string) bool {
	for _, cmd := range rootCmd.Commands() {
		if cmd.Name() == arg || cmd.HasAlias(arg) {
			return true
		}
	}
	return false
}
