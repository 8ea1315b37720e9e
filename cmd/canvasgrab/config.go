package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"canvasgrab/pkg/config"
	"canvasgrab/pkg/ui"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage canvasgrab configuration files.

Configuration can be loaded from:
  - Command line flags (highest priority)
  - Environment variables
  - Configuration file
  - Default values (lowest priority)`,
}

// initCmd represents the config init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an example configuration file",
	Long: `Create an example configuration file with all available options.

The file will be created in the current directory as '.canvasgrab.yaml'
unless a different path is specified with the --config flag.`,
	Run: runConfigInit,
}

// showCmd represents the config show command
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long: `Show the configuration merged from all sources. The API token is
masked.`,
	Run: runConfigShow,
}

// validateCmd represents the config validate command
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	Long: `Validate a configuration file for syntax errors and invalid values.`,
	Run:   runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(initCmd)
	configCmd.AddCommand(showCmd)
	configCmd.AddCommand(validateCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) {
	configPath := configFile
	if configPath == "" {
		configPath = ".canvasgrab.yaml"
	}

	if _, err := os.Stat(configPath); err == nil {
		ui.PrintError(0, "configuration file already exists: "+configPath)
		fmt.Println("\nTo overwrite, first remove the existing file:")
		fmt.Printf("  rm %s\n", configPath)
		os.Exit(1)
	}

	exampleConfig := `# canvasgrab configuration file
#
# Every value can also come from environment variables prefixed with
# CANVASGRAB_, for example CANVASGRAB_DOMAIN and CANVASGRAB_TOKEN.

canvas:
  # Your institution's Canvas host
  domain: "canvas.school.edu"

  # API token. Prefer 'canvasgrab auth login' over putting it here.
  token: ""

download:
  # Items requested per API listing call (max 500)
  page_size: 500

  # Bytes per write while streaming file bodies
  chunk_size: 4096

  # Timeout per HTTP request
  request_timeout: 30s

output:
  # Root of the mirrored course tree
  base_directory: "CanvasFiles"

  # Subfolder per course for rendered wiki pages
  pages_folder: "Files"

logging:
  # debug, info, warn, error or disabled
  level: "info"

  # Optional log file path; empty logs to the console only
  file: ""
`

	if err := os.WriteFile(configPath, []byte(exampleConfig), 0600); err != nil {
		ui.PrintError(0, "failed to write configuration file: "+err.Error())
		os.Exit(1)
	}

	ui.PrintNew(0, "Created "+configPath)
	fmt.Println("\nEdit the file, then check it with:")
	fmt.Println("  canvasgrab config validate")
}

func runConfigShow(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		ui.PrintError(0, "failed to load configuration: "+err.Error())
		os.Exit(1)
	}

	// Never print the real token
	shown := *cfg
	if shown.Canvas.Token != "" {
		shown.Canvas.Token = "********"
	}

	data, err := yaml.Marshal(&shown)
	if err != nil {
		ui.PrintError(0, "failed to render configuration: "+err.Error())
		os.Exit(1)
	}
	fmt.Print(string(data))
}

func runConfigValidate(cmd *cobra.Command, args []string) {
	cfg := config.DefaultConfig()
	if err := cfg.LoadFromFile(configFile); err != nil {
		ui.PrintError(0, err.Error())
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		ui.PrintError(0, "configuration is invalid:")
		fmt.Println(err.Error())
		os.Exit(1)
	}

	ui.PrintNew(0, "Configuration is valid")
}
