package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"canvasgrab/pkg/auth"
	"canvasgrab/pkg/canvas"
	"canvasgrab/pkg/config"
	"canvasgrab/pkg/logger"
	"canvasgrab/pkg/scraper"
	"canvasgrab/pkg/storage"
	"canvasgrab/pkg/ui"
)

var (
	// Fetch command flags
	fromStrategy string
	outputDir    string
	allCourses   bool
	textOnly     bool
	tokenFlag    string
)

// fetchCmd represents the fetch command
var fetchCmd = &cobra.Command{
	Use:   "fetch [domain]",
	Short: "Download course content from a Canvas instance",
	Long: `Download the content of your Canvas courses into a local directory tree.

The domain is your institution's Canvas host, e.g. canvas.school.edu. It can
also come from the config file or the CANVASGRAB_DOMAIN environment variable.

The API token is resolved in order from the --token flag, the configuration
(file or CANVASGRAB_TOKEN), and finally the credential store filled by
'canvasgrab auth login'.`,
	Example: `  # Mirror favorited courses from modules, folders and pages
  canvasgrab fetch canvas.school.edu

  # Only the file folders, for every enrolled course
  canvasgrab fetch canvas.school.edu -f folders --all

  # Custom output directory without the confirmation prompt
  canvasgrab fetch canvas.school.edu -o ~/courses --yes`,
	Args: cobra.MaximumNArgs(1),
	Run:  runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().StringVarP(&fromStrategy, "from", "f", scraper.FromAll, "download from modules, folders, pages or all")
	fetchCmd.Flags().StringVarP(&outputDir, "output", "o", "", "output directory (default: CanvasFiles)")
	fetchCmd.Flags().BoolVar(&allCourses, "all", false, "mirror all enrolled courses instead of only favorites")
	fetchCmd.Flags().BoolVar(&textOnly, "text-only", false, "save bodies as decoded .html text instead of binary files")
	fetchCmd.Flags().StringVar(&tokenFlag, "token", "", "Canvas API token (prefer 'auth login' over this)")

	// Same flags on the root command for the default-command path
	rootCmd.Flags().StringVarP(&fromStrategy, "from", "f", scraper.FromAll, "download from modules, folders, pages or all")
	rootCmd.Flags().StringVarP(&outputDir, "output", "o", "", "output directory (default: CanvasFiles)")
	rootCmd.Flags().BoolVar(&allCourses, "all", false, "mirror all enrolled courses instead of only favorites")
	rootCmd.Flags().BoolVar(&textOnly, "text-only", false, "save bodies as decoded .html text instead of binary files")
	rootCmd.Flags().StringVar(&tokenFlag, "token", "", "Canvas API token (prefer 'auth login' over this)")
}

func runFetch(cmd *cobra.Command, args []string) {
	if !scraper.ValidFrom(fromStrategy) {
		ui.PrintError(0, fmt.Sprintf("unknown download source %q (expected modules, folders, pages or all)", fromStrategy))
		os.Exit(1)
	}

	flags := make(map[string]interface{})
	if len(args) > 0 {
		flags["domain"] = strings.TrimSpace(args[0])
	}
	if tokenFlag != "" {
		flags["token"] = tokenFlag
	}
	if outputDir != "" {
		flags["output"] = outputDir
	}
	if logLevel != "info" {
		flags["log-level"] = logLevel
	}

	cfg, err := config.Load(configFile, flags)
	if err != nil {
		ui.PrintError(0, "failed to load configuration: "+err.Error())
		os.Exit(1)
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		ui.PrintError(0, "failed to initialize logging: "+err.Error())
		os.Exit(1)
	}
	log := logger.GetLogger()

	if cfg.Canvas.Domain == "" {
		ui.PrintError(0, "no Canvas domain given (pass it as an argument or set CANVASGRAB_DOMAIN)")
		os.Exit(1)
	}

	// Fall back to the credential store when neither the flag nor the
	// config carried a token
	if cfg.Canvas.Token == "" {
		if account := storedAccount(cfg.Canvas.Domain); account != nil {
			cfg.Canvas.Token = account.Token
			log.InfoWithFields("using stored token", map[string]interface{}{
				"domain": account.Domain,
			})
		}
	}
	if cfg.Canvas.Token == "" {
		ui.PrintError(0, "no Canvas API token found")
		fmt.Println("\nTo store a token securely, run:")
		fmt.Println("  canvasgrab auth login " + cfg.Canvas.Domain)
		fmt.Println("\nAlternatively set the environment variable:")
		fmt.Println("  export CANVASGRAB_TOKEN=your_token")
		os.Exit(1)
	}

	store, err := storage.NewManager(cfg.Output.BaseDirectory)
	if err != nil {
		ui.PrintError(0, err.Error())
		os.Exit(1)
	}

	client := canvas.NewClient(cfg.Canvas.Domain, cfg.Canvas.Token, cfg.Download.RequestTimeout, cfg.Download.PageSize, log)

	ui.PrintInfo("Canvas instance", cfg.Canvas.Domain)
	ui.PrintInfo("Output directory", store.BaseDir())
	log.InfoWithFields("starting mirror run", map[string]interface{}{
		"domain": cfg.Canvas.Domain,
		"from":   fromStrategy,
	})

	s := scraper.New(client, store, log)
	err = s.Run(scraper.Options{
		From:        fromStrategy,
		AllCourses:  allCourses,
		TextOnly:    textOnly,
		AssumeYes:   assumeYes,
		PagesFolder: cfg.Output.PagesFolder,
		ChunkSize:   cfg.Download.ChunkSize,
	})
	if err != nil {
		log.ErrorWithFields("mirror run failed", map[string]interface{}{
			"error": err.Error(),
		})
		ui.PrintError(0, err.Error())
		os.Exit(1)
	}

	log.Info("mirror run completed")
}

// storedAccount looks up the credential store for the domain; a missing
// account is not an error here, only a miss
func storedAccount(domain string) *auth.Account {
	manager, err := auth.NewManager()
	if err != nil {
		return nil
	}
	account, err := manager.Retrieve(domain)
	if err != nil {
		return nil
	}
	return account
}
