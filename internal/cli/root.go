package cli

import (
	"github.com/spf13/cobra"

	"github.com/lazypower/council/internal/config"
	"github.com/lazypower/council/internal/store"
)

var (
	configPath string
	debugFlag  bool
)

var rootCmd = &cobra.Command{
	Use:   "council",
	Short: "A council of advisors that deliberates before acting",
	Long: "Council makes decisions the way a mind might: an executive picks which advisors to hear, " +
		"each advisor recalls what its fading memories say about the scenario, and the executive decides.",
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.council/config.toml)")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "enable debug logging")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(decideCmd)
	rootCmd.AddCommand(reflectCmd)
	rootCmd.AddCommand(councilCmd)
	rootCmd.AddCommand(historyCmd)
}

// loadConfig reads the config file, then applies environment and flag
// overrides.
func loadConfig() (config.Config, error) {
	path := configPath
	if path == "" {
		var err error
		path, err = config.DefaultPath()
		if err != nil {
			return config.Config{}, err
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}
	cfg.ApplyEnv()
	if debugFlag {
		cfg.Debug = true
	}
	return cfg, nil
}

// openDB opens the decision journal named by the config.
func openDB(cfg config.Config) (*store.DB, error) {
	dbPath := cfg.Database.Path
	if dbPath == "" {
		var err error
		dbPath, err = store.DefaultDBPath()
		if err != nil {
			return nil, err
		}
	}
	return store.Open(dbPath)
}
