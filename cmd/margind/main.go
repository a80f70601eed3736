package main

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/OrtalNisim/PX-OMS/internal/config"
)

const defaultConfigPath = "config/config.yaml"

var configPath string

func main() {
	// .env feeds the MARGIN_OPTIMIZER_* overrides; missing file is fine
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:   "margind",
		Short: "Margin optimizer for ad platform demand endpoints",
		Long: `margind tunes the serving margin of a demand endpoint with a guarded
hill-climb: it ingests hourly performance windows, derives profit and
supply KPIs, and nudges the margin while rolling back any move that
hurts sRPM or bid rate.

Examples:
  margind serve
  margind run --csv export.csv --arm LowMar
  margind analyze --csv export.csv --control-contains LowMar --last-hour`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "path to config file (default "+defaultConfigPath+" when present)")

	root.AddCommand(serveCommand(), runCommand(), analyzeCommand())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig resolves the config file path and loads it. Without an
// explicit --config the default path is used only when it exists.
func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		if _, err := os.Stat(defaultConfigPath); err == nil {
			path = defaultConfigPath
		}
	}
	return config.LoadConfig(path)
}

// setupLogger configures the logger based on config
func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	// Set log level
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	// Set format
	if cfg.Format == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}

	return log.Logger.With().Str("service", "margin-optimizer").Logger()
}
