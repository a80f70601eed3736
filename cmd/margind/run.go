package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/OrtalNisim/PX-OMS/internal/analysis"
	"github.com/OrtalNisim/PX-OMS/internal/models"
	"github.com/OrtalNisim/PX-OMS/internal/platform"
	"github.com/OrtalNisim/PX-OMS/internal/service"
	"github.com/OrtalNisim/PX-OMS/internal/store"
	"github.com/OrtalNisim/PX-OMS/pkg/optimizer"
)

type runOpts struct {
	csvPath string
	arm     string
	dryRun  bool
}

func runCommand() *cobra.Command {
	var o runOpts

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one margin cycle and exit",
		Long: `Fetches the latest hourly window from the platform reporting API (or
loads one arm from a CSV export), feeds it through the optimizer, and
applies the suggested margin. Meant to be driven by cron.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOnce(cmd.Context(), o)
		},
	}

	cmd.Flags().StringVar(&o.csvPath, "csv", "", "use a CSV export instead of the reporting API")
	cmd.Flags().StringVar(&o.arm, "arm", "LowMar", "arm to load when --csv is set (substring of Demand Name)")
	cmd.Flags().BoolVar(&o.dryRun, "dry-run", false, "decide without applying the margin")

	return cmd
}

func runOnce(ctx context.Context, o runOpts) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := setupLogger(cfg.Logging)

	statePath := cfg.Optimizer.StatePath
	if o.csvPath != "" {
		// CSV replays get their own state file so they never disturb the
		// live hill-climb position
		statePath = csvRunStatePath(statePath)
	}

	localStore := store.NewFileStore(statePath, logger)

	var stateStore optimizer.StateStore = localStore
	var recorder service.RunRecorder
	if cfg.Redis.Enabled && o.csvPath == "" {
		redisStore := store.NewRedisStore(
			store.RedisStoreConfig{
				Addr:     cfg.Redis.Addr,
				Password: cfg.Redis.Password,
				DB:       cfg.Redis.DB,
				Prefix:   cfg.Redis.KeyPrefix,
				RunTTL:   cfg.Redis.RunTTL,
			},
			logger,
		)
		defer redisStore.Close()

		if err := redisStore.Ping(ctx); err != nil {
			return fmt.Errorf("failed to connect to Redis: %w", err)
		}

		stateStore = store.NewLayeredStore(localStore, redisStore, logger)
		recorder = redisStore
	}

	opt := optimizer.NewOptimizer(cfg.Optimizer.ToOptimizerParams(), stateStore, logger)
	opt.LoadState(ctx)

	clientConfig := platform.ClientConfig{
		MetricsURL: cfg.Platform.MetricsURL,
		UpdateURL:  cfg.Platform.UpdateURL,
		APIKey:     cfg.Platform.APIKey,
		Timeout:    cfg.Platform.Timeout,
	}
	if o.dryRun {
		// An empty update URL turns the apply into a logged no-op
		clientConfig.UpdateURL = ""
	}
	platformClient := platform.NewClient(clientConfig, logger)

	runner := service.NewRunner(opt, platformClient, recorder, logger)

	var record *models.RunRecord
	if o.csvPath != "" {
		rows, err := analysis.LoadRows(o.csvPath)
		if err != nil {
			return err
		}
		window, err := analysis.ArmWindow(rows, o.arm)
		if err != nil {
			return err
		}
		record, err = runner.Process(ctx, *window)
		if err != nil {
			return reportRunFailure(record, err)
		}
	} else {
		record, err = runner.RunOnce(ctx)
		if err != nil {
			return reportRunFailure(record, err)
		}
	}

	fmt.Printf("Margin updated: %g%% -> %g%% (%s)\n", record.CurrentMargin, record.NextMargin, record.Outcome)
	return nil
}

// reportRunFailure distinguishes a failed apply (decision persisted, exit
// non-zero with a warning) from a failed cycle
func reportRunFailure(record *models.RunRecord, err error) error {
	if record != nil {
		fmt.Fprintln(os.Stderr, "Warning: failed to update margin")
	}
	return err
}

// csvRunStatePath derives the replay state file from the live one, e.g.
// optimizer_state.json becomes optimizer_state_csv_run.json
func csvRunStatePath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "_csv_run" + ext
}
