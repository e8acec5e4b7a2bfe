// Package main provides the entry point for the forecasting service.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/blazesportsintel/forecast/internal/artifacts"
	"github.com/blazesportsintel/forecast/internal/calibration"
	"github.com/blazesportsintel/forecast/internal/config"
	"github.com/blazesportsintel/forecast/internal/database"
	"github.com/blazesportsintel/forecast/internal/forecast"
	"github.com/blazesportsintel/forecast/internal/health"
	"github.com/blazesportsintel/forecast/internal/kvstore"
	"github.com/blazesportsintel/forecast/internal/logger"
	"github.com/blazesportsintel/forecast/internal/metrics"
	"github.com/blazesportsintel/forecast/internal/provider"
	"github.com/blazesportsintel/forecast/internal/registry"
	"github.com/blazesportsintel/forecast/internal/repository"
	"github.com/blazesportsintel/forecast/internal/scheduler"
	"github.com/blazesportsintel/forecast/internal/stream"
	"github.com/blazesportsintel/forecast/internal/tracing"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
)

var (
	configFile string
	cfg        *config.Config
	appLog     *logrus.Logger
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")

	trainCmd.Flags().String("sport", "", "Sport to train a model for (default: all configured sports)")
	simulateCmd.Flags().String("league", "mlb", "League to simulate")
	simulateCmd.Flags().Bool("odds", false, "Include heuristic odds bands")
	dashboardCmd.Flags().String("sport", "", "Restrict the dashboard to one sport")

	rootCmd.AddCommand(serveCmd, trainCmd, simulateCmd, dashboardCmd)
}

var rootCmd = &cobra.Command{
	Use:   "forecast",
	Short: "Blaze sports forecasting service",
	Long:  `Runs in-game win probability streams, season simulations and the model training pipeline.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.LoadWithDefaults(configFile)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
			region := os.Getenv("AWS_REGION")
			secretName := os.Getenv("AWS_SECRET_NAME")
			if region == "" || secretName == "" {
				return fmt.Errorf("AWS_REGION and AWS_SECRET_NAME must be set when AWS_SECRETS_ENABLED is true")
			}
			if err := config.LoadSecretsFromAWS(cfg, region, secretName); err != nil {
				return fmt.Errorf("failed to load secrets: %w", err)
			}
		}

		if err := config.Validate(cfg); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		appLog = logger.NewLogger(cfg.App.LogLevel)
		if cfg.IsProduction() {
			appLog.SetFormatter(&logrus.JSONFormatter{})
		}
		return nil
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

// components bundles everything a command can wire up. Fields that a command
// does not need stay nil; close releases whatever was opened.
type components struct {
	db      *database.DB
	store   *kvstore.RedisStore
	service *forecast.Service
}

func (c *components) close() {
	if c.store != nil {
		if err := c.store.Close(); err != nil {
			appLog.WithError(err).Error("Failed to close cache connection")
		}
	}
	if c.db != nil {
		if err := c.db.Close(context.Background()); err != nil {
			appLog.WithError(err).Error("Failed to close database connection")
		}
	}
}

func setupComponents(ctx context.Context) (*components, error) {
	db, err := database.NewDB(ctx, &cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	store, err := kvstore.NewRedisStore(ctx, &cfg.Redis, appLog)
	if err != nil {
		db.Close(ctx)
		return nil, fmt.Errorf("failed to connect to cache: %w", err)
	}

	artifactStore, err := artifacts.NewS3Store(ctx, &cfg.Artifacts)
	if err != nil {
		store.Close()
		db.Close(ctx)
		return nil, fmt.Errorf("failed to initialize artifact store: %w", err)
	}

	repos := repository.NewRepositories(db)
	client := provider.NewClient(&cfg.Providers, appLog)

	registryManager := registry.NewManager(
		repos.Models,
		repos.Jobs,
		repos.Historical,
		artifactStore,
		&cfg.Training,
		logger.NewTrainingLogger(appLog),
	)
	tracker := calibration.NewTracker(repos.Predictions, appLog)
	streamManager := stream.NewManager(store, client, &cfg.Stream, logger.NewStreamLogger(appLog))

	svc := forecast.NewService(
		registryManager,
		tracker,
		streamManager,
		client,
		client,
		store,
		&cfg.Simulation,
		appLog,
	)

	return &components{db: db, store: store, service: svc}, nil
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the forecasting service",
	Long:  `Starts the scheduler for nightly training and live stream updates, plus the health and metrics endpoints.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		comps, err := setupComponents(ctx)
		if err != nil {
			return err
		}
		defer comps.close()

		appLog.WithFields(logrus.Fields{
			"environment": cfg.App.Environment,
			"version":     Version,
		}).Info("Forecasting service starting")

		if os.Getenv("AWS_XRAY_ENABLED") == "true" {
			daemonAddr := os.Getenv("AWS_XRAY_DAEMON_ADDRESS")
			if daemonAddr == "" {
				daemonAddr = "localhost:2000"
			}
			if err := tracing.Initialize(tracing.Config{
				ServiceName: cfg.App.Name,
				Enabled:     true,
				DaemonAddr:  daemonAddr,
			}, appLog); err != nil {
				appLog.WithError(err).Warn("Failed to initialize X-Ray tracing")
			}
		}

		sched := scheduler.NewScheduler(appLog)
		if err := sched.ScheduleTraining(cfg.Training.Schedule, comps.service, cfg.Training.Sports); err != nil {
			return fmt.Errorf("failed to schedule training: %w", err)
		}
		if err := sched.ScheduleStreamUpdates(cfg.Stream.UpdateIntervalSeconds, comps.service); err != nil {
			return fmt.Errorf("failed to schedule stream updates: %w", err)
		}
		if err := sched.Start(); err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}

		var metricsHandler = metrics.Handler()
		if !cfg.Metrics.Enabled {
			metricsHandler = nil
		}
		healthServer := health.NewServer(health.Config{
			ServiceName:    cfg.App.Name,
			Version:        Version,
			Commit:         GitCommit,
			Port:           strconv.Itoa(cfg.Metrics.Port),
			Logger:         appLog,
			DB:             comps.db,
			MetricsHandler: metricsHandler,
			MetricsPath:    cfg.Metrics.Path,
		})
		if err := healthServer.Start(ctx); err != nil {
			return fmt.Errorf("failed to start health server: %w", err)
		}
		healthServer.SetReady(true)

		appLog.WithFields(logrus.Fields{
			"training_schedule": cfg.Training.Schedule,
			"stream_interval_s": cfg.Stream.UpdateIntervalSeconds,
			"next_run":          sched.GetNextRun(),
		}).Info("Forecasting service running")

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		sig := <-sigChan
		appLog.WithField("signal", sig).Info("Shutdown signal received")

		healthServer.SetReady(false)
		cancel()
		if err := sched.Stop(); err != nil {
			appLog.WithError(err).Error("Error during scheduler shutdown")
		}
		if err := healthServer.Shutdown(); err != nil {
			appLog.WithError(err).Error("Error during health server shutdown")
		}

		appLog.Info("Forecasting service shut down")
		return nil
	},
}

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Run one model training pass",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), time.Hour)
		defer cancel()

		comps, err := setupComponents(ctx)
		if err != nil {
			return err
		}
		defer comps.close()

		sports := cfg.Training.Sports
		if sport, _ := cmd.Flags().GetString("sport"); sport != "" {
			sports = []string{sport}
		}

		for _, sport := range sports {
			if err := comps.service.TrainModel(ctx, sport); err != nil {
				appLog.WithError(err).WithField("sport", sport).Error("Training run failed")
				continue
			}
			appLog.WithField("sport", sport).Info("Training run completed")
		}
		return nil
	},
}

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run season win-total simulations for a league",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		comps, err := setupComponents(ctx)
		if err != nil {
			return err
		}
		defer comps.close()

		league, _ := cmd.Flags().GetString("league")
		results, err := comps.service.RunSeasonSimulations(ctx, league)
		if err != nil {
			return fmt.Errorf("simulation failed: %w", err)
		}

		names := make([]string, 0, len(results))
		for name := range results {
			names = append(names, name)
		}
		sort.Slice(names, func(i, j int) bool {
			return results[names[i]].MeanWins > results[names[j]].MeanWins
		})

		fmt.Printf("\n%-24s %8s %6s %6s %6s\n", "TEAM", "MEAN", "MODE", "P5", "P95")
		for _, name := range names {
			r := results[name]
			fmt.Printf("%-24s %8.1f %6d %6d %6d\n", r.TeamName, r.MeanWins, r.ModeWins, r.P5, r.P95)
		}

		if withOdds, _ := cmd.Flags().GetBool("odds"); withOdds {
			bands, err := comps.service.ProjectOddsBands(ctx, league)
			if err != nil {
				return fmt.Errorf("odds projection failed: %w", err)
			}
			fmt.Printf("\n%-24s %8s %10s %14s\n", "TEAM", "MEAN", "PLAYOFF", "CHAMPIONSHIP")
			for _, band := range bands {
				fmt.Printf("%-24s %8.1f %9.1f%% %13.2f%%\n",
					band.TeamName, band.MeanWins, band.PlayoffOdds*100, band.ChampionshipOdds*100)
			}
			if len(bands) > 0 {
				fmt.Printf("\n%s\n", bands[0].Disclaimer)
			}
		}
		return nil
	},
}

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Print the prediction performance dashboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		comps, err := setupComponents(ctx)
		if err != nil {
			return err
		}
		defer comps.close()

		sport, _ := cmd.Flags().GetString("sport")
		dashboard, err := comps.service.GetPerformanceDashboard(ctx, sport)
		if err != nil {
			return fmt.Errorf("dashboard failed: %w", err)
		}

		out, err := json.MarshalIndent(dashboard, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	},
}
