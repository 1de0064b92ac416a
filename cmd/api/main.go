package main

import (
	"finflow/api"
	"finflow/internal/calculator"
	"finflow/internal/config"
	"finflow/internal/domain"
	"finflow/internal/logger"
	"finflow/internal/metrics"
	"finflow/internal/repository"
	"finflow/internal/service"
	"finflow/internal/util"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{Use: "finflow", Short: "FinFlow portfolio analysis server"}
	root.AddCommand(serveCmd())
	root.AddCommand(inspectCmd())
	if err := root.Execute(); err != nil {
		log.Fatal(err)
	}
}

func loadConfig(path string) config.Config {
	if path == "" {
		cfg := config.Default()
		cfg.ApplyEnv()
		return cfg
	}
	cfg, err := config.LoadFile(path)
	if err != nil {
		log.Fatal(fmt.Errorf("failed to load config %s: %w", path, err))
	}
	return cfg
}

func serveCmd() *cobra.Command {
	var (
		configPath string
		port       int
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the analysis API server",
		Run: func(cmd *cobra.Command, args []string) {
			cfg := loadConfig(configPath)
			if port != 0 {
				cfg.Port = port
			}

			apiHandler, err := initializeDependencies(cfg)
			if err != nil {
				log.Fatal(err)
			}
			if err := apiHandler.StartApi(cfg.Port, cfg.CorsOrigins); err != nil {
				log.Fatal(err)
			}
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "path to config file")
	cmd.Flags().IntVar(&port, "port", 0, "override listen port")
	return cmd
}

func inspectCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Load and summarize the evaluation artifact",
		Run: func(cmd *cobra.Command, args []string) {
			cfg := loadConfig(configPath)
			artifact, err := loadArtifact(cfg.ArtifactDir)
			if err != nil {
				log.Fatal(err)
			}
			util.Pprint(map[string]interface{}{
				"bundle":     cfg.ArtifactDir,
				"steps":      artifact.Steps(),
				"symbols":    len(artifact.Symbols),
				"testPeriod": fmt.Sprintf("%s..%s", artifact.TestStart, artifact.TestEnd),
				"metrics":    artifact.Metrics,
				"avgCrisis":  artifact.AvgCrisisLevel,
			})
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "path to config file")
	return cmd
}

func loadArtifact(bundleDir string) (*domain.PrecomputedArtifact, error) {
	artifactRepository := repository.NewArtifactRepository(bundleDir)
	raw, err := artifactRepository.Load()
	if err != nil {
		return nil, err
	}
	return calculator.NormalizeArtifact(raw), nil
}

func initializeDependencies(cfg config.Config) (*api.ApiHandler, error) {
	sugar := logger.New()
	sugar.Infow("starting finflow", "env", os.Getenv("FINFLOW_ENV"), "bundle", cfg.ArtifactDir)

	artifact, err := loadArtifact(cfg.ArtifactDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load artifact: %w", err)
	}
	sugar.Infow("artifact loaded", "steps", artifact.Steps(), "symbols", len(artifact.Symbols))

	collector, err := metrics.NewCollector()
	if err != nil {
		return nil, fmt.Errorf("failed to build metrics collector: %w", err)
	}

	marketDataRepository := repository.NewMarketDataRepository(cfg.ProviderTimeout())
	benchmarkService := service.NewBenchmarkService(marketDataRepository, collector)
	analysisService := service.NewAnalysisService(artifact, cfg.ArtifactDir, benchmarkService, collector)
	marketService := service.NewMarketService(marketDataRepository, collector)

	return &api.ApiHandler{
		AnalysisService: analysisService,
		MarketService:   marketService,
		Collector:       collector,
		Logger:          sugar,
	}, nil
}
