// Package main is the entry point for the VerustCode application.
// VerustCode is a multi-tenant webhook-triggered AI code review service.
package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/verustcode/verustcode/consts"
	"github.com/verustcode/verustcode/internal/checkengine"
	"github.com/verustcode/verustcode/internal/config"
	"github.com/verustcode/verustcode/internal/database"
	"github.com/verustcode/verustcode/internal/intake"
	"github.com/verustcode/verustcode/internal/llmreview"
	"github.com/verustcode/verustcode/internal/orchestrator"
	"github.com/verustcode/verustcode/internal/queue"
	"github.com/verustcode/verustcode/internal/server"
	"github.com/verustcode/verustcode/internal/shared"
	"github.com/verustcode/verustcode/internal/store"
	"github.com/verustcode/verustcode/pkg/errors"
	"github.com/verustcode/verustcode/pkg/logger"
	"github.com/verustcode/verustcode/pkg/telemetry"

	// Import git provider implementations to register them
	_ "github.com/verustcode/verustcode/internal/git/providers"
)

// Build information - set via ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func init() {
	consts.Version = Version
	consts.BuildTime = BuildTime
	consts.GitCommit = GitCommit
}

var configPath string

var rootCmd = &cobra.Command{
	Use:   "verustcode",
	Short: "VerustCode - multi-tenant webhook-triggered AI code review service",
	Long: `VerustCode receives merge/pull request webhooks from Git providers,
runs a pluggable static check engine and an optional LLM review pass over
the diff, and records the result for each tenant's review runs.`,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the webhook intake server and review orchestrator",
	Run:   runServe,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("VerustCode %s\n", Version)
		fmt.Printf("  Build Time: %s\n", BuildTime)
		fmt.Printf("  Git Commit: %s\n", GitCommit)
	},
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path (default: use built-in defaults)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)

	serveCmd.Flags().String("host", "", "server host (overrides config)")
	serveCmd.Flags().Int("port", 0, "server port (overrides config)")
	serveCmd.Flags().Bool("debug", false, "enable debug mode")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// runServe starts the webhook intake server plus the review orchestrator
// worker pool (spec §4.8) in-process.
func runServe(cmd *cobra.Command, args []string) {
	consts.SetStartedAt(time.Now())

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if host, _ := cmd.Flags().GetString("host"); host != "" {
		cfg.Server.Host = host
	}
	if port, _ := cmd.Flags().GetInt("port"); port != 0 {
		cfg.Server.Port = port
	}
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		cfg.Server.Debug = true
		cfg.Logging.Level = "debug"
		cfg.Logging.Format = "text"
	}

	if validationErr := config.ValidateAuthConfig(cfg.Auth); validationErr != nil {
		fmt.Fprintf(os.Stderr, "\n[ERROR] Auth configuration validation failed\n")
		fmt.Fprintf(os.Stderr, "Error Code: %s\n", validationErr.Code)
		fmt.Fprintf(os.Stderr, "Error: %v\n\n", validationErr)
		fmt.Fprintf(os.Stderr, "Configure a signing secret in your config file:\n")
		fmt.Fprintf(os.Stderr, "  auth:\n    jwt_secret: \"<at least %d random characters>\"\n\n", config.MinJWTSecretLength)
		os.Exit(errors.ExitCodeConfigValidation)
	}

	if err := logger.Init(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting VerustCode", zap.String("version", Version))

	tel, err := telemetry.New(cfg.Telemetry)
	if err != nil {
		logger.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := tel.Shutdown(ctx); err != nil {
			logger.Error("Failed to shutdown telemetry", zap.Error(err))
		}
	}()

	if err := database.Init(); err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer database.Close()

	dataStore := store.NewStore(database.Get())

	providers, _ := shared.InitProviders(cfg)
	resolver := shared.ProviderResolver(providers)

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	q := queue.New(redisClient, cfg.Redis.Namespace)
	intakeSvc := intake.NewService(dataStore, q)

	ai := orchestrator.AIGate{Enabled: cfg.LLM.Enabled}
	if cfg.LLM.Enabled {
		clientCfg := llmreview.NewClientConfig(cfg.LLM.Provider).
			WithAPIKey(cfg.LLM.APIKey).
			WithDefaultModel(cfg.LLM.DefaultModel).
			WithDefaultTimeout(time.Duration(cfg.LLM.TimeoutSecs) * time.Second).
			WithMaxRetries(cfg.LLM.MaxRetries).
			WithRetryDelay(time.Duration(cfg.LLM.RetryDelay) * time.Second)

		client, err := llmreview.Create(cfg.LLM.Provider, clientCfg)
		if err != nil {
			logger.Warn("Failed to create LLM client, AI augmentation disabled",
				zap.String("provider", cfg.LLM.Provider), zap.Error(err))
			ai.Enabled = false
		} else {
			ai.Client = client
		}
	}

	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	concurrency := cfg.Orchestrator.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	workers := make([]*orchestrator.Worker, 0, concurrency)
	for i := 0; i < concurrency; i++ {
		w := orchestrator.NewWorker(dataStore, q, resolver, checkengine.DefaultRegistry(), ai)
		workers = append(workers, w)
		go w.Run(workerCtx)
	}
	defer func() {
		cancelWorkers()
		for _, w := range workers {
			w.Stop()
		}
	}()

	srv := server.New(cfg, dataStore, intakeSvc, resolver)
	srv.SetupRoutes()

	if err := srv.Start(); err != nil {
		logger.Fatal("Failed to start server", zap.Error(err))
	}

	logger.Info("VerustCode server is running", zap.String("address", cfg.Server.Address()))

	port := cfg.Server.Port
	logger.Info(fmt.Sprintf("  Local:   http://localhost:%d", port))
	if lanIP := getLocalIP(); lanIP != "" {
		logger.Info(fmt.Sprintf("  Network: http://%s:%d", lanIP, port))
	}

	srv.WaitForShutdown()

	logger.Info("VerustCode stopped")
}

// loadConfig loads configuration from a YAML file, falling back to built-in
// defaults when none is specified.
func loadConfig() (*config.Config, error) {
	if configPath == "" {
		return config.Default(), nil
	}
	return config.Load(configPath)
}

// getLocalIP returns the first non-loopback IPv4 address
func getLocalIP() string {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return ""
	}
	for _, addr := range addrs {
		if ipnet, ok := addr.(*net.IPNet); ok && !ipnet.IP.IsLoopback() {
			if ipnet.IP.To4() != nil {
				return ipnet.IP.String()
			}
		}
	}
	return ""
}
