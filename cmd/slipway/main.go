package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"slipway/internal/cli"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"

	debug = false
	quiet = false

	logLevel = zap.NewAtomicLevelAt(zap.ErrorLevel)
)

func main() {
	// A .env file lets local runs use the same variables CI injects.
	_ = godotenv.Load()
	cli.ReloadCLIConfig()

	logger, err := newConsoleLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	initCommands(logger)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "slipway",
	Short: "Container image build and promotion CLI",
	Long: `Slipway builds container images and moves them between registries:
- Build images from a Dockerfile, including multi-platform buildx builds
- Push builds to GHCR or any other OCI registry
- Promote an existing image to new tags or registries without rebuilding
- Inspect remote manifests and verify promotions by digest`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Set debug mode globally so logStructuredError can check it
		cli.SetDebugMode(debug)
		if debug {
			logLevel.SetLevel(zap.DebugLevel)
		}
		cli.DefaultPrinter.Quiet = quiet
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug mode with structured error logging")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress progress output")
}

func initCommands(logger *zap.Logger) {
	rootCmd.AddCommand(cli.NewBuildCmd(logger))
	rootCmd.AddCommand(cli.NewPromoteCmd(logger))
	rootCmd.AddCommand(cli.NewLoginCmd(logger))
	rootCmd.AddCommand(cli.NewInspectCmd(logger))
}

// newConsoleLogger returns a human-friendly console logger with timestamps.
// The level starts at Error so only structured error logs show; --debug
// raises it to Debug through the shared atomic level.
func newConsoleLogger() (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.Level = logLevel
	cfg.EncoderConfig = zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		NameKey:        "",
		CallerKey:      "",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalColorLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
	}
	cfg.OutputPaths = []string{"stdout"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.DisableCaller = true
	cfg.DisableStacktrace = true
	return cfg.Build()
}
