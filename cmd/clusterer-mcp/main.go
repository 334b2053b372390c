package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/landa/character-clusterer/internal/config"
	"github.com/landa/character-clusterer/internal/ocr"
	"github.com/landa/character-clusterer/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Handle --version and -v flags
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("clusterer-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			fmt.Printf("  Tesseract:  %s\n", ocr.Version())
			return
		case "--help", "-h", "help":
			fmt.Println("clusterer-mcp - MCP server that groups character boxes into words")
			fmt.Println()
			fmt.Println("Usage: clusterer-mcp [options]")
			fmt.Println()
			fmt.Println("Options:")
			fmt.Println("  --version, -v    Print version information")
			fmt.Println("  --help, -h       Print this help message")
			fmt.Println()
			fmt.Println("Configuration is read from $HOME/.config/character-clusterer/config.yaml")
			fmt.Println("or the file named by CLUSTERER_CONFIG.")
			fmt.Println()
			fmt.Println("Environment variables:")
			fmt.Println("  CLUSTERER_LOG_LEVEL=debug       Log every merge")
			fmt.Println("  CLUSTERER_THRESHOLD=20          Default merge threshold")
			fmt.Println("  CLUSTERER_VERTICAL_SCALE=3      Weight of vertical separation")
			fmt.Println("  CLUSTERER_MAX_ITERATIONS=1000   Merge iteration cap")
			fmt.Println("  CLUSTERER_METRIC=edge           edge or center")
			fmt.Println("  CLUSTERER_TOP_EDGE=min-bottom   min-bottom or min-top")
			fmt.Println("  CLUSTERER_OCR_LANGUAGE=eng      Tesseract language")
			fmt.Println()
			fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
			return
		}
	}

	// Logging goes to stderr; stdout is for MCP protocol
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, NoColor: true}).With().Timestamp().Logger()

	cfg, err := config.LoadOrDefault(os.Getenv("CLUSTERER_CONFIG"))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	logger = logger.Level(cfg.Level())

	logger.Debug().
		Str("version", Version).
		Str("built", BuildTime).
		Str("commit", GitCommit).
		Float64("threshold", cfg.Threshold).
		Msg("starting clusterer MCP server")

	srv := server.New(cfg, logger)
	if err := srv.Run(); err != nil {
		logger.Fatal().Err(err).Msg("server error")
	}
}
