package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/ironsheep/stroke-tools-mcp/internal/detection"
	"github.com/ironsheep/stroke-tools-mcp/internal/mapping"
	"github.com/ironsheep/stroke-tools-mcp/internal/pipeline"
	"github.com/ironsheep/stroke-tools-mcp/internal/server"
	"github.com/ironsheep/stroke-tools-mcp/internal/workspace"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("stroke-tools-mcp %s (protocol server %s)\n", Version, server.Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			printHelp()
			return
		case "extract":
			if len(os.Args) != 3 {
				fmt.Fprintln(os.Stderr, "usage: stroke-mcp extract <photo>")
				os.Exit(2)
			}
			if err := extract(newLogger(), os.Args[2]); err != nil {
				fmt.Fprintf(os.Stderr, "extract: %v\n", err)
				os.Exit(1)
			}
			return
		}
	}

	// Logs go to stderr; stdout is for the MCP protocol.
	logger := newLogger()
	logger.Debug("starting", "version", Version, "built", BuildTime, "commit", GitCommit)

	cfg, err := workspace.FromEnv()
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	srv := server.New(cfg, server.WithLogger(logger))
	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Println("stroke-tools-mcp - MCP server that turns photos of a marked drawing surface into pen strokes")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  stroke-mcp                  Serve MCP over stdin/stdout")
	fmt.Println("  stroke-mcp extract <photo>  Print the strokes in a photo as JSON")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --version, -v    Print version information")
	fmt.Println("  --help, -h       Print this help message")
	fmt.Println()
	fmt.Println("Environment variables:")
	fmt.Println("  STROKE_MCP_CONFIG=<file.yaml>      Workspace, tuning and detector settings")
	fmt.Println("  STROKE_MCP_DICTIONARY=<file.yml>   Marker dictionary (OpenCV YAML layout)")
	fmt.Println("  STROKE_MCP_LOG_LEVEL=debug         Enable debug logging")
	fmt.Println()
	fmt.Println("Configure the server in your MCP client (e.g., Claude Desktop).")
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(os.Getenv("STROKE_MCP_LOG_LEVEL")) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

type extractOutput struct {
	FrameID string                   `json:"frame_id"`
	Warning string                   `json:"warning,omitempty"`
	Summary *mapping.Summary         `json:"summary"`
	Strokes []mapping.PhysicalStroke `json:"strokes_mm"`
}

// extract runs the pipeline once on path and writes the strokes to stdout.
func extract(logger *slog.Logger, path string) error {
	cfg, err := workspace.FromEnv()
	if err != nil {
		return err
	}
	d, err := detection.NewArucoDetectorFromConfig(cfg.Detector)
	if err != nil {
		return err
	}
	e, err := pipeline.New(cfg.Workspace, cfg.Tuning, d, pipeline.WithLogger(logger))
	if err != nil {
		return err
	}

	res, err := e.ExtractFile(path)
	if err != nil {
		return err
	}

	out := extractOutput{
		FrameID: res.FrameID.String(),
		Summary: mapping.Measure(res.Physical),
		Strokes: res.Physical,
	}
	if res.Warning != nil {
		out.Warning = res.Warning.Error()
		logger.Warn("empty result", "path", path, "warning", res.Warning)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
