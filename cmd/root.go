// Package cmd holds the CLI surface of the flight search server.
package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/skyhop/flightsearch/config"
	"github.com/skyhop/flightsearch/log"
	"github.com/skyhop/flightsearch/mcp"
	"github.com/skyhop/flightsearch/providers/serpapi"
	"github.com/skyhop/flightsearch/tools"
)

var (
	connectionType string
	port           int
	logLevel       string
)

var rootCmd = &cobra.Command{
	Use:          "flightsearch",
	Short:        "MCP server exposing flight search as a tool",
	Long:         `flightsearch serves the Model Context Protocol over stdio (default) or HTTP, exposing the search_flights and server_status tools backed by SerpAPI Google Flights.`,
	SilenceUsage: true,
	RunE:         run,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.Flags().StringVar(&connectionType, "connection-type", "stdio", "transport to serve on: stdio or http")
	rootCmd.Flags().IntVar(&port, "port", 0, "HTTP port (overrides config)")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "", "log level (overrides config)")
}

func run(cmd *cobra.Command, args []string) error {
	// Load .env if present
	_ = godotenv.Load()

	log.Init()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	level := cfg.Log.Level
	if logLevel != "" {
		level = logLevel
	}
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	log.SetLevel(parsed)

	client := serpapi.NewClient(cfg.SerpAPI.BaseURL, cfg.SerpAPI.Currency, cfg.SerpAPI.TimeoutSeconds)

	registry := tools.NewRegistry()
	registry.Register(tools.NewFlightTool(client, cfg.SerpAPI.FlightLimit))
	registry.Register(tools.NewStatusTool(mcp.ServerName, mcp.ServerVersion))

	server := mcp.NewServer(registry)
	ctx := cmd.Context()

	switch connectionType {
	case "stdio":
		return mcp.NewStdioTransport(server, os.Stdin, os.Stdout).Run(ctx)
	case "http":
		p := cfg.Server.Port
		if port != 0 {
			p = port
		}
		return mcp.NewHTTPServer(server, p).Run(ctx)
	default:
		return fmt.Errorf("unknown connection type %q (expected stdio or http)", connectionType)
	}
}
