package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"jira-mcp-server/internal/application"
	"jira-mcp-server/internal/domain"
	"jira-mcp-server/internal/infrastructure"
)

var (
	transportType string
	httpHost      string
	httpPort      int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Starts the MCP server and serves tool calls until interrupted.

With the stdio transport the server reads JSON-RPC requests from standard
input and writes responses to standard output, one per line. With the http
transport it serves the MCP endpoints and Prometheus metrics over HTTP.`,
	SilenceUsage: true,
	RunE:         runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&transportType, "transport", "stdio", "transport to serve on: stdio or http")
	serveCmd.Flags().StringVar(&httpHost, "host", "localhost", "bind host for the http transport")
	serveCmd.Flags().IntVar(&httpPort, "port", 8080, "bind port for the http transport")
}

// buildServer wires the configuration into a ready-to-start server:
// authenticated HTTP client, REST clients for both API families, cache,
// metrics, tool handlers, router, and transport.
func buildServer(config *domain.Config, transportType, host string, port int) (*application.Server, error) {
	metrics := infrastructure.NewMetricsCollector()

	httpClient, err := domain.NewAuthenticatedClient(config)
	if err != nil {
		return nil, fmt.Errorf("failed to build authenticated client: %w", err)
	}

	rest := infrastructure.NewRestClient(config, httpClient, metrics)
	jiraClient := infrastructure.NewJiraClient(rest)
	agileClient := infrastructure.NewAgileClient(rest)

	cache := infrastructure.NewMemoryCache(config.CacheTTL(), metrics)
	mapper := domain.NewResponseMapper(config.ResponseFormat)

	router := application.NewRequestRouter(
		application.NewIssueHandler(jiraClient, config, mapper),
		application.NewCatalogHandler(jiraClient, cache, config, mapper),
		application.NewAgileHandler(agileClient, config, mapper),
	)

	var transport domain.Transport
	switch transportType {
	case "stdio":
		transport = domain.NewStdioTransport()
	case "http":
		transport = domain.NewHTTPTransportWithMetrics(host, port, metrics.Handler())
	default:
		return nil, fmt.Errorf("invalid transport type: %s (expected stdio or http)", transportType)
	}

	return application.NewServer(transport, router, config, metrics), nil
}

func runServe(cmd *cobra.Command, args []string) error {
	config, err := domain.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	server, err := buildServer(config, transportType, httpHost, httpPort)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Graceful shutdown on interrupt
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	errChan := make(chan error, 1)
	go func() {
		if err := server.Start(ctx); err != nil {
			errChan <- fmt.Errorf("server failed to start: %w", err)
		}
	}()

	if transportType == "stdio" {
		log.Println("MCP server started (stdio transport)")
	} else {
		log.Printf("MCP server started (HTTP transport on %s:%d)", httpHost, httpPort)
	}

	select {
	case sig := <-sigChan:
		log.Printf("Received signal: %v", sig)
		cancel()
	case err := <-errChan:
		cancel()
		if closeErr := server.Close(); closeErr != nil {
			log.Printf("Error closing server: %v", closeErr)
		}
		return err
	}

	if err := server.Close(); err != nil {
		return fmt.Errorf("error during server shutdown: %w", err)
	}

	log.Println("Server shutdown complete")
	return nil
}
