// hattrick-mcp is a stdio MCP server automating hattrick.org through a
// headless browser: auto-login with persisted sessions, page scraping,
// interactive element discovery, and scripted UI actions.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/sela-labs/hattrick-mcp/pkg/browser"
	"github.com/sela-labs/hattrick-mcp/pkg/config"
	"github.com/sela-labs/hattrick-mcp/pkg/logging"
	"github.com/sela-labs/hattrick-mcp/pkg/tools"
)

const (
	serverName    = "hattrick-mcp"
	serverVersion = "1.0.0"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", serverName, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logging.Configure(filepath.Join(cfg.DataDir, "logs"))
	log, err := logging.NewLogger("server")
	if err != nil {
		// The fallback logger writes to stderr; keep going, stdout stays
		// reserved for the transport.
		log.Warnf("file logging unavailable: %v", err)
	}
	defer log.Close()

	engine, err := browser.NewEngine(cfg, log)
	if err != nil {
		return err
	}
	defer engine.Shutdown()

	if err := engine.Install(); err != nil {
		log.Warnf("browser install: %v", err)
	}

	server := mcp.NewServer(&mcp.Implementation{
		Name:    serverName,
		Version: serverVersion,
	}, nil)

	toolbox := tools.NewToolbox(engine, cfg, log)
	toolbox.Register(server)

	log.Infof("starting %s %s (data dir %s)", serverName, serverVersion, cfg.DataDir)
	return server.Run(context.Background(), &mcp.StdioTransport{})
}
