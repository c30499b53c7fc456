// Package main runs the CDP bridge: an MCP server on stdio that drives a
// browser the user already has open, reached over the Chrome DevTools
// Protocol.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	cdp "github.com/entrhq/cdp-bridge/pkg/browser"
	"github.com/entrhq/cdp-bridge/pkg/config"
	"github.com/entrhq/cdp-bridge/pkg/logging"
	"github.com/entrhq/cdp-bridge/pkg/tools/browser"
)

const version = "0.1.0" // Version of the CDP bridge

// Flags holds the command line options.
type Flags struct {
	ConfigPath  string
	Endpoint    string
	ShowVersion bool
	ListTabs    bool
}

func main() {
	flags := parseFlags()

	if flags.ShowVersion {
		fmt.Printf("cdp-bridge v%s\n", version)
		return
	}

	cfg, err := loadConfig(flags)
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, flags); err != nil {
		stop()
		log.Fatalf("Application error: %v", err)
	}
}

// parseFlags parses command line flags
func parseFlags() *Flags {
	flags := &Flags{}

	flag.StringVar(&flags.ConfigPath, "config", "", "Path to a YAML configuration file (optional)")
	flag.StringVar(&flags.Endpoint, "endpoint", "", "Browser DevTools endpoint (overrides config and "+config.EnvEndpoint+")")
	flag.BoolVar(&flags.ShowVersion, "version", false, "Show version and exit")
	flag.BoolVar(&flags.ListTabs, "list-tabs", false, "Print the browser's tabs and the detected active tab, then exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "cdp-bridge - browser tools for MCP clients over the DevTools protocol\n\n")
		fmt.Fprintf(os.Stderr, "Usage: cdp-bridge [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  %s    Browser DevTools endpoint (default %s)\n", config.EnvEndpoint, config.DefaultEndpoint)
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  google-chrome --remote-debugging-port=9222 &\n")
		fmt.Fprintf(os.Stderr, "  cdp-bridge                                   # Serve MCP on stdio\n")
		fmt.Fprintf(os.Stderr, "  cdp-bridge -endpoint http://127.0.0.1:9333\n")
		fmt.Fprintf(os.Stderr, "  cdp-bridge -list-tabs                        # Check what the bridge sees\n")
	}

	flag.Parse()
	return flags
}

func loadConfig(flags *Flags) (*config.Config, error) {
	cfg, err := config.Load(flags.ConfigPath)
	if err != nil {
		return nil, err
	}
	if flags.Endpoint != "" {
		cfg.Endpoint = flags.Endpoint
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// run wires the browser session into the requested mode
func run(ctx context.Context, cfg *config.Config, flags *Flags) error {
	if cfg.Logging.Dir != "" {
		logging.SetDirectory(cfg.Logging.Dir)
	}
	logging.SetLevel(logging.ParseLevel(cfg.Logging.Level))

	// On failure NewLogger still returns a logger writing to stderr.
	logger, _ := logging.NewLogger("cdp-bridge")
	defer logger.Close()

	driver := cdp.NewPlaywrightDriver(logger)
	session := cdp.NewSession(driver, cdp.ConnectionOptions{
		Endpoint:          cfg.Endpoint,
		Timeout:           cfg.ConnectTimeout,
		IgnoreHTTPSErrors: cfg.IgnoreHTTPSErrors,
	}, logger)
	exec := browser.NewExecutor(session, browser.Options{
		NavigationTimeout: cfg.NavigationTimeout,
		WaitUntil:         cfg.WaitUntil,
	}, logger)
	defer exec.Shutdown()

	if flags.ListTabs {
		return listTabs(ctx, exec, cfg.Endpoint)
	}

	server := mcp.NewServer(&mcp.Implementation{Name: "cdp-bridge", Version: version}, nil)
	browser.Register(server, exec)

	logger.Infof("Serving MCP on stdio, browser endpoint %s (log session %s)", cfg.Endpoint, logger.SessionID())
	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
		return fmt.Errorf("mcp server stopped: %w", err)
	}
	logger.Infof("MCP server stopped")
	return nil
}
