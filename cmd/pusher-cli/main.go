// Command pusher-cli is an interactive client for channel-based pub/sub
// endpoints.
//
// It connects to an application endpoint, subscribes to public, private
// and presence channels and prints the events delivered on them. The
// full protocol exchange can be captured to a CBOR log file for offline
// inspection.
//
// Usage:
//
//	pusher-cli [flags]
//
// Flags:
//
//	-key string            Application key (required unless -config names one)
//	-config string         YAML configuration file path
//	-cluster string        Regional cluster name (e.g. "eu")
//	-host string           Endpoint host override
//	-ws-port int           Plaintext port override
//	-wss-port int          TLS port override
//	-insecure              Use the plaintext ws endpoint
//	-auth-endpoint string  HTTP endpoint for private/presence authorization
//	-log-file string       Capture protocol events to this CBOR file
//	-log-level string      Log level: debug, info, warn, error (default "info")
//
// Examples:
//
//	# Connect with an application key and subscribe interactively
//	pusher-cli -key 4PI_K3Y
//
//	# Use a config file and capture the protocol exchange
//	pusher-cli -config pusher.yaml -log-file session.cborlog
package main

import (
	"context"
	"flag"
	"fmt"
	stdlog "log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jesusruizlopez/pusher-java-client/cmd/pusher-cli/interactive"
	"github.com/jesusruizlopez/pusher-java-client/pkg/auth"
	"github.com/jesusruizlopez/pusher-java-client/pkg/client"
	"github.com/jesusruizlopez/pusher-java-client/pkg/log"
)

type cliConfig struct {
	APIKey       string
	ConfigFile   string
	Cluster      string
	Host         string
	WsPort       int
	WssPort      int
	Insecure     bool
	AuthEndpoint string
	LogFile      string
	LogLevel     string
}

var config cliConfig

func init() {
	flag.StringVar(&config.APIKey, "key", "", "Application key")
	flag.StringVar(&config.ConfigFile, "config", "", "YAML configuration file path")
	flag.StringVar(&config.Cluster, "cluster", "", "Regional cluster name")
	flag.StringVar(&config.Host, "host", "", "Endpoint host override")
	flag.IntVar(&config.WsPort, "ws-port", 0, "Plaintext port override")
	flag.IntVar(&config.WssPort, "wss-port", 0, "TLS port override")
	flag.BoolVar(&config.Insecure, "insecure", false, "Use the plaintext ws endpoint")
	flag.StringVar(&config.AuthEndpoint, "auth-endpoint", "", "HTTP endpoint for private/presence authorization")
	flag.StringVar(&config.LogFile, "log-file", "", "Capture protocol events to this CBOR file")
	flag.StringVar(&config.LogLevel, "log-level", "info", "Log level: debug, info, warn, error")
}

func main() {
	flag.Parse()

	setupLogging(config.LogLevel)

	apiKey, options, err := buildOptions()
	if err != nil {
		stdlog.Fatalf("Invalid configuration: %v", err)
	}
	if apiKey == "" {
		stdlog.Fatal("An application key is required (-key or a config file with api_key)")
	}

	var capture *log.FileLogger
	if config.LogFile != "" {
		capture, err = log.NewFileLogger(config.LogFile)
		if err != nil {
			stdlog.Fatalf("Cannot open log file: %v", err)
		}
		defer capture.Close()
		options.SetLogger(log.NewMultiLogger(capture, options.Logger()))
	}

	c, err := client.New(apiKey, options)
	if err != nil {
		stdlog.Fatalf("Cannot create client: %v", err)
	}

	shell, err := interactive.New(c)
	if err != nil {
		stdlog.Fatalf("Cannot start interactive mode: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	fmt.Printf("Endpoint: %s\n", options.BuildURL(apiKey))
	shell.Run(ctx, cancel)

	_ = c.Disconnect()
}

// buildOptions merges the config file (when given) with command line
// flags. Flags win over file values.
func buildOptions() (string, *client.Options, error) {
	apiKey := ""
	options := client.NewOptions()

	if config.ConfigFile != "" {
		fileKey, fileOptions, err := client.LoadOptions(config.ConfigFile)
		if err != nil {
			return "", nil, err
		}
		apiKey = fileKey
		options = fileOptions
	}

	if config.APIKey != "" {
		apiKey = config.APIKey
	}
	if config.Cluster != "" {
		options.SetCluster(config.Cluster)
	}
	if config.Host != "" {
		options.SetHost(config.Host)
	}
	if config.WsPort != 0 {
		options.SetWsPort(config.WsPort)
	}
	if config.WssPort != 0 {
		options.SetWssPort(config.WssPort)
	}
	if config.Insecure {
		options.SetEncrypted(false)
	}
	if config.AuthEndpoint != "" {
		options.SetAuthorizer(auth.NewHTTPAuthorizer(config.AuthEndpoint))
	}

	slogLogger := slog.Default()
	adapter := log.NewSlogAdapter(slogLogger)
	if options.Logger() == nil {
		options.SetLogger(adapter)
	}

	return apiKey, options, nil
}

// setupLogging configures slog according to the log level flag.
func setupLogging(level string) {
	var slogLevel slog.Level
	switch level {
	case "debug":
		slogLevel = slog.LevelDebug
	case "warn":
		slogLevel = slog.LevelWarn
	case "error":
		slogLevel = slog.LevelError
	default:
		slogLevel = slog.LevelInfo
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slogLevel})
	slog.SetDefault(slog.New(handler))
}
