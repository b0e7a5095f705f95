// Command imlogin signs in to a login server from the terminal.
//
// It prompts for a username and password, sends them to the server and
// prints the result. The exit status is 0 on success, 1 when the server
// rejects the credentials and 2 on any connection problem.
//
// Usage:
//
//	imlogin [flags]
//
// Flags:
//
//	-config string        YAML configuration file
//	-host string          Server host (default "127.0.0.1")
//	-port int             Server port (default 10001)
//	-timeout duration     Response timeout (default 5s)
//	-dial-timeout dur     Connect timeout (default: -timeout)
//	-framing string       Reply framing: raw or line (default "raw")
//	-discover             Find the server via mDNS
//	-interface string     Network interface for discovery
//	-user string          Username (prompted if empty)
//	-protocol-log string  Write the attempt trace to this file
//	-log-level string     debug, info, warn, error (default "info")
//	-interactive          Keep prompting until login succeeds
//
// Examples:
//
//	# Log in against a local stub
//	imlogin -user alice
//
//	# Discover the server and record a trace
//	imlogin -discover -protocol-log attempts.alog
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/awnumar/memguard"

	"github.com/imdesk/imclient/internal/config"
	"github.com/imdesk/imclient/pkg/discovery"
	"github.com/imdesk/imclient/pkg/dispatch"
	protolog "github.com/imdesk/imclient/pkg/log"
	"github.com/imdesk/imclient/pkg/session"
	"github.com/imdesk/imclient/pkg/transport"
)

// Flags holds command-line values. Only flags that were set override
// the configuration file.
type Flags struct {
	ConfigFile  string
	Host        string
	Port        int
	Timeout     time.Duration
	DialTimeout time.Duration
	Framing     string
	Discover    bool
	Interface   string
	User        string
	ProtocolLog string
	LogLevel    string
	Interactive bool
}

var flags Flags

func init() {
	def := config.Default()
	flag.StringVar(&flags.ConfigFile, "config", "", "YAML configuration file")
	flag.StringVar(&flags.Host, "host", def.Server.Host, "Server host")
	flag.IntVar(&flags.Port, "port", def.Server.Port, "Server port")
	flag.DurationVar(&flags.Timeout, "timeout", def.Timeout, "Response timeout")
	flag.DurationVar(&flags.DialTimeout, "dial-timeout", 0, "Connect timeout (default: -timeout)")
	flag.StringVar(&flags.Framing, "framing", def.Framing, "Reply framing: raw or line")
	flag.BoolVar(&flags.Discover, "discover", false, "Find the server via mDNS")
	flag.StringVar(&flags.Interface, "interface", "", "Network interface for discovery")
	flag.StringVar(&flags.User, "user", "", "Username (prompted if empty)")
	flag.StringVar(&flags.ProtocolLog, "protocol-log", "", "Write the attempt trace to this file")
	flag.StringVar(&flags.LogLevel, "log-level", def.LogLevel, "Log level: debug, info, warn, error")
	flag.BoolVar(&flags.Interactive, "interactive", false, "Keep prompting until login succeeds")
}

func main() {
	flag.Parse()
	os.Exit(run())
}

func run() int {
	defer memguard.Purge()

	cfg, err := loadConfig(flags, setFlags())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitUsage
	}

	level, _ := config.ParseLevel(cfg.LogLevel)
	logger := setupLogging(level)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Discovery.Enabled {
		if err := discoverServer(ctx, cfg, logger); err != nil {
			errorColor.Fprintf(os.Stderr, "Connection error: %v\n", err)
			return exitConnErr
		}
	}

	clientCfg := cfg.ClientConfig()
	attemptLog, closeLog, err := protocolLogger(cfg.ProtocolLog, logger, level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitUsage
	}
	defer closeLog()
	clientCfg.Logger = attemptLog

	client, err := transport.NewClient(clientCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitUsage
	}

	p, err := newPrompter(flags.User)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitUsage
	}
	defer p.Close()

	log.Printf("Logging in to %s", client.Address())

	sess := session.New(client, newConsoleNotifier(p.Stdout()), session.WithLogger(logger), session.WithTrace(attemptLog))
	code := exitConnErr
	for {
		outcome, err := attempt(ctx, p, sess)
		if err != nil {
			return code
		}
		code = exitCode(outcome)
		if outcome.IsSuccess() || !flags.Interactive || ctx.Err() != nil {
			return code
		}
	}
}

// attempt prompts once and runs one login.
func attempt(ctx context.Context, p *prompter, sess *session.LoginSession) (dispatch.Outcome, error) {
	sealed, err := p.Credentials()
	if err != nil {
		return dispatch.Outcome{}, err
	}
	defer sealed.Destroy()

	creds, err := sealed.Open()
	if err != nil {
		return dispatch.Outcome{}, err
	}
	if err := sess.Submit(ctx, creds); err != nil {
		return dispatch.Outcome{}, err
	}
	return sess.Wait(context.Background())
}

// setFlags returns the names of flags given on the command line.
func setFlags() map[string]bool {
	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return set
}

// loadConfig reads the config file, if any, and applies explicit flags.
func loadConfig(f Flags, set map[string]bool) (*config.Config, error) {
	cfg := config.Default()
	if f.ConfigFile != "" {
		var err error
		if cfg, err = config.Load(f.ConfigFile); err != nil {
			return nil, err
		}
	}

	if set["host"] {
		cfg.Server.Host = f.Host
	}
	if set["port"] {
		cfg.Server.Port = f.Port
	}
	if set["timeout"] {
		cfg.Timeout = f.Timeout
	}
	if set["dial-timeout"] {
		cfg.DialTimeout = f.DialTimeout
	}
	if set["framing"] {
		cfg.Framing = f.Framing
	}
	if set["discover"] {
		cfg.Discovery.Enabled = f.Discover
	}
	if set["interface"] {
		cfg.Discovery.Interface = f.Interface
	}
	if set["protocol-log"] {
		cfg.ProtocolLog = f.ProtocolLog
	}
	if set["log-level"] {
		cfg.LogLevel = f.LogLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setupLogging(level slog.Level) *slog.Logger {
	log.SetFlags(log.Ltime | log.Lmicroseconds)
	if level <= slog.LevelDebug {
		log.SetFlags(log.Ltime | log.Lmicroseconds | log.Lshortfile)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}

// protocolLogger builds the attempt trace sink: a CBOR file when path is
// set, plus slog output at debug level.
func protocolLogger(path string, logger *slog.Logger, level slog.Level) (protolog.Logger, func(), error) {
	var sinks []protolog.Logger
	closeFn := func() {}

	if path != "" {
		fl, err := protolog.NewFileLogger(path)
		if err != nil {
			return nil, nil, fmt.Errorf("open protocol log: %w", err)
		}
		sinks = append(sinks, fl)
		closeFn = func() { _ = fl.Close() }
	}
	if level <= slog.LevelDebug {
		sinks = append(sinks, protolog.NewSlogAdapter(logger))
	}

	switch len(sinks) {
	case 0:
		return protolog.NoopLogger{}, closeFn, nil
	case 1:
		return sinks[0], closeFn, nil
	default:
		return protolog.NewMultiLogger(sinks...), closeFn, nil
	}
}

// discoverServer replaces the configured endpoint with the first server
// found via mDNS.
func discoverServer(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	browser := discovery.NewBrowser(discovery.BrowserConfig{
		Interface: cfg.Discovery.Interface,
		Timeout:   cfg.Discovery.Timeout,
	})

	log.Printf("Searching for %s servers...", discovery.ServiceType)
	srv, err := browser.Find(ctx)
	if err != nil {
		if errors.Is(err, discovery.ErrNotFound) {
			return fmt.Errorf("no login server found on the local network")
		}
		return err
	}

	addr, err := srv.Address()
	if err != nil {
		return err
	}
	host, port, err := splitHostPort(addr)
	if err != nil {
		return err
	}
	cfg.Server.Host, cfg.Server.Port = host, port
	logger.Info("discovered login server", "name", srv.DisplayName(), "address", addr)
	return nil
}

func splitHostPort(addr string) (string, int, error) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return "", 0, err
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", 0, err
	}
	return host, port, nil
}
