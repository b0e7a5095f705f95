// Command imauth-stub runs a local login server for development.
//
// It accepts the users listed in a YAML file and answers every other
// login with a rejection. With -mode it can instead misbehave in the ways
// a real server or network might, which is useful for exercising client
// error handling.
//
// Usage:
//
//	imauth-stub [flags]
//
// Flags:
//
//	-listen string    Listen address (default "127.0.0.1:10001")
//	-users string     YAML user table (default: alice/secret)
//	-framing string   Request/reply framing: raw or line (default "raw")
//	-mode string      accept, silent, reset, hangup, garbage (default "accept")
//	-delay duration   Wait before acting on a request
//	-advertise        Announce the server via mDNS
//	-name string      Advertised display name
//	-log-level string debug, info, warn, error (default "info")
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/imdesk/imclient/internal/authstub"
	"github.com/imdesk/imclient/internal/config"
	"github.com/imdesk/imclient/pkg/discovery"
	"github.com/imdesk/imclient/pkg/transport"
)

// Config holds the stub configuration.
type Config struct {
	Listen    string
	UsersFile string
	Framing   string
	Mode      string
	Delay     time.Duration
	Advertise bool
	Name      string
	LogLevel  string
}

var cfg Config

func init() {
	flag.StringVar(&cfg.Listen, "listen", fmt.Sprintf("127.0.0.1:%d", transport.DefaultPort), "Listen address")
	flag.StringVar(&cfg.UsersFile, "users", "", "YAML user table (default: alice/secret)")
	flag.StringVar(&cfg.Framing, "framing", "raw", "Request/reply framing: raw or line")
	flag.StringVar(&cfg.Mode, "mode", "accept", "Behavior: accept, silent, reset, hangup, garbage")
	flag.DurationVar(&cfg.Delay, "delay", 0, "Wait before acting on a request")
	flag.BoolVar(&cfg.Advertise, "advertise", false, "Announce the server via mDNS")
	flag.StringVar(&cfg.Name, "name", "imauth-stub", "Advertised display name")
	flag.StringVar(&cfg.LogLevel, "log-level", "info", "Log level: debug, info, warn, error")
}

func main() {
	flag.Parse()

	level, err := config.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Invalid log level: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	log.SetFlags(log.Ltime | log.Lmicroseconds)

	framing, err := transport.ParseFraming(cfg.Framing)
	if err != nil {
		log.Fatalf("Invalid framing: %v", err)
	}

	users := map[string]string{"alice": "secret"}
	if cfg.UsersFile != "" {
		if users, err = authstub.LoadUsers(cfg.UsersFile); err != nil {
			log.Fatalf("Failed to load users: %v", err)
		}
	}

	behavior, err := parseMode(cfg.Mode, users)
	if err != nil {
		log.Fatalf("Invalid mode: %v", err)
	}
	if cfg.Delay > 0 {
		behavior = authstub.Delay(cfg.Delay, behavior)
	}

	srv, err := authstub.Start(authstub.Config{
		Address:  cfg.Listen,
		Framing:  framing,
		Behavior: behavior,
		Logger:   logger,
	})
	if err != nil {
		log.Fatalf("Failed to start: %v", err)
	}

	log.Println("Login stub server")
	log.Println("=================")
	log.Printf("Listening on %s (framing: %s, mode: %s, users: %d)", srv.Addr(), framing, cfg.Mode, len(users))

	if cfg.Advertise {
		adv := discovery.NewAdvertiser(discovery.AdvertiserConfig{})
		if err := adv.Advertise(cfg.Name, cfg.Name, srv.Port()); err != nil {
			log.Printf("Warning: mDNS advertisement failed: %v", err)
		} else {
			log.Printf("Advertising %s as %q", discovery.ServiceType, cfg.Name)
			defer adv.Stop()
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Serve(ctx); err != nil {
		log.Printf("Shutdown: %v", err)
	}
	log.Printf("Stopped after %d connections", srv.Accepted())
}

// parseMode maps a -mode value to a behavior.
func parseMode(mode string, users map[string]string) (authstub.Behavior, error) {
	switch mode {
	case "accept":
		return authstub.Accept(users), nil
	case "silent":
		return authstub.Silent(), nil
	case "reset":
		return authstub.Reset(), nil
	case "hangup":
		return authstub.Hangup(), nil
	case "garbage":
		return authstub.Reply([]byte{0x00, 0x01}), nil
	default:
		return nil, fmt.Errorf("unknown mode %q (use: accept, silent, reset, hangup, garbage)", mode)
	}
}
