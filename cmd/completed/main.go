// Command completed is the completion daemon. It listens on a Unix domain
// socket for complete/complete_add/complete_remove/
// complete_set_authoritative/complete_is_valid_option/complete_print/
// complete_load requests from shell clients, backed by a single in-process
// engine.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shellkit/complete/internal/autoload"
	"github.com/shellkit/complete/internal/cmdline"
	"github.com/shellkit/complete/internal/config"
	"github.com/shellkit/complete/internal/ipcserver"
	"github.com/shellkit/complete/internal/shellhost"
	"github.com/shellkit/complete/internal/store"
	"github.com/shellkit/complete/pkg/complete"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	verbose := flag.Bool("verbose", false, "log every request and response to stderr")
	execTimeout := flag.Duration("exec-timeout", 3*time.Second, "bound on every condition/arg_spec/description subshell")
	flag.Parse()

	if *showVersion {
		fmt.Println("completed", Version)
		os.Exit(0)
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	resolver := shellhost.NewPathResolver()
	engine := complete.New(complete.Options{
		Parser:   cmdline.New(),
		EnvStore: shellhost.NewEnvStore(),
		Passwd:   shellhost.NewPasswordDB(),
		Registry: shellhost.NewRegistry(),
		Resolver: resolver,
		Expander: shellhost.NewExpander(resolver),
		Executor: shellhost.NewExecutor(*execTimeout),
		AutoloadSource: func(st *store.Store) autoload.Source {
			return autoload.FileSource{
				SearchPath: func() []string { return config.AutoloadDirs(cfg) },
				Store:      st,
			}
		},
	})
	defer engine.Close()

	config.Apply(cfg, engine.Store())

	socketPath := resolveSocketPath()
	slog.Info("starting", "socket", socketPath)

	srv, err := ipcserver.New(socketPath, engine)
	if err != nil {
		slog.Error("failed to start server", "error", err)
		os.Exit(1)
	}
	defer srv.Close()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		slog.Info("shutting down")
		srv.Close()
		os.Exit(0)
	}()

	slog.Info("ready")
	if err := srv.Serve(); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func resolveSocketPath() string {
	if path := os.Getenv("COMPLETE_SOCKET"); path != "" {
		return path
	}
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return dir + "/complete.sock"
	}
	return fmt.Sprintf("/tmp/complete-%d.sock", os.Getuid())
}
