package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/1broseidon/splitwm/internal/commands"
	"github.com/1broseidon/splitwm/internal/config"
	"github.com/1broseidon/splitwm/internal/daemon"
	"github.com/1broseidon/splitwm/internal/director"
	"github.com/1broseidon/splitwm/internal/hotkeys"
	"github.com/1broseidon/splitwm/internal/ipc"
	"github.com/1broseidon/splitwm/internal/platform"
	"github.com/1broseidon/splitwm/internal/runtimepath"
	"github.com/1broseidon/splitwm/internal/tracing"
	"github.com/spf13/cobra"
)

func newRunCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Start the window manager",
		Long: `Connect to the X display, adopt existing windows and manage new ones
until interrupted. SIGHUP reloads the configuration.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDaemon(flags)
		},
	}
}

// session holds the long-lived components that a reload touches.
type session struct {
	configPath string
	level      *slog.LevelVar
	logger     *slog.Logger

	director   *director.Director
	dispatcher *commands.Dispatcher
	hotkeys    *hotkeys.Handler
	watcher    *config.Watcher

	mu sync.Mutex
}

func runDaemon(flags *globalFlags) error {
	path, err := flags.resolveConfigPath()
	if err != nil {
		return err
	}
	res, err := config.LoadFromPath(path)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	cfg := res.Config
	bindings, compiledRules, err := cfg.Compile()
	if err != nil {
		return err
	}
	log.Printf("Configuration loaded (%d bindings, %d rules, %d file(s))", len(bindings), len(compiledRules), len(res.Files))

	level := new(slog.LevelVar)
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		return fmt.Errorf("invalid log_level: %w", err)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tracer, err := tracing.New(ctx, tracing.Config{
		Exporter:    cfg.Tracing.Exporter,
		ServiceName: "splitwm",
		Version:     version,
	})
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, done := context.WithTimeout(context.Background(), 2*time.Second)
		defer done()
		if err := tracer.Shutdown(shutdownCtx); err != nil {
			log.Printf("Warning: tracer shutdown: %v", err)
		}
	}()

	backend, err := platform.NewLinuxBackendFromDisplay()
	if err != nil {
		return fmt.Errorf("failed to connect to display: %w", err)
	}
	defer backend.Disconnect()

	d := director.New(backend, director.Options{
		Padding: cfg.Padding(),
		Rules:   compiledRules,
		Logger:  logger,
	})
	if err := d.Refresh(); err != nil {
		return fmt.Errorf("failed to adopt displays: %w", err)
	}
	log.Printf("Managing %d window(s) on %d monitor(s)", d.WindowCount(), len(d.Snapshot()))

	if err := daemon.NewStateSynchronizer(d, logger).Attach(backend); err != nil {
		return fmt.Errorf("failed to subscribe to window events: %w", err)
	}

	s := &session{
		configPath: path,
		level:      level,
		logger:     logger,
		director:   d,
	}

	launcher := commands.NewLauncher(backend, d, commands.LauncherConfig{
		Attempts: cfg.Launch.Attempts,
		Delay:    time.Duration(cfg.Launch.DelayMS) * time.Millisecond,
		Logger:   logger,
	})
	runner := &commands.Runner{Director: d, Launcher: launcher, Reload: s.reload}

	s.dispatcher = commands.NewDispatcher(runner, commands.DispatcherConfig{
		Workers:   cfg.Dispatch.Workers,
		QueueSize: cfg.Dispatch.QueueSize,
		Logger:    logger,
		Tracer:    tracer,
	})
	s.dispatcher.Replace(bindings)
	s.dispatcher.Start(ctx)
	defer s.dispatcher.Stop()

	s.hotkeys, err = hotkeys.NewHandler(backend, s.dispatcher, logger)
	if err != nil {
		return err
	}
	if err := s.hotkeys.Bind(bindings); err != nil {
		log.Printf("Warning: some bindings could not be grabbed: %v", err)
	}

	socketPath := flags.socketPath
	if socketPath == "" {
		if socketPath, err = runtimepath.SocketPath(); err != nil {
			return err
		}
	}
	ipcServer := ipc.NewServer(socketPath, d, s.dispatcher, s.reload)
	if err := ipcServer.Start(); err != nil {
		log.Printf("Warning: failed to start IPC server: %v", err)
	} else {
		log.Printf("IPC server listening on %s", ipcServer.SocketPath())
		defer ipcServer.Stop()
	}

	if cfg.ReconcileIntervalSeconds > 0 {
		reconciler := daemon.NewReconciler(daemon.ReconcilerConfig{
			Interval: time.Duration(cfg.ReconcileIntervalSeconds) * time.Second,
			Logger:   logger,
		}, d)
		reconciler.ReconcileNow()
		go reconciler.Run(ctx)
	}

	watchFiles := res.Files
	if len(watchFiles) == 0 {
		watchFiles = []string{path}
	}
	s.watcher, err = config.NewWatcher(watchFiles, 0, func() {
		if err := s.reload(); err != nil {
			log.Printf("Config reload failed: %v", err)
		}
	})
	if err != nil {
		log.Printf("Warning: config hot reload disabled: %v", err)
	} else {
		go s.watcher.Run(ctx)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGHUP, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		for sig := range sigChan {
			switch sig {
			case syscall.SIGHUP:
				log.Println("Received SIGHUP, reloading config...")
				if err := s.reload(); err != nil {
					log.Printf("Config reload failed: %v", err)
				}
			case os.Interrupt, syscall.SIGTERM:
				log.Println("Shutting down splitwm...")
				cancel()
				backend.Quit()
				return
			}
		}
	}()

	log.Println("splitwm started, entering event loop...")
	backend.EventLoop()
	return nil
}

// reload re-reads the configuration and swaps rules, padding and bindings in
// place. Window state is untouched. A failed reload keeps the old config.
func (s *session) reload() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := config.LoadFromPath(s.configPath)
	if err != nil {
		return err
	}
	bindings, compiledRules, err := res.Config.Compile()
	if err != nil {
		return err
	}
	if err := s.level.UnmarshalText([]byte(res.Config.LogLevel)); err != nil {
		return fmt.Errorf("invalid log_level: %w", err)
	}

	s.director.SetRules(compiledRules)
	if err := s.director.SetPadding(res.Config.Padding()); err != nil {
		return err
	}
	s.dispatcher.Replace(bindings)
	if err := s.hotkeys.Bind(bindings); err != nil {
		log.Printf("Warning: some bindings could not be grabbed: %v", err)
	}
	if s.watcher != nil && len(res.Files) > 0 {
		if err := s.watcher.SetFiles(res.Files); err != nil {
			log.Printf("Warning: %v", err)
		}
	}

	s.logger.Info("config reloaded", "bindings", len(bindings), "rules", len(compiledRules))
	return nil
}
