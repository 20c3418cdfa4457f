// Command awareness is an interactive front end for the awareness bridge.
//
// It runs against the simulated service, listens on the dispatch address
// for persistent condition updates and offers snapshot queries and
// condition monitoring from a shell.
//
// Usage:
//
//	awareness [flags]
//
// Flags:
//
//	-config string      Configuration file path
//	-dispatch string    Dispatch address (overrides config)
//	-state string       Registration ledger path (overrides config)
//	-diag-log string    Write diagnostic events to this file (overrides config)
//	-log-level string   Diagnostic level on stderr: debug, info, warn, error
//	-interactive        Start the interactive shell (default true)
//
// Examples:
//
//	# Start with defaults
//	awareness
//
//	# Record diagnostics for later inspection with awareness-log
//	awareness -config awareness.yaml -diag-log /tmp/awareness.dlog
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Mauin/ReactiveAwareness/cmd/awareness/interactive"
	"github.com/Mauin/ReactiveAwareness/pkg/config"
	"github.com/Mauin/ReactiveAwareness/pkg/dispatch"
	"github.com/Mauin/ReactiveAwareness/pkg/fence"
	diaglog "github.com/Mauin/ReactiveAwareness/pkg/log"
	"github.com/Mauin/ReactiveAwareness/pkg/persistence"
	"github.com/Mauin/ReactiveAwareness/pkg/sim"
	"github.com/Mauin/ReactiveAwareness/pkg/snapshot"
	"github.com/Mauin/ReactiveAwareness/pkg/wire"
)

// Flags holds the command-line settings that override the config file.
type Flags struct {
	ConfigFile  string
	Dispatch    string
	StatePath   string
	DiagLog     string
	LogLevel    string
	Interactive bool
}

var flags Flags

func init() {
	flag.StringVar(&flags.ConfigFile, "config", "", "Configuration file path")
	flag.StringVar(&flags.Dispatch, "dispatch", "", "Dispatch address (overrides config)")
	flag.StringVar(&flags.StatePath, "state", "", "Registration ledger path (overrides config)")
	flag.StringVar(&flags.DiagLog, "diag-log", "", "Write diagnostic events to this file (overrides config)")
	flag.StringVar(&flags.LogLevel, "log-level", "", "Diagnostic level on stderr: debug, info, warn, error")
	flag.BoolVar(&flags.Interactive, "interactive", true, "Start the interactive shell")
}

func main() {
	flag.Parse()
	log.SetFlags(log.Ltime | log.Lmicroseconds)

	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	log.Println("Awareness Bridge")
	log.Println("================")
	log.Printf("Dispatch address: %s", cfg.Dispatch.Address)
	if cfg.State.Path != "" {
		log.Printf("Registration ledger: %s", cfg.State.Path)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	diag, closeDiag, err := setupDiagnostics(cfg.Diagnostics, os.Stderr)
	if err != nil {
		log.Fatalf("Failed to set up diagnostics: %v", err)
	}
	defer closeDiag()

	svc, err := newSimulation(cfg.Simulation, diag)
	if err != nil {
		log.Fatalf("Failed to create simulated service: %v", err)
	}

	store := persistence.NewRegistrationStore(cfg.State.Path)
	if err := store.Load(); err != nil {
		log.Fatalf("Failed to load registration ledger: %v", err)
	}
	if n := len(store.List()); n > 0 {
		log.Printf("Loaded %d registrations", n)
	}

	mux := dispatch.NewMux()
	mux.Fallback(dispatch.HandlerFunc(func(_ context.Context, u dispatch.Update) error {
		log.Printf("[DISPATCH] %s: %t (%d bytes payload)", u.Name, u.State, len(u.Payload))
		return nil
	}))

	listener, err := dispatch.NewListener(dispatch.ListenerConfig{
		Address:  cfg.Dispatch.Address,
		Handler:  mux,
		Recorder: store,
		Logger:   diag,
	})
	if err != nil {
		log.Fatalf("Failed to create dispatch listener: %v", err)
	}
	if err := listener.Start(ctx); err != nil {
		log.Fatalf("Failed to start dispatch listener: %v", err)
	}
	defer func() {
		listener.Stop()
		st := listener.Stats()
		log.Printf("Dispatch listener: %d connections, %d frames, %d errors, %d refused",
			st.Accepted, st.Frames, st.Errors, st.Refused)
	}()
	log.Printf("Listening for deliveries on %s", listener.Addr())

	engine := fence.NewEngine(svc, fence.Config{
		DispatchAddress:   listener.Addr().String(),
		Logger:            diag,
		Store:             store,
		UnregisterTimeout: cfg.Fence.UnregisterTimeout,
	})
	snap := snapshot.New(svc, cfg.Credentials.Snapshot(), diag)

	if flags.Interactive {
		shell, err := interactive.New(interactive.Deps{
			Engine:   engine,
			Snapshot: snap,
			Store:    store,
			Sim:      svc,
		})
		if err != nil {
			log.Fatalf("Failed to start shell: %v", err)
		}
		log.SetOutput(shell.Stdout())
		shell.Run(ctx, cancel)
		log.Println("Goodbye!")
		return
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh

	log.Printf("Received signal: %v", sig)
	log.Println("Shutting down...")
	log.Println("Goodbye!")
}

// loadConfig reads the config file if given and applies flag overrides.
func loadConfig() (config.Config, error) {
	cfg := config.Default()
	if flags.ConfigFile != "" {
		var err error
		if cfg, err = config.Load(flags.ConfigFile); err != nil {
			return cfg, err
		}
	}

	if flags.Dispatch != "" {
		cfg.Dispatch.Address = flags.Dispatch
	}
	if flags.StatePath != "" {
		cfg.State.Path = flags.StatePath
	}
	if flags.DiagLog != "" {
		cfg.Diagnostics.File = flags.DiagLog
	}
	if flags.LogLevel != "" {
		cfg.Diagnostics.Level = flags.LogLevel
	}
	if cfg.Dispatch.Address == "" {
		cfg.Dispatch.Address = config.DefaultDispatchAddress
	}
	return cfg, cfg.Validate()
}

// setupDiagnostics builds the diagnostic sink from the file and stderr
// settings. The returned function closes the file sink.
func setupDiagnostics(cfg config.DiagnosticsConfig, stderr io.Writer) (diaglog.Logger, func(), error) {
	var sinks []diaglog.Logger
	closeFn := func() {}

	if cfg.Stderr() {
		level, err := cfg.SlogLevel()
		if err != nil {
			return nil, closeFn, err
		}
		handler := slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})
		sinks = append(sinks, diaglog.NewSlogAdapter(slog.New(handler)))
	}

	if cfg.File != "" {
		fileLogger, err := diaglog.NewFileLogger(cfg.File)
		if err != nil {
			return nil, closeFn, fmt.Errorf("open diagnostic log: %w", err)
		}
		sinks = append(sinks, fileLogger)
		closeFn = func() {
			if err := fileLogger.Close(); err != nil {
				log.Printf("Error closing diagnostic log: %v", err)
				return
			}
			log.Printf("Wrote %d diagnostic events to %s", fileLogger.Count(), cfg.File)
		}
	}

	switch len(sinks) {
	case 0:
		return diaglog.NoopLogger{}, closeFn, nil
	case 1:
		return sinks[0], closeFn, nil
	}
	return diaglog.NewMultiLogger(sinks...), closeFn, nil
}

// newSimulation creates the simulated service seeded from cfg.
func newSimulation(cfg config.SimulationConfig, diag diaglog.Logger) (*sim.Service, error) {
	world := sim.DefaultWorld()
	world.Headphones = cfg.Headphones
	if cfg.Temperature != nil {
		world.Weather.Temperature = *cfg.Temperature
	}
	for k, v := range cfg.Flags {
		world.Flags[k] = v
	}

	opts := []sim.Option{sim.WithWorld(world), sim.WithLogger(diag)}
	if cfg.ConnectDelay > 0 {
		opts = append(opts, sim.WithConnectDelay(cfg.ConnectDelay))
	}
	if cfg.MaxFences > 0 {
		opts = append(opts, sim.WithMaxFences(cfg.MaxFences))
	}
	svc := sim.New(opts...)

	if cfg.Activity != "" {
		t, err := wire.ParseActivity(cfg.Activity)
		if err != nil {
			return nil, err
		}
		svc.SetActivity(t, 100)
	}
	return svc, nil
}
