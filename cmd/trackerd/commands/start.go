package commands

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/nilsio/trackerd/internal/logger"
	"github.com/nilsio/trackerd/pkg/config"
	"github.com/nilsio/trackerd/pkg/fileindex"
	"github.com/nilsio/trackerd/pkg/metrics"
	trackermetrics "github.com/nilsio/trackerd/pkg/metrics/prometheus"
	"github.com/nilsio/trackerd/pkg/reaper"
	"github.com/nilsio/trackerd/pkg/rpc"
	"github.com/nilsio/trackerd/pkg/session"
	"github.com/nilsio/trackerd/pkg/trackerstore"
)

var (
	foreground bool
	pidFile    string
	logFile    string
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the tracker daemon",
	Long: `Start the tracker daemon with the specified configuration.

By default the daemon runs in the background. Use --foreground to run in
the foreground for debugging or when managed by a process supervisor.

Examples:
  # Start in background (default)
  trackerd start

  # Start in foreground
  trackerd start --foreground

  # Start with a custom config file
  trackerd start --config /etc/trackerd/config.yaml`,
	RunE: runStart,
}

func init() {
	startCmd.Flags().BoolVarP(&foreground, "foreground", "f", false, "Run in foreground (default: background/daemon mode)")
	startCmd.Flags().StringVar(&pidFile, "pid-file", "", "Path to PID file (default: $XDG_STATE_HOME/trackerd/trackerd.pid)")
	startCmd.Flags().StringVar(&logFile, "log-file", "", "Path to log file for daemon mode (default: $XDG_STATE_HOME/trackerd/trackerd.log)")
}

func runStart(cmd *cobra.Command, args []string) error {
	if !foreground {
		return startDaemon()
	}

	cfg, err := config.MustLoad(GetConfigFile())
	if err != nil {
		return err
	}
	if err := InitLogger(cfg); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger.Info("trackerd starting", "version", Version)
	logger.Info("configuration loaded", "source", getConfigSource(GetConfigFile()))

	store, err := trackerstore.New(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize persistence gateway: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("error closing persistence gateway", logger.Err(err))
		}
	}()

	probe := trackerstore.NewHealthProbe(store, 0)
	probe.Start(ctx)
	defer probe.Stop()

	var trackerMetrics metrics.TrackerMetrics
	if cfg.Metrics.Enabled {
		reg := metrics.InitRegistry()
		trackerMetrics = trackermetrics.NewTrackerMetrics()
		metricsAddr := fmt.Sprintf(":%d", cfg.Metrics.Port)
		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		metricsSrv := &http.Server{Addr: metricsAddr, Handler: metricsMux}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("metrics server error", logger.Err(err))
			}
		}()
		defer func() { _ = metricsSrv.Close() }()
		logger.Info("metrics enabled", "port", cfg.Metrics.Port)
	} else {
		logger.Info("metrics disabled")
	}

	sessions := session.NewManager(store, cfg.Limits.MaxUsers)
	index := fileindex.New(store, sessions, cfg.Limits.MaxFilesPerUser, trackerMetrics)

	r := reaper.New(sessions.Table(), cfg.Reaper.Interval, cfg.Reaper.EvictionThreshold, trackerMetrics)
	r.Start(ctx)
	defer r.Stop()

	rpcServer := rpc.NewServer(sessions, index, store, trackerMetrics)
	router := rpc.NewRouter(rpcServer, store, cfg.RPC.RequestTimeout)
	httpSrv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.RPC.Host, cfg.RPC.Port),
		Handler: router,
	}

	if pidFile != "" {
		if err := os.WriteFile(pidFile, []byte(fmt.Sprintf("%d", os.Getpid())), 0644); err != nil {
			return fmt.Errorf("failed to write PID file: %w", err)
		}
		defer func() { _ = os.Remove(pidFile) }()
	}

	serverDone := make(chan error, 1)
	go func() {
		logger.Info("rpc server listening", logger.HostAddress(httpSrv.Addr))
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverDone <- err
			return
		}
		serverDone <- nil
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("trackerd is running, press ctrl+c to stop")

	select {
	case <-sigChan:
		signal.Stop(sigChan)
		logger.Info("shutdown signal received, draining rpc server")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer shutdownCancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			logger.Error("rpc server shutdown error", logger.Err(err))
		}
		cancel()
		<-serverDone
		logger.Info("trackerd stopped gracefully")

	case err := <-serverDone:
		signal.Stop(sigChan)
		cancel()
		if err != nil {
			logger.Error("rpc server error", logger.Err(err))
			return err
		}
		logger.Info("trackerd stopped")
	}

	return nil
}

func getConfigSource(configFile string) string {
	if configFile != "" {
		return configFile
	}
	if config.DefaultConfigExists() {
		return config.GetDefaultConfigPath()
	}
	return "defaults"
}

func startDaemon() error {
	stateDir := GetDefaultStateDir()
	if err := os.MkdirAll(stateDir, 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	pidPath := pidFile
	if pidPath == "" {
		pidPath = GetDefaultPidFile()
	}

	if _, err := os.Stat(pidPath); err == nil {
		pidData, err := os.ReadFile(pidPath)
		if err == nil {
			var pid int
			if _, err := fmt.Sscanf(string(pidData), "%d", &pid); err == nil {
				if process, err := os.FindProcess(pid); err == nil {
					if err := process.Signal(syscall.Signal(0)); err == nil {
						return fmt.Errorf("trackerd is already running (PID %d)\nUse 'trackerd stop' to stop the running instance", pid)
					}
				}
			}
		}
		_ = os.Remove(pidPath)
	}

	logPath := logFile
	if logPath == "" {
		logPath = GetDefaultLogFile()
	}

	executable, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to get executable path: %w", err)
	}

	daemonArgs := []string{"start", "--foreground", "--pid-file", pidPath}
	if GetConfigFile() != "" {
		daemonArgs = append(daemonArgs, "--config", GetConfigFile())
	}

	cmd := exec.Command(executable, daemonArgs...)

	logFileHandle, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	cmd.Stdout = logFileHandle
	cmd.Stderr = logFileHandle
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	if err := cmd.Start(); err != nil {
		_ = logFileHandle.Close()
		return fmt.Errorf("failed to start daemon: %w", err)
	}
	_ = logFileHandle.Close()

	fmt.Printf("trackerd started in background (PID %d)\n", cmd.Process.Pid)
	fmt.Printf("  PID file: %s\n", pidPath)
	fmt.Printf("  Log file: %s\n", logPath)
	fmt.Println("\nUse 'trackerd stop' to stop the daemon")
	fmt.Println("Use 'trackerd status' to check its status")

	return nil
}
