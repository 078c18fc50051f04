package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/joescharf/civic/internal/api"
	"github.com/joescharf/civic/internal/daemon"
)

const serveProcessName = "civic-serve"

var serveStopTimeout time.Duration

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the civic REST API server",
	Long: `Start an HTTP server exposing the civic REST API under /api/v1.
By default it listens on port 8080. Use --port to change it.

Use 'civic serve start' to run it in the background and
'civic serve stop' to shut it down.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serveRun(cmd.Context())
	},
}

var serveStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the API server in the background",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serveStartRun()
	},
}

var serveStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the background API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serveStopRun()
	},
}

var serveStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether the background API server is running",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serveStatusRun()
	},
}

func init() {
	serveCmd.PersistentFlags().IntP("port", "p", 8080, "port to listen on")
	_ = viper.BindPFlag("port", serveCmd.PersistentFlags().Lookup("port"))
	serveStopCmd.Flags().DurationVar(&serveStopTimeout, "timeout", 10*time.Second, "How long to wait before killing the server")

	serveCmd.AddCommand(serveStartCmd)
	serveCmd.AddCommand(serveStopCmd)
	serveCmd.AddCommand(serveStatusCmd)
	rootCmd.AddCommand(serveCmd)
}

func serveProcess() *daemon.Process {
	return daemon.New(viper.GetString("state_dir"), serveProcessName)
}

func serveRun(ctx context.Context) error {
	s, err := getStore()
	if err != nil {
		return err
	}
	if ctx == nil {
		ctx = context.Background()
	}

	srv := api.NewServer(s, newClassifier(), viper.GetString("reporter"), viper.GetString("timestamp_format"))
	addr := fmt.Sprintf(":%d", viper.GetInt("port"))
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	if dryRun {
		ui.DryRunMsg("Would serve API at http://localhost%s/api/v1", addr)
		return nil
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()
	ui.Info("Serving API at http://localhost%s/api/v1", addr)
	slog.Info("api server started", "addr", addr)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	slog.Info("api server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func serveStartRun() error {
	p := serveProcess()
	port := viper.GetInt("port")

	if dryRun {
		ui.DryRunMsg("Would start %s on port %d (log: %s)", serveProcessName, port, p.LogPath())
		return nil
	}

	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("locate executable: %w", err)
	}

	args := []string{"serve", "--port", strconv.Itoa(port)}
	if cfg, _ := rootCmd.PersistentFlags().GetString("config"); cfg != "" {
		args = append(args, "--config", cfg)
	}

	pid, err := p.Start(exe, args...)
	if err != nil {
		return err
	}
	ui.Success("Started %s (pid %d) on port %d", serveProcessName, pid, port)
	ui.Info("Logs: %s", p.LogPath())
	return nil
}

func serveStopRun() error {
	p := serveProcess()
	pid, ok := p.Running()
	if !ok {
		_ = p.Release()
		ui.Info("%s is not running", serveProcessName)
		return nil
	}

	if dryRun {
		ui.DryRunMsg("Would stop %s (pid %d)", serveProcessName, pid)
		return nil
	}

	if err := p.Stop(serveStopTimeout); err != nil {
		if errors.Is(err, daemon.ErrNotRunning) {
			ui.Info("%s is not running", serveProcessName)
			return nil
		}
		return err
	}
	ui.Success("Stopped %s (pid %d)", serveProcessName, pid)
	return nil
}

func serveStatusRun() error {
	p := serveProcess()
	if pid, ok := p.Running(); ok {
		ui.Success("%s running (pid %d)", serveProcessName, pid)
		ui.VerboseLog("PID file: %s", p.PIDPath())
		return nil
	}
	ui.Info("%s is not running", serveProcessName)
	return nil
}
