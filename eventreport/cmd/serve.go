package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/browser"
	"github.com/sarchlab/eventreport/datarecording"
	"github.com/sarchlab/eventreport/monitoring"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve a recorded database over HTTP.",
	Long: "`serve --db run.sqlite3` starts the monitoring server until the " +
		"process is interrupted. With --open, the API root is opened in a " +
		"browser.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg := mustLoadConfig(cmd)
		if cfg.DBPath == "" {
			return errNoDB
		}

		logger := mustBuildLogger(cfg.LogLevel)
		defer func() { _ = logger.Sync() }()

		reader, err := datarecording.NewReader(cfg.DBPath)
		if err != nil {
			return err
		}
		defer reader.Close()

		m := monitoring.NewMonitor(reader, logger).WithAddr(cfg.HTTPAddr)

		url, err := m.StartServer()
		if err != nil {
			return err
		}

		open, _ := cmd.Flags().GetBool("open")
		if open {
			if err := browser.OpenURL(url + "/api/stats"); err != nil {
				logger.Warn("cannot open browser", zap.Error(err))
			}
		}

		ctx, stop := signal.NotifyContext(
			context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(
			context.Background(), 5*time.Second)
		defer cancel()

		return m.Shutdown(shutdownCtx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("db", "", "The recorded database file")
	serveCmd.Flags().String("addr", "",
		"Address to listen on. Overrides EVENTREPORT_HTTP_ADDR.")
	serveCmd.Flags().Bool("open", false, "Open the server in a browser")
}
