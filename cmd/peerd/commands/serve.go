package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nilsio/trackerd/internal/logger"
	"github.com/nilsio/trackerd/pkg/peer"
	"github.com/nilsio/trackerd/pkg/peerconfig"
	"github.com/nilsio/trackerd/pkg/trackerclient"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Log into the tracker and serve registered files to other peers",
	Long: `serve logs this peer into the configured tracker, starts the Peer
Listener so other peers can fetch files from it, and sends periodic
heartbeats until interrupted.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := peerconfig.MustLoad(GetConfigFile())
	if err != nil {
		return err
	}
	if err := InitLogger(cfg); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tracker := trackerclient.New(cfg.Tracker.URL, cfg.Tracker.RequestTimeout)

	login, err := tracker.ConnectToServer(cfg.Identity.Name, cfg.Identity.Password, cfg.Identity.AdvertiseIP, cfg.Transfer.ListenPort)
	if err != nil {
		return fmt.Errorf("connect to tracker: %w", err)
	}
	switch login.Tag {
	case "NEW", "UPDATE", "OK":
		logger.Info("logged into tracker", "outcome", login.Tag, logger.PeerName(cfg.Identity.Name))
	default:
		return fmt.Errorf("tracker rejected login: %s", login.Tag)
	}
	token := login.Token

	listener := peer.NewListener(cfg.Transfer.ServeDir)
	listenAddr := fmt.Sprintf("%s:%d", cfg.Transfer.ListenHost, cfg.Transfer.ListenPort)

	serverDone := make(chan error, 1)
	go func() {
		serverDone <- listener.Serve(ctx, listenAddr)
	}()

	heartbeatDone := make(chan struct{})
	go runHeartbeatLoop(ctx, tracker, cfg, &token, heartbeatDone)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("peerd is running, press ctrl+c to stop", logger.HostAddress(listenAddr))

	select {
	case <-sigChan:
		signal.Stop(sigChan)
		logger.Info("shutdown signal received")
	case err := <-serverDone:
		signal.Stop(sigChan)
		if err != nil {
			logger.Error("peer listener error", logger.Err(err))
		}
	}

	cancel()
	<-heartbeatDone
	_ = listener.Close()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	disconnectFromTracker(shutdownCtx, tracker, token, cfg.Identity.Name)

	logger.Info("peerd stopped")
	return nil
}

// runHeartbeatLoop sends sendHeartBeat every cfg.HeartbeatInterval until ctx
// is cancelled. A CRED outcome means the tracker has forgotten this session
// (e.g. reaper eviction); the loop resumes with a fresh login rather than
// treating it as fatal.
func runHeartbeatLoop(ctx context.Context, tracker *trackerclient.Client, cfg *peerconfig.Config, token *string, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(cfg.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			result, err := tracker.SendHeartBeat(*token, cfg.Identity.Name)
			if err != nil {
				logger.Error("heartbeat failed", logger.Err(err))
				continue
			}
			if result.Tag == "CRED" {
				logger.Warn("heartbeat rejected, re-logging in", logger.PeerName(cfg.Identity.Name))
				login, err := tracker.ConnectToServer(cfg.Identity.Name, cfg.Identity.Password, cfg.Identity.AdvertiseIP, cfg.Transfer.ListenPort)
				if err != nil {
					logger.Error("re-login failed", logger.Err(err))
					continue
				}
				if login.Tag == "NEW" || login.Tag == "UPDATE" || login.Tag == "OK" {
					*token = login.Token
				}
			}
		}
	}
}

func disconnectFromTracker(ctx context.Context, tracker *trackerclient.Client, token, name string) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		if _, err := tracker.DisconnectFromServer(token, name); err != nil {
			logger.Error("disconnect from tracker failed", logger.Err(err))
		}
	}()
	select {
	case <-done:
	case <-ctx.Done():
		logger.Warn("disconnect from tracker timed out")
	}
}
