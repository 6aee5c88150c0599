package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Meet/internal/adapters/device"
	router "github.com/dkeye/Meet/internal/adapters/http"
	"github.com/dkeye/Meet/internal/adapters/platform"
	"github.com/dkeye/Meet/internal/adapters/postproc"
	"github.com/dkeye/Meet/internal/adapters/provision"
	"github.com/dkeye/Meet/internal/adapters/rtc"
	"github.com/dkeye/Meet/internal/app/capture"
	"github.com/dkeye/Meet/internal/app/session"
	"github.com/dkeye/Meet/internal/config"
	"github.com/dkeye/Meet/internal/core"
	"github.com/dkeye/Meet/internal/domain"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if cfg.Mode == "debug" {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	var iceServers []webrtc.ICEServer
	if len(cfg.ICEServers) > 0 {
		iceServers = []webrtc.ICEServer{{URLs: cfg.ICEServers}}
	}
	transport := rtc.New(rtc.Config{ICEServers: iceServers})

	perms, err := device.NewPermissions(cfg.Permission, device.AllowAll)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid permissions config")
	}
	devices := device.NewProvider(cfg.Devices)
	camera := device.NewVirtualCamera(devices, device.CameraConfig{
		PhotoDir: cfg.Capture.PhotoDir,
		Sink:     transport.Local(),
	})
	audio := device.NewAudio(perms, transport.Local())

	ctrl := capture.New(perms, camera, postproc.New(cfg.PostProc.WebhookURL, cfg.PostProc.Timeout), capture.Config{
		PixelFormat:    cfg.Capture.PixelFormat,
		MaxZoom:        cfg.Capture.MaxZoom,
		HandoffTimeout: cfg.Capture.HandoffTimeout,
	})
	if err := watchDevices(ctx, devices, ctrl); err != nil {
		log.Fatal().Err(err).Msg("device enumeration failed")
	}

	p, _ := domain.ParsePlatform(cfg.Platform)
	var (
		pending *router.PendingPicker
		picker  core.CapturePicker
	)
	if p == domain.PlatformIOS {
		pending = router.NewPendingPicker()
		picker = pending
	}
	bridge, err := platform.New(p, picker)
	if err != nil {
		log.Fatal().Err(err).Msg("screen share bridge")
	}

	machine := session.New(transport, bridge, session.Config{
		Connect: core.ConnectOptions{
			Simulcast:      cfg.Publish.Simulcast,
			AdaptiveStream: cfg.Publish.AdaptiveStream,
		},
		Audio: audio,
		Intents: map[domain.TrackKind]bool{
			domain.TrackMicrophone: cfg.Publish.Microphone,
			domain.TrackCamera:     cfg.Publish.Camera,
		},
		TeardownTimeout: cfg.Session.TeardownTimeout,
	})

	var rooms router.Rooms
	if cfg.API.Endpoint != "" {
		client, err := provision.New(cfg.API.Endpoint, cfg.API.Timeout)
		if err != nil {
			log.Fatal().Err(err).Msg("provisioning client")
		}
		rooms = client
	}

	r := router.SetupRouter(ctx, cfg, router.Deps{
		Session: machine,
		Capture: ctrl,
		Picker:  pending,
		Rooms:   rooms,
	})
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Str("platform", string(p)).Msg("Meet daemon started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	if machine.Snapshot().State.CanLeave() {
		if err := machine.Leave(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("leave on shutdown")
		}
	}
	if err := ctrl.Close(); err != nil {
		log.Error().Err(err).Msg("capture close")
	}
	log.Info().Msg("Daemon exited gracefully")
}

// watchDevices feeds the current enumeration and every later change into ctrl.
func watchDevices(ctx context.Context, src core.DeviceProvider, ctrl *capture.Controller) error {
	list, err := src.Devices(ctx)
	if err != nil {
		return err
	}
	if err := ctrl.UpdateDevices(ctx, list); err != nil {
		log.Error().Err(err).Msg("apply devices")
	}
	src.OnChange(func(d []domain.CaptureDevice) {
		if err := ctrl.UpdateDevices(context.Background(), d); err != nil {
			log.Error().Err(err).Msg("apply devices")
		}
	})
	return nil
}
