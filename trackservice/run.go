package trackservice

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/chasebfreeman/track-analyzer-pro/internal/api"
	"github.com/chasebfreeman/track-analyzer-pro/internal/api/recovery"
	"github.com/chasebfreeman/track-analyzer-pro/internal/config"
	"github.com/chasebfreeman/track-analyzer-pro/internal/factory"
	"github.com/chasebfreeman/track-analyzer-pro/internal/health"
	"github.com/chasebfreeman/track-analyzer-pro/internal/logger"
	"github.com/chasebfreeman/track-analyzer-pro/internal/services"
	"github.com/chasebfreeman/track-analyzer-pro/internal/session"
	"github.com/chasebfreeman/track-analyzer-pro/internal/store"
	storelocal "github.com/chasebfreeman/track-analyzer-pro/internal/store/local"
)

// Run starts the track analyzer HTTP server and blocks until shutdown or error.
func Run() error {
	log := logger.New("track-service")

	cfg, err := config.New()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load configuration")
		return err
	}

	log.Info().
		Str("storage_driver", cfg.StorageDriver).
		Int("http_port", cfg.HTTPPort).
		Msg("Track service starting")

	ctx, stop := newServerContext()
	defer stop()

	st, local, err := initStores(ctx, cfg, log)
	if err != nil {
		return err
	}

	router := buildRouter(ctx, st, local, cfg, log)

	svcHealth := startHealthCheckers(ctx, cfg, log, st)

	if err := waitUntilHealthy(ctx, cfg, svcHealth); err != nil {
		log.Error().Stack().Err(err).Msg("startup health check failed")
		return err
	}

	server := newHTTPServer(ctx, cfg, router)
	errCh := serveHTTP(server, log, cfg)

	select {
	case <-ctx.Done():
		log.Info().Msg("Shutting down server")
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctxShutdown); err != nil {
			log.Error().Stack().Err(err).Msg("Server forced to shutdown")
			return err
		}
		log.Info().Msg("Server exited")
		return nil
	case err := <-errCh:
		log.Error().Stack().Err(err).Msg("HTTP server failed")
		return err
	}
}

// initStores constructs the configured primary store, plus the device-local
// store when the primary is remote. The local store backs the profile
// durability path and the one-shot sync upload.
func initStores(ctx context.Context, cfg *config.Config, log zerolog.Logger) (store.Store, *storelocal.LocalStore, error) {
	st, err := factory.NewStore(ctx, cfg, log)
	if err != nil {
		log.Error().Stack().Err(err).Msg("Storage adapter unavailable")
		return nil, nil, err
	}

	if cfg.StorageDriver == "local" {
		// Primary already is the local store.
		return st, st.(*storelocal.LocalStore), nil
	}

	local, err := factory.NewLocalStore(cfg)
	if err != nil {
		log.Error().Stack().Err(err).Msg("Local store unavailable")
		return nil, nil, err
	}
	return st, local, nil
}

// buildRouter wires HTTP routes to handlers.
func buildRouter(ctx context.Context, st store.Store, local *storelocal.LocalStore, cfg *config.Config, log zerolog.Logger) *mux.Router {
	root := mux.NewRouter()
	root.Use(recovery.Middleware)

	// Restore the previously selected profile so the session survives
	// restarts; authentication never does.
	sess := session.New(local)
	if err := sess.LoadOnStart(ctx); err != nil {
		log.Warn().Err(err).Msg("session restore failed")
	}

	// Tracks
	trackSvc := services.NewTrackService(st, log)
	track := api.NewTrackHandler(trackSvc)
	root.HandleFunc("/api/tracks", track.CreateTrack).Methods("POST")
	root.HandleFunc("/api/tracks", track.ListTracks).Methods("GET")
	root.HandleFunc("/api/tracks/{trackId}", track.DeleteTrack).Methods("DELETE")

	// Readings
	readingSvc := services.NewReadingService(st, log)
	reading := api.NewReadingHandler(readingSvc)
	root.HandleFunc("/api/tracks/{trackId}/readings", reading.CreateReading).Methods("POST")
	root.HandleFunc("/api/tracks/{trackId}/readings", reading.ListReadings).Methods("GET")
	root.HandleFunc("/api/readings/{readingId}", reading.UpdateReading).Methods("PATCH")
	root.HandleFunc("/api/readings/{readingId}", reading.DeleteReading).Methods("DELETE")
	root.HandleFunc("/api/years", reading.ListYears).Methods("GET")

	// Profiles. Remote writes are best-effort; local is the durability path.
	var remoteProfiles store.Profiles
	if cfg.StorageDriver != "local" {
		remoteProfiles = st.Profiles()
	}
	profileSvc := services.NewProfileService(remoteProfiles, local.Profiles(), log)
	profile := api.NewProfileHandler(profileSvc, sess)
	root.HandleFunc("/api/profiles", profile.CreateProfile).Methods("POST")
	root.HandleFunc("/api/profiles", profile.ListProfiles).Methods("GET")
	root.HandleFunc("/api/profiles/{profileId}/verify", profile.VerifyPin).Methods("POST")
	root.HandleFunc("/api/profiles/{profileId}/pin", profile.ChangePin).Methods("POST")
	root.HandleFunc("/api/profiles/{profileId}", profile.DeleteProfile).Methods("DELETE")

	// Session (select → verify → authenticated flow)
	sessionHandler := api.NewSessionHandler(profileSvc, sess)
	root.HandleFunc("/api/session", sessionHandler.GetSession).Methods("GET")
	root.HandleFunc("/api/session/select", sessionHandler.SelectProfile).Methods("POST")
	root.HandleFunc("/api/session/logout", sessionHandler.Logout).Methods("POST")
	root.HandleFunc("/api/session", sessionHandler.ClearSession).Methods("DELETE")

	// Sync is only meaningful against a remote backend.
	if cfg.StorageDriver != "local" {
		syncSvc := services.NewSyncService(local, st, log)
		sync := api.NewSyncHandler(syncSvc)
		root.HandleFunc("/api/sync", sync.TriggerSync).Methods("POST")
	}

	// Health
	healthHandler := api.NewHealthHandler()
	root.HandleFunc("/api/health", healthHandler.CheckHealth).Methods("GET")

	return root
}

// startHealthCheckers starts the store checker and service-level aggregator.
func startHealthCheckers(ctx context.Context, cfg *config.Config, log zerolog.Logger, st store.Store) *health.ServiceHealthChecker {
	probeTimeout := time.Duration(cfg.HealthProbeTimeoutSeconds) * time.Second
	interval := time.Duration(cfg.HealthIntervalSeconds) * time.Second

	storeChecker := store.NewStoreHealthChecker(st, log, probeTimeout)
	go storeChecker.Start(ctx, interval)

	svcHealth := health.NewServiceHealthChecker(log, storeChecker)
	go svcHealth.Start(ctx, interval)
	api.BindServiceHealth(svcHealth.IsHealthy)
	return svcHealth
}

func newHTTPServer(ctx context.Context, cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.GetHTTPAddr(),
		Handler:           handler,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
}

func serveHTTP(server *http.Server, log zerolog.Logger, cfg *config.Config) <-chan error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.HTTPPort).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	return errCh
}

// calculateStartupHealthTimeout returns the startup health timeout in seconds,
// calculated as interval*2 with a minimum of 60 seconds.
func calculateStartupHealthTimeout(healthIntervalSeconds int) int {
	timeout := healthIntervalSeconds * 2
	if timeout < 60 {
		return 60
	}
	return timeout
}

// waitUntilHealthy blocks until service health is healthy or the startup window expires.
func waitUntilHealthy(ctx context.Context, cfg *config.Config, svcHealth *health.ServiceHealthChecker) error {
	// Checkers start as unhealthy and need time to run their first probe.
	timeoutSeconds := calculateStartupHealthTimeout(cfg.HealthIntervalSeconds)
	deadline := time.Now().Add(time.Duration(timeoutSeconds) * time.Second)
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()
	for {
		if svcHealth.IsHealthy() {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("startup aborted: dependencies not healthy within %d seconds", timeoutSeconds)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// newServerContext returns a cancellable context that is cancelled on SIGINT/SIGTERM.
func newServerContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
