package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"
	"golang.org/x/sync/errgroup"

	"magf/internal/api"
	"magf/internal/catalog"
	"magf/internal/config"
	"magf/internal/logging"
	"magf/internal/magf"
	"magf/internal/preflight"
)

// ErrAlreadyRunning is returned by Start when another daemon holds the lock.
var ErrAlreadyRunning = errors.New("another magf daemon instance is already running")

// Daemon serves the HTTP API for one catalog and enforces single-instance execution.
type Daemon struct {
	cfg     *config.Config
	logger  *slog.Logger
	store   *catalog.Store
	catalog *api.CatalogService
	encoder magf.Encoder
	server  *apiServer

	lockPath string
	lock     *flock.Flock

	running   atomic.Bool
	startedAt time.Time
}

// New constructs a daemon around an open catalog.
func New(cfg *config.Config, store *catalog.Store, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || store == nil {
		return nil, errors.New("daemon requires config and catalog store")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	d := &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		store:    store,
		catalog:  api.NewCatalogService(store),
		encoder:  magf.Encoder{StrictDimensions: cfg.Encoding.StrictDimensions},
		lockPath: cfg.DaemonLockPath(),
		lock:     flock.New(cfg.DaemonLockPath()),
	}
	d.server = newAPIServer(cfg.Paths.APIBind, d, logger)
	return d, nil
}

// Start acquires the daemon lock, runs preflight checks and binds the API
// listener. Failed checks are logged but do not stop the daemon.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return ErrAlreadyRunning
	}

	for _, result := range preflight.Failed(preflight.RunAll(d.cfg)) {
		d.logger.Warn("preflight check failed",
			logging.String("check", result.Name),
			logging.String("detail", result.Detail),
		)
	}

	if err := d.server.listen(); err != nil {
		_ = d.lock.Unlock()
		return err
	}

	d.startedAt = time.Now().UTC()
	d.running.Store(true)
	d.logger.Info("magf daemon started",
		logging.String("lock", d.lockPath),
		logging.String("address", d.Addr()),
		logging.String("catalog", d.store.Path()),
	)
	return nil
}

// Serve handles requests until ctx is cancelled or the server fails. Start
// must have succeeded first.
func (d *Daemon) Serve(ctx context.Context) error {
	if !d.running.Load() {
		return errors.New("daemon not started")
	}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(d.server.serve)
	g.Go(func() error {
		<-gctx.Done()
		return d.server.shutdown()
	})
	return g.Wait()
}

// Run is Start, Serve and Stop in sequence.
func (d *Daemon) Run(ctx context.Context) error {
	if err := d.Start(ctx); err != nil {
		return err
	}
	defer d.Stop()
	return d.Serve(ctx)
}

// Stop shuts the API server down and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}
	if err := d.server.shutdown(); err != nil {
		d.logger.Warn("api server shutdown failed", logging.Error(err))
	}
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("magf daemon stopped")
}

// Close stops the daemon and closes the catalog.
func (d *Daemon) Close() error {
	d.Stop()
	return d.store.Close()
}

// Addr is the bound listener address, or the configured bind before Start.
func (d *Daemon) Addr() string {
	return d.server.addr()
}

// Handler exposes the API routes without a listener.
func (d *Daemon) Handler() http.Handler {
	return d.server.handler
}

// Status reports runtime information for the status endpoint.
func (d *Daemon) Status(ctx context.Context) api.DaemonStatus {
	status := api.DaemonStatus{
		Running:      d.running.Load(),
		PID:          os.Getpid(),
		CatalogPath:  d.store.Path(),
		LockFilePath: d.lockPath,
		Checks:       api.FromPreflight(preflight.RunAll(d.cfg)),
	}
	if !d.startedAt.IsZero() {
		status.StartedAt = d.startedAt.Format(time.RFC3339)
	}
	if stats, err := d.catalog.Stats(ctx); err == nil {
		status.Catalog = stats
	} else {
		logging.WithContext(ctx, d.logger).Warn("catalog stats failed", logging.Error(err))
	}
	return status
}
