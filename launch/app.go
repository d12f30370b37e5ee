package launch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/getlantern/systray"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"opecbrain/config"
	"opecbrain/manager"
	"opecbrain/metrics"
	"opecbrain/query"
	"opecbrain/web"
)

// App is built once at startup and owns everything the tray, the hotkey and
// the web viewer share.
type App struct {
	cfg      *config.Config
	logger   *slog.Logger
	records  *manager.RecordManager
	registry *prometheus.Registry
	server   *web.Server
	lock     *InstanceLock

	events chan Event
	open   func(url string) error
	quit   func()

	httpSrv   *http.Server
	closers   []io.Closer
	trayReady atomic.Bool
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// OpenRecords builds the record manager on the configured backend. The
// closer releases the backend (the SQLite handle); it is a no-op for JSON.
func OpenRecords(cfg *config.Config, logger *slog.Logger, m *metrics.Metrics, opts ...manager.Option) (*manager.RecordManager, io.Closer, error) {
	var backend manager.Backend
	var closer io.Closer = nopCloser{}
	switch cfg.Storage.Backend {
	case config.BackendSQLite:
		db, err := query.OpenDatabase(cfg.StoragePath(), cfg.Storage.Driver)
		if err != nil {
			return nil, nil, err
		}
		backend, closer = db, db
	case config.BackendJSON, "":
		backend = query.NewJSONFile(cfg.StoragePath())
	default:
		return nil, nil, fmt.Errorf("%w: unknown storage backend %q", config.ErrInvalidConfig, cfg.Storage.Backend)
	}
	opts = append([]manager.Option{
		manager.WithLogger(logger.With(slog.String("component", "records"))),
		manager.WithMetrics(m),
	}, opts...)
	return manager.NewRecordManager(backend, opts...), closer, nil
}

func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m, err := metrics.New(reg)
	if err != nil {
		return nil, err
	}
	a := &App{
		cfg:      cfg,
		logger:   logger,
		registry: reg,
		lock:     NewInstanceLock(cfg.LockPath()),
		events:   make(chan Event, eventQueueSize),
		open:     openURL,
		quit:     systray.Quit,
	}
	rm, closer, err := OpenRecords(cfg, logger, m, manager.WithErrorHook(a.storageFailed))
	if err != nil {
		return nil, err
	}
	// fail early when the storage cannot even be created
	if _, err := rm.Load(); err != nil {
		_ = closer.Close()
		return nil, err
	}
	a.records = rm
	a.closers = append(a.closers, closer)
	if cfg.Web.Enabled {
		a.server = web.NewServer(rm, reg, logger.With(slog.String("component", "web")))
	}
	return a, nil
}

func (a *App) Records() *manager.RecordManager { return a.records }

// Run takes the instance lock and blocks in the tray loop until "Sair".
func (a *App) Run() error {
	addr := ""
	if a.cfg.Web.Enabled {
		addr = a.cfg.Web.Addr
	}
	if err := a.lock.Acquire(addr); err != nil {
		for _, c := range a.closers {
			_ = c.Close()
		}
		return err
	}
	systray.Run(a.onReady, a.onExit)
	return nil
}

// start launches the background goroutines: web server, dispatcher, hotkey.
func (a *App) start() {
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	if a.server != nil {
		a.httpSrv = a.server.Start(a.cfg.Web.Addr)
	}
	a.wg.Add(2)
	go func() {
		defer a.wg.Done()
		a.Dispatch(ctx)
	}()
	go func() {
		defer a.wg.Done()
		a.listenHotkey(ctx)
	}()
}

func (a *App) shutdown() {
	if a.cancel != nil {
		a.cancel()
	}
	a.wg.Wait()
	var errs []error
	if a.httpSrv != nil {
		errs = append(errs, web.Shutdown(a.httpSrv))
	}
	for _, c := range a.closers {
		errs = append(errs, c.Close())
	}
	errs = append(errs, a.lock.Release())
	if err := errors.Join(errs...); err != nil {
		a.logger.Warn("shutdown", slog.Any("error", err))
	}
}

func (a *App) addURL() string     { return "http://" + a.cfg.Web.Addr + "/" }
func (a *App) historyURL() string { return "http://" + a.cfg.Web.Addr + "/history" }
