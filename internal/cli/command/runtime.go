package command

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/hostdeck-go/internal/cli/config"
	"github.com/yndnr/hostdeck-go/internal/cli/connection"
	"github.com/yndnr/hostdeck-go/internal/core/domain"
	"github.com/yndnr/hostdeck-go/internal/core/guard"
	"github.com/yndnr/hostdeck-go/internal/core/service"
	"github.com/yndnr/hostdeck-go/internal/core/session"
	"github.com/yndnr/hostdeck-go/internal/infra/shutdown"
	"github.com/yndnr/hostdeck-go/internal/storage"
	"github.com/yndnr/hostdeck-go/internal/telemetry/logger"
	"github.com/yndnr/hostdeck-go/internal/telemetry/metric"
)

const (
	metaRuntime  = "runtime"
	metaShutdown = "shutdown"
)

// Runtime is the wired console: one per process, shared by every command
// run in the same process (including REPL lines).
type Runtime struct {
	Config     *config.CLIConfig
	ConfigPath string

	Logger  logger.Logger
	Metrics *metric.Registry
	Store   *session.Store
	Manager *connection.Manager
	Auth    *service.AuthService
	Guard   *guard.Guard

	In  io.Reader
	Out io.Writer
	Err io.Writer

	// lines is shared by the REPL and interactive prompts.
	lines *bufio.Reader

	shutdown *shutdown.Handler

	// expired is set when the gateway forced a sign-out during the
	// current command.
	mu      sync.Mutex
	expired string
}

// API returns the typed backend API.
func (rt *Runtime) API() (*connection.AuthAPI, error) {
	return rt.Manager.API()
}

// RedirectToSignIn implements connection.Navigator for a terminal. The
// command that triggered it reports the sign-out through failure.
func (rt *Runtime) RedirectToSignIn(reason string) {
	rt.mu.Lock()
	rt.expired = reason
	rt.mu.Unlock()

	rt.Logger.Info("session ended by gateway", "reason", reason)
}

// takeExpired returns and resets the last forced sign-out reason.
func (rt *Runtime) takeExpired() string {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	r := rt.expired
	rt.expired = ""
	return r
}

// failure returns the error to report for a failed backend call. A
// sign-out forced during the call takes precedence over err.
func (rt *Runtime) failure(err error) error {
	if rt.takeExpired() != "" {
		return domain.ErrNotSignedIn.
			WithDetails("session expired, please sign in again (hostdeck-cli login)").
			WithCause(err)
	}
	return err
}

// flagOverrides maps explicitly set global flags onto config keys.
func flagOverrides(c *cli.Context) map[string]any {
	out := make(map[string]any)
	for flag, key := range map[string]string{
		"server":    "server",
		"output":    "output",
		"log-level": "log.level",
		"state-dir": "state.dir",
		"ca-file":   "tls.ca",
	} {
		if v := lookupString(c, flag); v != "" {
			out[key] = v
		}
	}
	if d := c.Duration("timeout"); d > 0 {
		out["gateway.timeout"] = d.String()
	}
	return out
}

// newRuntime builds the runtime from flags, config and the environment.
func newRuntime(c *cli.Context) (*Runtime, error) {
	cfgPath := c.String("config")
	cfg, err := config.Load(cfgPath, flagOverrides(c))
	if err != nil {
		return nil, err
	}
	if cfgPath == "" {
		cfgPath = config.DefaultConfigPath()
	}

	errOut := c.App.ErrWriter
	if errOut == nil {
		errOut = os.Stderr
	}
	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: errOut,
	})
	if err != nil {
		return nil, err
	}
	logger.SetDefault(log)

	rt := &Runtime{
		Config:     cfg,
		ConfigPath: cfgPath,
		Logger:     log,
		Metrics:    metric.NewRegistry(),
		In:         c.App.Reader,
		Out:        c.App.Writer,
		Err:        errOut,
		shutdown:   shutdownFrom(c),
	}
	if rt.In == nil {
		rt.In = os.Stdin
	}
	rt.lines = bufio.NewReader(rt.In)
	if rt.Out == nil {
		rt.Out = os.Stdout
	}

	if err := rt.openStore(c.Context); err != nil {
		return nil, err
	}

	rt.Manager = connection.NewManager(rt.Store,
		connection.WithNavigator(rt),
		connection.WithMetrics(rt.Metrics),
		connection.WithLogger(log),
	)
	if err := rt.Manager.Connect(&connection.Connection{
		Server:    cfg.Server,
		Timeout:   cfg.Gateway.Timeout,
		RateLimit: cfg.Gateway.Rate,
		RateBurst: cfg.Gateway.Burst,
		CAFile:    cfg.TLS.CA,
	}); err != nil {
		return nil, err
	}

	api, err := rt.Manager.API()
	if err != nil {
		return nil, err
	}
	rt.Auth = service.NewAuthService(rt.Store, api, &service.AuthServiceConfig{
		Logger:  log,
		Metrics: rt.Metrics,
	})
	rt.Guard = guard.New(rt.Store)

	rt.Metrics.Registerer().MustRegister(metric.NewSessionCollector(func() (bool, string) {
		st := rt.Store.Snapshot()
		return st.IsAuthenticated, string(st.Role())
	}))

	return rt, nil
}

// openStore opens the session database and rehydrates the session.
func (rt *Runtime) openStore(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	engine, err := storage.NewBadgerEngine(
		storage.DefaultKVConfig(rt.Config.SessionDir()),
		logger.Slog(rt.Logger.With("component", "badger")),
	)
	if err != nil {
		return fmt.Errorf("open session database %s (is another hostdeck-cli running?): %w",
			rt.Config.SessionDir(), err)
	}
	rt.shutdown.OnClose("session-db", engine.Close)
	engine.RegisterMetrics(rt.Metrics.Registerer())

	var key []byte
	if rt.Config.State.Encrypt {
		key, err = session.LoadOrCreateKey(rt.Config.KeyFile())
		if err != nil {
			return err
		}
	}

	persister, err := session.NewKVPersister(engine, key)
	if err != nil {
		return err
	}

	rt.Store, err = session.Open(ctx, persister, rt.Logger)
	return err
}

var _ connection.Navigator = (*Runtime)(nil)

// runtimeFrom returns the runtime wired by the app's Before hook.
func runtimeFrom(c *cli.Context) *Runtime {
	for _, ctx := range c.Lineage() {
		if ctx.App == nil {
			continue
		}
		if rt, ok := ctx.App.Metadata[metaRuntime].(*Runtime); ok {
			return rt
		}
	}
	return nil
}

func shutdownFrom(c *cli.Context) *shutdown.Handler {
	if h, ok := c.App.Metadata[metaShutdown].(*shutdown.Handler); ok {
		return h
	}
	h := shutdown.NewHandler(shutdown.DefaultTimeout)
	c.App.Metadata[metaShutdown] = h
	return h
}
