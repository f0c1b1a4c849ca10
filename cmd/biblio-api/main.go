// Command biblio-api serves the library collections over HTTP.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/biblio/internal/config"
	"github.com/mesh-intelligence/biblio/internal/local"
	"github.com/mesh-intelligence/biblio/internal/logging"
	"github.com/mesh-intelligence/biblio/internal/paths"
	"github.com/mesh-intelligence/biblio/internal/schema"
	"github.com/mesh-intelligence/biblio/internal/server"
	"github.com/mesh-intelligence/biblio/pkg/types"
)

const shutdownTimeout = 10 * time.Second

// options holds the command-line flags.
type options struct {
	configDir string
	dataDir   string
	store     string
	listen    string
	debug     bool
	cors      []string
}

func main() {
	var opts options
	cmd := &cobra.Command{
		Use:          "biblio-api",
		Short:        "Serve the biblio collections over HTTP",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), opts)
		},
	}
	cmd.Flags().StringVar(&opts.configDir, "config-dir", "", "configuration directory (default: platform config dir)")
	cmd.Flags().StringVar(&opts.dataDir, "data-dir", "", "data directory (default: platform data dir)")
	cmd.Flags().StringVar(&opts.store, "store", types.StoreSQLite, "blob store: sqlite, file or memory")
	cmd.Flags().StringVar(&opts.listen, "listen", "", "listen address (default: listen from config.yaml)")
	cmd.Flags().BoolVar(&opts.debug, "debug", false, "run gin in debug mode")
	cmd.Flags().StringSliceVar(&opts.cors, "cors-origin", []string{"*"}, "allowed CORS origins")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serve(ctx context.Context, opts options) error {
	settings, err := loadSettings(opts)
	if err != nil {
		return err
	}
	logging.Initialize(logging.Level(settings.LogLevel), logging.Format(settings.LogFormat))
	defer func() { _ = logging.Sync() }()

	app := fx.New(
		fx.Supply(settings, opts),
		fx.WithLogger(func() fxevent.Logger {
			return &fxevent.ZapLogger{Logger: zap.L().Named("fx")}
		}),
		fx.Provide(
			newRegistry,
			newStore,
			newServer,
		),
		fx.Invoke(registerServerHooks),
	)

	startCtx, cancelStart := context.WithTimeout(ctx, fx.DefaultTimeout)
	defer cancelStart()
	if err := app.Start(startCtx); err != nil {
		return fmt.Errorf("start: %w", err)
	}

	sig := <-app.Wait()
	logging.For(logging.ComponentServer).Infow("shutting down", "signal", sig.Signal)

	stopCtx, cancelStop := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelStop()
	return app.Stop(stopCtx)
}

// loadSettings reads config.yaml and applies the flags on top.
func loadSettings(opts options) (config.Settings, error) {
	configDir, err := paths.ResolveConfigDir(opts.configDir)
	if err != nil {
		return config.Settings{}, err
	}
	settings, err := config.Load(configDir)
	if err != nil {
		return config.Settings{}, err
	}
	dataDir, err := paths.ResolveDataDir(opts.dataDir, settings.DataDir)
	if err != nil {
		return config.Settings{}, err
	}
	settings.DataDir = dataDir
	settings.Store = opts.store
	if opts.listen != "" {
		settings.Listen = opts.listen
	}
	return settings, settings.Validate()
}

func newRegistry() *schema.Registry {
	return schema.Standard()
}

// newStore opens the blob store and attaches the local backend for the
// lifetime of the application.
func newStore(lc fx.Lifecycle, settings config.Settings) (*local.Backend, error) {
	blobs, err := local.OpenStore(settings.Config)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	backend := local.NewBackend(blobs, logging.For(logging.ComponentLocal))

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return backend.Attach(ctx)
		},
		OnStop: func(context.Context) error {
			return backend.Detach()
		},
	})
	return backend, nil
}

func newServer(settings config.Settings, opts options, registry *schema.Registry, store *local.Backend) *server.Server {
	cfg := server.Config{
		Listen:      settings.Listen,
		Debug:       opts.debug,
		CORSOrigins: opts.cors,
	}
	return server.New(cfg, registry, store, logging.For(logging.ComponentServer))
}

// registerServerHooks registers lifecycle hooks for the HTTP server.
func registerServerHooks(lc fx.Lifecycle, srv *server.Server) {
	lc.Append(fx.Hook{
		OnStart: srv.Start,
		OnStop:  srv.Stop,
	})
}
