// Package cli implements the biblio command-line interface.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/biblio/internal/config"
	"github.com/mesh-intelligence/biblio/internal/logging"
	"github.com/mesh-intelligence/biblio/internal/paths"
	"github.com/mesh-intelligence/biblio/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// errUsage marks bad command-line input.
var errUsage = errors.New("usage error")

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
	jsonMode  bool
	offline   bool
}

// app is the state shared by one command tree.
type app struct {
	flags     rootFlags
	configDir string
	settings  config.Settings
	log       *zap.SugaredLogger
}

// NewRootCmd creates the top-level "biblio" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	a := &app{log: zap.NewNop().Sugar()}

	root := &cobra.Command{
		Use:   "biblio",
		Short: "Manage library records offline or against the biblio API",
		Long: "biblio manages members, staff, categories, books, users and loans.\n" +
			"Operations go to the remote API while it answers and fall back to the\n" +
			"local snapshot otherwise.",
		Version:           Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	root.PersistentFlags().StringVar(&a.flags.configDir, "config-dir", "", "configuration directory (default: platform config dir)")
	root.PersistentFlags().StringVar(&a.flags.dataDir, "data-dir", "", "data directory (default: platform data dir)")
	root.PersistentFlags().BoolVar(&a.flags.jsonMode, "json", false, "output in JSON format")
	root.PersistentFlags().BoolVar(&a.flags.offline, "offline", false, "never contact the remote API")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd(a))
	root.AddCommand(newSchemaCmd(a))
	root.AddCommand(newListCmd(a))
	root.AddCommand(newGetCmd(a))
	root.AddCommand(newCreateCmd(a))
	root.AddCommand(newUpdateCmd(a))
	root.AddCommand(newDeleteCmd(a))
	root.AddCommand(newExportCmd(a))
	root.AddCommand(newImportCmd(a))
	root.AddCommand(newModeCmd(a))

	return root
}

// setup resolves directories, loads config.yaml and configures logging.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	configDir, err := paths.ResolveConfigDir(a.flags.configDir)
	if err != nil {
		return fmt.Errorf("resolve config dir: %w", err)
	}
	settings, err := config.Load(configDir)
	if err != nil {
		return err
	}
	dataDir, err := paths.ResolveDataDir(a.flags.dataDir, settings.DataDir)
	if err != nil {
		return fmt.Errorf("resolve data dir: %w", err)
	}
	settings.DataDir = dataDir
	if a.flags.offline {
		settings.Remote = false
	}

	logging.Initialize(logging.Level(settings.LogLevel), logging.Format(settings.LogFormat))
	a.log = logging.For(logging.ComponentCLI)
	a.configDir = configDir
	a.settings = settings
	return nil
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	return run(NewRootCmd(), os.Args[1:], os.Stderr)
}

func run(root *cobra.Command, args []string, stderr io.Writer) int {
	root.SetArgs(args)
	err := root.Execute()
	_ = logging.Sync()
	if err == nil {
		return exitSuccess
	}
	fmt.Fprintln(stderr, "error:", err)
	return exitCode(err)
}

// exitCode maps an error to the exit code reported to the shell.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitSuccess
	case errors.Is(err, errUsage),
		types.IsValidation(err),
		errors.Is(err, types.ErrNotFound),
		errors.Is(err, types.ErrInvalidID),
		errors.Is(err, types.ErrUnknownEntity),
		errors.Is(err, types.ErrMalformedImport):
		return exitUserError
	default:
		return exitSysError
	}
}

// usageError builds an errUsage-wrapped error.
func usageError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errUsage, fmt.Sprintf(format, args...))
}
