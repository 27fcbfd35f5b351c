package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/specialistvlad/stepproxy/internal/app"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Exit codes.
const (
	ExitFailure = 1
	ExitUsage   = 2
	ExitAborted = 130
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

func usageError(format string, args ...any) error {
	return &ExitError{Code: ExitUsage, Message: fmt.Sprintf(format, args...)}
}

// globalFlags are the persistent flags shared by every command.
type globalFlags struct {
	workspace string
	buildDir  string
	historyDB string
	logFormat string
	logLevel  string
}

// serveFlags are the flags of the serve command.
type serveFlags struct {
	port                   int
	apiPermissions         string
	trustPermissionsHeader bool
}

// NewRootCmd builds the command tree. Command output goes to outW.
func NewRootCmd(outW io.Writer) *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:   "stepproxy",
		Short: "Run builds whose steps can be borrowed from other projects",
		Long: `stepproxy loads a workspace of HCL project definitions and runs their
build steps. A "proxy" step replays the steps of another project with the
parameter values it is given.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(outW)
	root.SetErr(outW)

	pf := root.PersistentFlags()
	pf.StringVarP(&flags.workspace, "workspace", "w", ".", "Path to the workspace file or directory.")
	pf.StringVar(&flags.buildDir, "build-dir", "", "Working directory for builds. Defaults to the current directory.")
	pf.StringVar(&flags.historyDB, "history-db", "", "SQLite file for build history. History is kept in memory when empty.")
	pf.StringVar(&flags.logFormat, "log-format", "text", "Log output format. Options: 'text' or 'json'.")
	pf.StringVar(&flags.logLevel, "log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	root.AddCommand(
		newRunCmd(flags),
		newValidateCmd(flags),
		newListCmd(flags),
		newHistoryCmd(flags),
		newServeCmd(flags),
	)
	return root
}

// Execute runs the command line in args.
func Execute(ctx context.Context, outW io.Writer, args []string) error {
	root := NewRootCmd(outW)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)

	var exitErr *ExitError
	if err != nil && !errors.As(err, &exitErr) {
		// cobra reports unknown flags and commands as plain errors.
		return &ExitError{Code: ExitUsage, Message: err.Error()}
	}
	return err
}

// loadConfig merges defaults, STEPPROXY_* variables and explicitly set flags,
// in increasing order of precedence. serve is nil for commands that do not
// serve HTTP.
func loadConfig(cmd *cobra.Command, flags *globalFlags, serve *serveFlags) (*app.Config, error) {
	if serve == nil {
		serve = &serveFlags{}
	}
	cfg := app.Config{
		WorkspacePath:          flags.workspace,
		BuildDir:               flags.buildDir,
		HistoryDB:              flags.historyDB,
		LogFormat:              flags.logFormat,
		LogLevel:               flags.logLevel,
		HealthcheckPort:        serve.port,
		APIPermissions:         serve.apiPermissions,
		TrustPermissionsHeader: serve.trustPermissionsHeader,
	}
	if err := app.ApplyEnv(&cfg); err != nil {
		return nil, usageError("%v", err)
	}

	cmd.Flags().Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "workspace":
			cfg.WorkspacePath = flags.workspace
		case "build-dir":
			cfg.BuildDir = flags.buildDir
		case "history-db":
			cfg.HistoryDB = flags.historyDB
		case "log-format":
			cfg.LogFormat = flags.logFormat
		case "log-level":
			cfg.LogLevel = flags.logLevel
		case "port":
			cfg.HealthcheckPort = serve.port
		case "api-permissions":
			cfg.APIPermissions = serve.apiPermissions
		case "trust-permissions-header":
			cfg.TrustPermissionsHeader = serve.trustPermissionsHeader
		}
	})

	config, err := app.NewConfig(cfg)
	if err != nil {
		return nil, usageError("%v", err)
	}
	slog.Debug("CLI configuration resolved.", "config", config)
	return config, nil
}

// newLoadedApp creates the App and loads the workspace.
func newLoadedApp(cmd *cobra.Command, flags *globalFlags, serve *serveFlags) (*app.App, error) {
	cfg, err := loadConfig(cmd, flags, serve)
	if err != nil {
		return nil, err
	}

	a, err := newApp(cmd, cfg)
	if err != nil {
		return nil, err
	}
	if err := a.LoadWorkspace(); err != nil {
		_ = a.Close()
		return nil, &ExitError{Code: ExitFailure, Message: err.Error()}
	}
	return a, nil
}

func newApp(cmd *cobra.Command, cfg *app.Config) (*app.App, error) {
	a, err := app.NewApp(cmd.Context(), cmd.OutOrStdout(), cfg)
	if err != nil {
		return nil, &ExitError{Code: ExitFailure, Message: err.Error()}
	}
	return a, nil
}
