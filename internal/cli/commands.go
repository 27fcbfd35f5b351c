package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/specialistvlad/stepproxy/internal/build"
	"github.com/specialistvlad/stepproxy/internal/ctxlog"
	"github.com/specialistvlad/stepproxy/internal/model"
	"github.com/specialistvlad/stepproxy/internal/proxy"
	"github.com/specialistvlad/stepproxy/internal/security"
	"github.com/spf13/cobra"
)

func newRunCmd(flags *globalFlags) *cobra.Command {
	var (
		params     []string
		paramsFile string
	)

	command := &cobra.Command{
		Use:   "run PROJECT",
		Short: "Build a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := parseParameters(params, paramsFile)
			if err != nil {
				return usageError("%v", err)
			}

			a, err := newLoadedApp(cmd, flags, nil)
			if err != nil {
				return err
			}
			defer a.Close()

			rec, err := a.Run(cmd.Context(), args[0], values)
			if err != nil {
				if errors.Is(err, proxy.ErrNoSuchParameterDefinition) {
					return usageError("%v", err)
				}
				return &ExitError{Code: ExitFailure, Message: err.Error()}
			}

			switch rec.Result {
			case build.ResultSuccess:
				return nil
			case build.ResultAborted:
				return &ExitError{Code: ExitAborted, Message: fmt.Sprintf("%s #%d was aborted", rec.Project, rec.Number)}
			default:
				return &ExitError{Code: ExitFailure, Message: fmt.Sprintf("%s #%d failed", rec.Project, rec.Number)}
			}
		},
	}

	command.Flags().StringArrayVarP(&params, "param", "p", nil, "Parameter value as NAME=VALUE. Repeatable.")
	command.Flags().StringVar(&paramsFile, "params-file", "", "YAML file mapping parameter names to values.")
	return command
}

func newValidateCmd(flags *globalFlags) *cobra.Command {
	var permissions string

	command := &cobra.Command{
		Use:   "validate NAME",
		Short: "Check that NAME can be used as a proxy target",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newLoadedApp(cmd, flags, nil)
			if err != nil {
				return err
			}
			defer a.Close()

			principal := security.NewPrincipal("cli", security.ParsePermissions(permissions)...)
			v := a.CheckProjectName(principal, args[0])
			if !v.OK() {
				return &ExitError{Code: ExitFailure, Message: v.Message}
			}
			fmt.Fprintln(cmd.OutOrStdout(), "OK")
			return nil
		},
	}

	command.Flags().StringVar(&permissions, "permissions", string(security.Configure), "Comma separated permissions of the caller.")
	return command
}

func newListCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List buildable projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newLoadedApp(cmd, flags, nil)
			if err != nil {
				return err
			}
			defer a.Close()

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "PROJECT\tKIND\tSTEPS\tPARAMETERS")
			for _, p := range a.Registry().Projects() {
				var params []string
				if pz, ok := p.(model.Parameterized); ok {
					defs, _ := pz.ParameterDefinitions()
					for _, d := range defs {
						params = append(params, d.Name)
					}
				}
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", p.FullName(), p.Kind(), len(p.Builders()), joinOrDash(params))
			}
			return w.Flush()
		},
	}
}

func newHistoryCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "history [PROJECT]",
		Short: "Show recorded builds, newest first",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, flags, nil)
			if err != nil {
				return err
			}
			if cfg.HistoryDB == "" {
				return usageError("history needs --history-db or STEPPROXY_HISTORY_DB")
			}

			// History does not need the workspace.
			a, err := newApp(cmd, cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			project := ""
			if len(args) == 1 {
				project = args[0]
			}
			records, err := a.Store().List(cmd.Context(), project)
			if err != nil {
				return &ExitError{Code: ExitFailure, Message: err.Error()}
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "BUILD\tRESULT\tSTARTED\tDURATION\tPARAMETERS")
			for _, r := range records {
				fmt.Fprintf(w, "%s #%d\t%s\t%s\t%s\t%s\n",
					r.Project, r.Number, r.Result,
					r.StartedAt.Local().Format(time.DateTime),
					r.Duration.Round(time.Millisecond),
					joinOrDash(formatParams(r.Parameters)))
			}
			return w.Flush()
		},
	}
}

func newServeCmd(flags *globalFlags) *cobra.Command {
	serve := &serveFlags{}

	command := &cobra.Command{
		Use:   "serve",
		Short: "Serve /health and /checkProjectName until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newLoadedApp(cmd, flags, serve)
			if err != nil {
				return err
			}
			defer a.Close()

			addr, err := a.StartHealthCheckServer()
			if err != nil {
				return &ExitError{Code: ExitFailure, Message: err.Error()}
			}
			ctxlog.FromContext(a.Context()).Info("Serving.", "address", addr)

			<-cmd.Context().Done()
			return nil
		},
	}

	command.Flags().IntVar(&serve.port, "port", 8080, "Port for the HTTP server. 0 picks a free port.")
	command.Flags().StringVar(&serve.apiPermissions, "api-permissions", "", "Comma separated permissions granted to HTTP callers.")
	command.Flags().BoolVar(&serve.trustPermissionsHeader, "trust-permissions-header", false,
		"Take caller permissions from the X-Permissions header. Only behind an authenticating proxy.")
	return command
}
