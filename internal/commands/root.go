// Package commands implements the sqldao command line: ad-hoc statements run
// through the same dispatcher a bound DAO uses.
package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/gaborage/sqldao/config"
	"github.com/gaborage/sqldao/dao"
	"github.com/gaborage/sqldao/database"
	"github.com/gaborage/sqldao/logger"
	"github.com/gaborage/sqldao/observability"
)

// GlobalOptions holds the flags shared by every subcommand
type GlobalOptions struct {
	ConfigPaths []string
	Format      string
	Raw         bool
	Trace       bool

	version string
}

// openSource is a variable so tests can substitute the connection source.
var openSource = database.NewConnection

// NewRootCommand creates the sqldao command tree
func NewRootCommand(version string) *cobra.Command {
	opts := &GlobalOptions{version: version}

	root := &cobra.Command{
		Use:   "sqldao",
		Short: "Run SQL through the sqldao dispatcher",
		Long: `Runs one statement against the database configured in config.yaml
(or the files given with --config) using the same dispatch path as a bound DAO.

Database settings can be overridden with SQLDAO_ environment variables,
for example SQLDAO_DATABASE_TYPE=sqlite SQLDAO_DATABASE_SQLITE_PATH=app.db.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringSliceVarP(&opts.ConfigPaths, "config", "c", nil, "Config file(s), later files override earlier ones")
	root.PersistentFlags().StringVarP(&opts.Format, "format", "f", FormatTable, "Output format: table, json or yaml")
	root.PersistentFlags().BoolVar(&opts.Raw, "raw", false, "Pass arguments as strings instead of inferring numbers, booleans and NULL")
	root.PersistentFlags().BoolVar(&opts.Trace, "trace", false, "Print the OpenTelemetry spans of the call to stderr")

	root.AddCommand(
		NewQueryCommand(opts),
		NewGetCommand(opts),
		NewExecCommand(opts),
		NewInsertCommand(opts),
		NewHealthCommand(opts),
		NewVersionCommand(version),
	)
	return root
}

// session is one configured connection source and the dispatcher over it.
type session struct {
	log        logger.Logger
	source     database.Interface
	dispatcher *dao.Dispatcher
	telemetry  observability.Provider
}

// openSession loads configuration and connects. Logs and stdout telemetry go
// to stderr so command output stays machine readable.
func openSession(opts *GlobalOptions, stderr io.Writer) (*session, error) {
	if err := validateFormat(opts.Format); err != nil {
		return nil, err
	}

	cfg, err := config.Load(opts.ConfigPaths...)
	if err != nil {
		return nil, err
	}

	if opts.Trace {
		cfg.Observability.Enabled = true
		cfg.Observability.Trace.Enabled = true
		cfg.Observability.Trace.Endpoint = observability.EndpointStdout
	}

	log := logger.NewWithWriter(cfg.Log.Level, cfg.Log.Pretty, stderr)
	telemetry, err := observability.NewProvider(cfg,
		observability.WithOutput(stderr),
		observability.WithVersion(opts.version),
		observability.WithLogger(log),
	)
	if err != nil {
		return nil, err
	}

	src, err := openSource(&cfg.Database, log)
	if err != nil {
		_ = observability.Shutdown(telemetry, observability.DefaultShutdownTimeout)
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.Database.Type, err)
	}

	return &session{
		log:        log,
		source:     src,
		dispatcher: dao.NewDispatcher(src, log),
		telemetry:  telemetry,
	}, nil
}

// close releases the source and then flushes pending telemetry.
func (s *session) close() {
	if err := s.source.Close(); err != nil {
		s.log.Warn().Err(err).Msg("Failed to close database connection")
	}
	if err := observability.Shutdown(s.telemetry, observability.DefaultShutdownTimeout); err != nil {
		s.log.Warn().Err(err).Msg("Failed to flush telemetry")
	}
}

// run registers desc as the single method "cli" and invokes it with args.
func (s *session) run(ctx context.Context, desc dao.Descriptor, args []any) (dao.Result, error) {
	const method = "cli"
	if err := s.dispatcher.Register(method, desc); err != nil {
		return dao.Result{}, err
	}
	return s.dispatcher.Invoke(ctx, method, args...)
}

// runStatement is the shared RunE body of the statement subcommands.
func runStatement(cmd *cobra.Command, opts *GlobalOptions, desc dao.Descriptor, rawArgs []string) error {
	s, err := openSession(opts, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer s.close()

	res, err := s.run(cmd.Context(), desc, parseArgs(rawArgs, opts.Raw))
	if err != nil {
		return err
	}
	return render(cmd.OutOrStdout(), res, opts.Format)
}

// Execute runs the command tree and reports errors on stderr. It returns the
// process exit code.
func Execute(root *cobra.Command, stderr io.Writer) int {
	if err := root.Execute(); err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
